package fx

import (
	"github.com/amityadav/searchproxy/internal/config"
	"github.com/amityadav/searchproxy/internal/core"
	"github.com/amityadav/searchproxy/internal/duckduckgo"
	"github.com/amityadav/searchproxy/internal/fetch"
	"github.com/amityadav/searchproxy/internal/openmeteo"
	"github.com/amityadav/searchproxy/internal/retry"
	"github.com/amityadav/searchproxy/internal/search"
	"github.com/amityadav/searchproxy/internal/serpapi"
	"github.com/amityadav/searchproxy/internal/tavily"
	"github.com/amityadav/searchproxy/internal/wikipedia"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ============================================================================
// FX MODULES - Group related providers together
// ============================================================================

// ConfigModule provides application configuration
var ConfigModule = fx.Module("config",
	fx.Provide(config.Load),
)

// LoggerModule provides the structured logger
var LoggerModule = fx.Module("logger",
	fx.Provide(NewLogger),
)

// FetchModule provides the shared outbound HTTP client
var FetchModule = fx.Module("fetch",
	fx.Provide(NewFetcher),
)

// SearchModule provides the search registry with all search providers
var SearchModule = fx.Module("search",
	fx.Provide(
		NewSearchRegistry,
		NewOrchestrator,
	),
)

// CoreModule provides business logic cores
var CoreModule = fx.Module("core",
	fx.Provide(NewContextCore),
)

// AppModules is everything except the HTTP server, shared by the CLI
var AppModules = fx.Options(
	ConfigModule,
	LoggerModule,
	FetchModule,
	SearchModule,
	CoreModule,
)

// ============================================================================
// PROVIDER FUNCTIONS - Constructors that FX will call automatically
// ============================================================================

// NewLogger creates a production or development zap logger based on config
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// NewFetcher creates the retrying, rate-limited HTTP client used by every provider
func NewFetcher(cfg config.Config, logger *zap.Logger) *fetch.Client {
	f := fetch.NewClient(fetch.Options{
		Timeout:    cfg.FetchTimeout,
		UserAgent:  cfg.UserAgent,
		RatePerSec: cfg.FetchRatePerSec,
		Retry:      retry.NewPolicy(cfg.RetryMaxAttempts, cfg.RetryBaseDelay),
	}, logger)
	logger.Info("[FX] Fetcher initialized",
		zap.Duration("timeout", cfg.FetchTimeout),
		zap.Int("max_attempts", cfg.RetryMaxAttempts),
	)
	return f
}

// NewSearchRegistry creates search registry with all available providers
func NewSearchRegistry(cfg config.Config, fetcher *fetch.Client, logger *zap.Logger) *search.Registry {
	registry := search.NewRegistry()
	ep := cfg.Endpoints

	registry.Register(duckduckgo.NewHTMLClient(ep.DuckDuckGoHTML, cfg.BrowserUserAgent, fetcher, logger))
	registry.Register(duckduckgo.NewInstantClient(ep.DuckDuckGoInstant, cfg.UserAgent, fetcher, logger))
	registry.Register(openmeteo.NewClient(openmeteo.Config{
		GeocodeURL:  ep.Geocode,
		ForecastURL: ep.Forecast,
		Timeout:     cfg.WeatherTimeout,
	}, fetcher, logger))
	registry.Register(wikipedia.NewClient(ep.Wikipedia, fetcher, logger))

	if cfg.TavilyAPIKey != "" {
		registry.Register(tavily.NewClient(cfg.TavilyAPIKey, ep.Tavily, fetcher, logger))
		logger.Info("[FX] SearchRegistry: Tavily registered")
	}

	if cfg.SerpAPIKey != "" {
		registry.Register(serpapi.NewClient(cfg.SerpAPIKey, logger))
		logger.Info("[FX] SearchRegistry: SerpApi registered")
	}

	logger.Info("[FX] SearchRegistry initialized", zap.Strings("providers", registry.Names()))
	return registry
}

// NewOrchestrator creates the fallback orchestrator
func NewOrchestrator(logger *zap.Logger) *search.Orchestrator {
	return search.NewOrchestrator(logger)
}

// NewContextCore creates the context business logic, failing fast on an unknown chain entry
func NewContextCore(cfg config.Config, registry *search.Registry, orchestrator *search.Orchestrator, logger *zap.Logger) (*core.ContextCore, error) {
	if _, err := registry.Resolve(cfg.ProviderChain); err != nil {
		return nil, err
	}
	c := core.NewContextCore(registry, orchestrator, cfg.ProviderChain, cfg.WeatherProvider, logger)
	logger.Info("[FX] ContextCore initialized", zap.Strings("chain", cfg.ProviderChain))
	return c, nil
}
