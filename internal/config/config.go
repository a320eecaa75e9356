package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Port             string
	AppEnv           string
	LogLevel         string
	ProviderChain    []string
	WeatherProvider  string
	FetchTimeout     time.Duration
	WeatherTimeout   time.Duration
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	FetchRatePerSec  float64
	UserAgent        string
	BrowserUserAgent string
	TavilyAPIKey     string
	SerpAPIKey       string
	Endpoints        Endpoints
}

// Endpoints holds provider base URLs. Empty values fall back to each provider's public endpoint.
type Endpoints struct {
	DuckDuckGoHTML    string `yaml:"duckduckgo_html"`
	DuckDuckGoInstant string `yaml:"duckduckgo_instant"`
	Geocode           string `yaml:"geocode"`
	Forecast          string `yaml:"forecast"`
	Wikipedia         string `yaml:"wikipedia"`
	Tavily            string `yaml:"tavily"`
}

// fileConfig is the optional YAML overlay read from CONFIG_FILE
type fileConfig struct {
	Port          string    `yaml:"port"`
	ProviderChain []string  `yaml:"provider_chain"`
	Endpoints     Endpoints `yaml:"endpoints"`
}

// DefaultProviderChain is the general-purpose fallback order
var DefaultProviderChain = []string{"duckduckgo_html", "duckduckgo_instant"}

// Load loads configuration from environment variables
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8001"),
		AppEnv:           getEnv("APP_ENV", "production"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ProviderChain:    getEnvList("PROVIDER_CHAIN", DefaultProviderChain),
		WeatherProvider:  getEnv("WEATHER_PROVIDER", "openmeteo"),
		FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		WeatherTimeout:   getEnvDuration("WEATHER_TIMEOUT", 10*time.Second),
		RetryMaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:   getEnvDuration("RETRY_BASE_DELAY", time.Second),
		FetchRatePerSec:  getEnvFloat("FETCH_RATE_PER_SEC", 0),
		UserAgent:        getEnv("USER_AGENT", "OsirisSearch/1.0"),
		BrowserUserAgent: os.Getenv("BROWSER_USER_AGENT"),
		TavilyAPIKey:     os.Getenv("TAVILY_API_KEY"),
		SerpAPIKey:       os.Getenv("SERPAPI_API_KEY"),
		Endpoints: Endpoints{
			DuckDuckGoHTML:    os.Getenv("DDG_HTML_URL"),
			DuckDuckGoInstant: os.Getenv("DDG_INSTANT_URL"),
			Geocode:           os.Getenv("GEOCODE_URL"),
			Forecast:          os.Getenv("FORECAST_URL"),
			Wikipedia:         os.Getenv("WIKIPEDIA_URL"),
			Tavily:            os.Getenv("TAVILY_URL"),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	if cfg.RetryMaxAttempts < 1 {
		return Config{}, fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", cfg.RetryMaxAttempts)
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs with development logging
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.LogLevel == "debug"
}

// applyFile overlays non-empty values from a YAML file
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Port != "" {
		c.Port = fc.Port
	}
	if len(fc.ProviderChain) > 0 {
		c.ProviderChain = fc.ProviderChain
	}
	overlay(&c.Endpoints.DuckDuckGoHTML, fc.Endpoints.DuckDuckGoHTML)
	overlay(&c.Endpoints.DuckDuckGoInstant, fc.Endpoints.DuckDuckGoInstant)
	overlay(&c.Endpoints.Geocode, fc.Endpoints.Geocode)
	overlay(&c.Endpoints.Forecast, fc.Endpoints.Forecast)
	overlay(&c.Endpoints.Wikipedia, fc.Endpoints.Wikipedia)
	overlay(&c.Endpoints.Tavily, fc.Endpoints.Tavily)
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, ignoring blanks
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
