package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/amityadav/searchproxy/internal/search"
	"go.uber.org/zap"
)

// ErrInvalidPrompt is returned when the prompt is missing or blank
var ErrInvalidPrompt = errors.New("prompt is required")

// weatherPrompt matches "weather in Paris" or "What's the weather like in New York today?".
// Matching is case-insensitive; the captured place keeps its original casing.
var weatherPrompt = regexp.MustCompile(`(?i)^\s*(?:what(?:'s| is) )?(?:the )?(?:current )?weather (?:like )?(?:in|for|at) (.+?)(?: today| now| right now)?\s*[?.!]*\s*$`)

// ContextCore turns a prompt into the context block handed to the language model
type ContextCore struct {
	registry     *search.Registry
	orchestrator *search.Orchestrator
	chain        []string
	weather      string
	logger       *zap.Logger
}

// NewContextCore creates a new ContextCore. chain names the default fallback order;
// weather names the provider used for weather-shaped prompts ("" disables routing).
func NewContextCore(registry *search.Registry, orchestrator *search.Orchestrator, chain []string, weather string, logger *zap.Logger) *ContextCore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextCore{
		registry:     registry,
		orchestrator: orchestrator,
		chain:        chain,
		weather:      weather,
		logger:       logger.Named("context"),
	}
}

// Chain returns the default provider order
func (c *ContextCore) Chain() []string {
	return c.chain
}

// Providers returns every registered provider name
func (c *ContextCore) Providers() []string {
	return c.registry.Names()
}

// BuildContext fetches snippets for prompt and assembles the context text.
// A non-empty providers list overrides routing and the default chain.
func (c *ContextCore) BuildContext(ctx context.Context, prompt string, providers []string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrInvalidPrompt
	}

	snippets, err := c.Snippets(ctx, prompt, providers)
	if err != nil {
		return "", err
	}
	return search.Assemble(prompt, snippets), nil
}

// Snippets runs the provider lookup for prompt without assembling the result
func (c *ContextCore) Snippets(ctx context.Context, prompt string, providers []string) ([]string, error) {
	if len(providers) > 0 {
		chain, err := c.registry.Resolve(providers)
		if err != nil {
			return nil, err
		}
		c.logger.Info("using requested providers", zap.Strings("providers", providers))
		return c.orchestrator.Run(ctx, prompt, chain), nil
	}

	chain, err := c.registry.Resolve(c.chain)
	if err != nil {
		return nil, fmt.Errorf("default chain misconfigured: %w", err)
	}

	if place, ok := WeatherLocation(prompt); ok && c.weather != "" {
		if p, found := c.registry.Get(c.weather); found {
			return c.weatherSnippets(ctx, p, place, prompt, chain), nil
		}
	}

	return c.orchestrator.Run(ctx, prompt, chain), nil
}

// weatherSnippets asks the weather provider first. Anything short of a report falls
// back to the default chain, and the weather message is kept only if that finds nothing too.
func (c *ContextCore) weatherSnippets(ctx context.Context, weather search.Provider, place, prompt string, chain []search.Provider) []string {
	c.logger.Info("routing to weather provider", zap.String("provider", weather.Name()), zap.String("location", place))

	res := c.orchestrator.FetchOne(ctx, weather, place)
	if res.Status == search.StatusFound {
		return res.Items
	}

	c.logger.Info("weather lookup came back empty, using default chain", zap.Stringer("status", res.Status))
	snippets := c.orchestrator.Run(ctx, prompt, chain)
	if search.Exhausted(snippets) {
		if msg := res.Snippets(); len(msg) > 0 {
			return msg
		}
	}
	return snippets
}

// WeatherLocation extracts the place from a weather-shaped prompt
func WeatherLocation(prompt string) (string, bool) {
	m := weatherPrompt.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	place := strings.TrimSpace(m[1])
	if place == "" {
		return "", false
	}
	return place, true
}
