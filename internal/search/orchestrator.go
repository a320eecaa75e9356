package search

import (
	"context"

	"go.uber.org/zap"
)

// NoResultsMessage is returned when every provider in the chain came back without results
const NoResultsMessage = "No relevant information found! Try rephrasing your question."

// Orchestrator queries providers one at a time and stops at the first that finds something
type Orchestrator struct {
	logger *zap.Logger
}

// NewOrchestrator creates a new fallback orchestrator
func NewOrchestrator(logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{logger: logger.Named("orchestrator")}
}

// Run walks chain in order. The first StatusFound result wins and later providers
// are never called. Empty, NotFound and Failed results all move on to the next provider.
// If at least one provider ran without success the NoResultsMessage sentinel is returned;
// an empty chain returns no snippets.
func (o *Orchestrator) Run(ctx context.Context, query string, chain []Provider) []string {
	if len(chain) == 0 {
		o.logger.Warn("no providers configured")
		return nil
	}

	for i, provider := range chain {
		if err := ctx.Err(); err != nil {
			o.logger.Info("request cancelled, stopping fallback chain", zap.Error(err))
			break
		}

		o.logger.Debug("trying provider",
			zap.String("provider", provider.Name()),
			zap.Int("position", i+1),
			zap.Int("chain_length", len(chain)),
		)

		res := provider.Fetch(ctx, query)
		if res.Status == StatusFound {
			o.logger.Info("provider found results",
				zap.String("provider", provider.Name()),
				zap.Int("count", len(res.Items)),
			)
			return res.Items
		}

		fields := []zap.Field{zap.String("provider", provider.Name()), zap.Stringer("status", res.Status)}
		if res.Err != nil {
			fields = append(fields, zap.Error(res.Err))
		}
		o.logger.Info("provider returned nothing usable, falling back", fields...)
	}

	return []string{NoResultsMessage}
}

// FetchOne queries a single provider and returns its full Result, so callers can
// still show not-found and failure messages.
func (o *Orchestrator) FetchOne(ctx context.Context, provider Provider, query string) Result {
	res := provider.Fetch(ctx, query)
	o.logger.Info("single provider lookup",
		zap.String("provider", provider.Name()),
		zap.Stringer("status", res.Status),
	)
	return res
}

// Exhausted reports whether snippets came from a chain where nothing was found
func Exhausted(snippets []string) bool {
	return len(snippets) == 0 || (len(snippets) == 1 && snippets[0] == NoResultsMessage)
}
