package search

import "context"

// Status classifies the outcome of one provider call
type Status int

const (
	// StatusEmpty means the provider answered but found nothing
	StatusEmpty Status = iota
	// StatusFound means the provider returned at least one snippet
	StatusFound
	// StatusNotFound carries a user-facing "nothing matched" message
	StatusNotFound
	// StatusFailed carries a user-facing failure message and the underlying error
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the normalized outcome of a provider call
type Result struct {
	Provider string
	Status   Status
	Items    []string // Snippets, set only for StatusFound
	Message  string   // User-facing text for StatusNotFound / StatusFailed
	Err      error    // Underlying cause for StatusFailed
}

// Found builds a result from snippets. No snippets collapses to Empty.
func Found(provider string, snippets []string) Result {
	if len(snippets) == 0 {
		return Empty(provider)
	}
	return Result{Provider: provider, Status: StatusFound, Items: snippets}
}

// Empty builds a "nothing found" result
func Empty(provider string) Result {
	return Result{Provider: provider, Status: StatusEmpty}
}

// NotFound builds a result carrying a user-facing not-found message
func NotFound(provider, message string) Result {
	return Result{Provider: provider, Status: StatusNotFound, Message: message}
}

// Failed builds a result for a provider error
func Failed(provider, message string, err error) Result {
	return Result{Provider: provider, Status: StatusFailed, Message: message, Err: err}
}

// Snippets returns what the provider would show a user: the found snippets,
// the single message for NotFound/Failed, or nothing.
func (r Result) Snippets() []string {
	switch r.Status {
	case StatusFound:
		return r.Items
	case StatusNotFound, StatusFailed:
		if r.Message == "" {
			return nil
		}
		return []string{r.Message}
	default:
		return nil
	}
}

// Provider is the interface all information providers implement.
// Fetch never returns an error; failures are reported through Result.
type Provider interface {
	// Name returns the provider identifier (e.g., "duckduckgo_html", "wikipedia")
	Name() string

	// Fetch queries the provider and normalizes its response
	Fetch(ctx context.Context, query string) Result
}
