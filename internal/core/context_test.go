package core

import (
	"context"
	"testing"

	"github.com/amityadav/searchproxy/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeProvider struct {
	name    string
	result  search.Result
	queries []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(_ context.Context, query string) search.Result {
	f.queries = append(f.queries, query)
	return f.result
}

type fixture struct {
	html    *fakeProvider
	instant *fakeProvider
	weather *fakeProvider
	wiki    *fakeProvider
	core    *ContextCore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		html:    &fakeProvider{name: "duckduckgo_html", result: search.Empty("duckduckgo_html")},
		instant: &fakeProvider{name: "duckduckgo_instant", result: search.Found("duckduckgo_instant", []string{"Summary: Go is a language."})},
		weather: &fakeProvider{name: "openmeteo", result: search.NotFound("openmeteo", "Location not found. Please check the city name and try again.")},
		wiki:    &fakeProvider{name: "wikipedia", result: search.Found("wikipedia", []string{"Go: language"})},
	}

	reg := search.NewRegistry()
	reg.Register(f.html)
	reg.Register(f.instant)
	reg.Register(f.weather)
	reg.Register(f.wiki)

	logger := zaptest.NewLogger(t)
	f.core = NewContextCore(reg, search.NewOrchestrator(logger), []string{"duckduckgo_html", "duckduckgo_instant"}, "openmeteo", logger)
	return f
}

func TestBuildContextDefaultChain(t *testing.T) {
	f := newFixture(t)

	got, err := f.core.BuildContext(context.Background(), "What is Go?", nil)
	require.NoError(t, err)

	assert.Equal(t, "Search results for 'What is Go?':\nSummary: Go is a language.", got)
	assert.Equal(t, []string{"What is Go?"}, f.html.queries)
	assert.Equal(t, []string{"What is Go?"}, f.instant.queries)
	assert.Empty(t, f.wiki.queries)
}

func TestBuildContextExhaustedChain(t *testing.T) {
	f := newFixture(t)
	f.instant.result = search.Empty("duckduckgo_instant")

	got, err := f.core.BuildContext(context.Background(), "zzzz", nil)
	require.NoError(t, err)

	assert.Equal(t, "Search results for 'zzzz':\n"+search.NoResultsMessage, got)
}

func TestBuildContextRoutesWeatherPrompts(t *testing.T) {
	f := newFixture(t)
	f.weather.result = search.Found("openmeteo", []string{"Current weather in Paris, France: Temperature: 18.5°C"})

	got, err := f.core.BuildContext(context.Background(), "weather in Paris", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Paris"}, f.weather.queries)
	assert.Empty(t, f.html.queries)
	assert.Equal(t, "Search results for 'weather in Paris':\nCurrent weather in Paris, France: Temperature: 18.5°C", got)
}

func TestBuildContextWeatherMissFallsBackToChain(t *testing.T) {
	f := newFixture(t)
	f.html.result = search.Found("duckduckgo_html", []string{"Paris forecast this weekend: sunny"})

	prompt := "What's the weather in Paris this weekend?"
	got, err := f.core.BuildContext(context.Background(), prompt, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Paris this weekend"}, f.weather.queries)
	assert.Equal(t, []string{prompt}, f.html.queries)
	assert.Equal(t, "Search results for '"+prompt+"':\nParis forecast this weekend: sunny", got)
}

func TestBuildContextWeatherMessageWhenChainExhausted(t *testing.T) {
	f := newFixture(t)
	f.instant.result = search.Empty("duckduckgo_instant")

	got, err := f.core.BuildContext(context.Background(), "Weather in Nonexistentville", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Nonexistentville"}, f.weather.queries)
	assert.Equal(t, []string{"Weather in Nonexistentville"}, f.html.queries)
	assert.Equal(t, "Search results for 'Weather in Nonexistentville':\nLocation not found. Please check the city name and try again.", got)
}

func TestBuildContextProviderOverride(t *testing.T) {
	f := newFixture(t)

	got, err := f.core.BuildContext(context.Background(), "golang", []string{"wikipedia"})
	require.NoError(t, err)

	assert.Equal(t, "Search results for 'golang':\nGo: language", got)
	assert.Empty(t, f.html.queries)
}

func TestBuildContextErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.core.BuildContext(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrInvalidPrompt)

	_, err = f.core.BuildContext(context.Background(), "golang", []string{"bing"})
	assert.ErrorIs(t, err, search.ErrUnknownProvider)
}

func TestBuildContextWithoutWeatherProvider(t *testing.T) {
	reg := search.NewRegistry()
	html := &fakeProvider{name: "duckduckgo_html", result: search.Found("duckduckgo_html", []string{"Paris: forecast"})}
	reg.Register(html)
	c := NewContextCore(reg, search.NewOrchestrator(nil), []string{"duckduckgo_html"}, "openmeteo", nil)

	got, err := c.BuildContext(context.Background(), "weather in Paris", nil)
	require.NoError(t, err)

	assert.Equal(t, "Search results for 'weather in Paris':\nParis: forecast", got)
	assert.Equal(t, []string{"duckduckgo_html"}, c.Providers())
	assert.Equal(t, []string{"duckduckgo_html"}, c.Chain())
}

func TestWeatherLocation(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
		ok     bool
	}{
		{prompt: "weather in Paris", want: "Paris", ok: true},
		{prompt: "What's the weather like in New York today?", want: "New York", ok: true},
		{prompt: "WEATHER FOR São Paulo", want: "São Paulo", ok: true},
		{prompt: "what is the current weather at Oslo right now", want: "Oslo", ok: true},
		{prompt: "How is the weather", ok: false},
		{prompt: "Who won the election?", ok: false},
		{prompt: "weather in", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got, ok := WeatherLocation(tt.prompt)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
