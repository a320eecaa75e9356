package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeService struct {
	prompt    string
	providers []string
	text      string
	err       error
	panicMsg  string
}

func (f *fakeService) BuildContext(_ context.Context, prompt string, providers []string) (string, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.prompt = prompt
	f.providers = providers
	return f.text, f.err
}

func (f *fakeService) Providers() []string {
	return []string{"duckduckgo_html", "duckduckgo_instant", "wikipedia"}
}

func (f *fakeService) Chain() []string { return []string{"duckduckgo_html", "duckduckgo_instant"} }

func serve(t *testing.T, svc ContextService, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateHandler(svc, zaptest.NewLogger(t)).ServeHTTP(rec, req)
	return rec
}

func TestPostContext(t *testing.T) {
	svc := &fakeService{text: "Search results for 'What is Go?':\nSummary: Go is a language."}
	req := httptest.NewRequest(http.MethodPost, "/context", strings.NewReader(`{"prompt": "What is Go?"}`))

	rec := serve(t, svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "What is Go?", svc.prompt)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, svc.text, body["context"])
}

func TestPostContextProviderOverride(t *testing.T) {
	svc := &fakeService{text: "ok"}
	req := httptest.NewRequest(http.MethodPost, "/context", strings.NewReader(`{"prompt": "golang", "providers": ["wikipedia"]}`))

	rec := serve(t, svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"wikipedia"}, svc.providers)
}

func TestPostContextErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		wantMsg string
	}{
		{name: "malformed json", body: `{"prompt":`, wantMsg: "Error processing request: invalid JSON body"},
		{name: "core error", body: `{"prompt": "x"}`, err: errors.New("prompt is required"), wantMsg: "Error processing request: prompt is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			rec := serve(t, svc, httptest.NewRequest(http.MethodPost, "/context", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, strings.HasPrefix(body["error"], tt.wantMsg), body["error"])
		})
	}
}

func TestHealthcheckAndRoot(t *testing.T) {
	rec := serve(t, &fakeService{}, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(t, &fakeService{}, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Search Proxy is running", rec.Body.String())

	rec = serve(t, &fakeService{}, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestOptionsPreflight(t *testing.T) {
	for _, path := range []string{"/context", "/anything/else"} {
		rec := serve(t, &fakeService{}, httptest.NewRequest(http.MethodOptions, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST, GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Empty(t, rec.Body.String())
	}
}

func TestProvidersEndpoint(t *testing.T) {
	rec := serve(t, &fakeService{}, httptest.NewRequest(http.MethodGet, "/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body providersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Providers, 3)
	assert.Equal(t, []string{"duckduckgo_html", "duckduckgo_instant"}, body.Chain)
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(RequestIDHeader, "abc-123")

	rec := serve(t, &fakeService{}, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecoveryHandler(t *testing.T) {
	svc := &fakeService{panicMsg: "boom"}
	rec := serve(t, svc, httptest.NewRequest(http.MethodPost, "/context", strings.NewReader(`{"prompt": "x"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}
