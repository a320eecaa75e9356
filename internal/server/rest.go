package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

const maxRequestBytes = 1 << 20

// ContextService is what the REST layer needs from the context core
type ContextService interface {
	BuildContext(ctx context.Context, prompt string, providers []string) (string, error)
	Providers() []string
	Chain() []string
}

type contextRequest struct {
	Prompt    string   `json:"prompt"`
	Providers []string `json:"providers,omitempty"`
}

type contextResponse struct {
	Context string `json:"context"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type providersResponse struct {
	Providers []string `json:"providers"`
	Chain     []string `json:"chain"`
}

// CreateRESTHandler creates the proxy's HTTP endpoints
func CreateRESTHandler(svc ContextService, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /healthcheck", handleHealthcheck)
	mux.HandleFunc("GET /providers", func(w http.ResponseWriter, r *http.Request) {
		handleProviders(w, r, svc)
	})
	mux.HandleFunc("POST /context", func(w http.ResponseWriter, r *http.Request) {
		handleContext(w, r, svc, logger)
	})
	mux.HandleFunc("OPTIONS /", handleOptions)
	return mux
}

func handleContext(w http.ResponseWriter, r *http.Request, svc ContextService, logger *zap.Logger) {
	var req contextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, logger, fmt.Errorf("invalid JSON body: %w", err))
		return
	}

	text, err := svc.BuildContext(r.Context(), req.Prompt, req.Providers)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, contextResponse{Context: text})
}

func handleProviders(w http.ResponseWriter, r *http.Request, svc ContextService) {
	writeJSON(w, http.StatusOK, providersResponse{Providers: svc.Providers(), Chain: svc.Chain()})
}

func handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Search Proxy is running"))
}

// handleOptions answers CORS preflight requests for any path
func handleOptions(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Error("error processing request", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Error processing request: " + err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
