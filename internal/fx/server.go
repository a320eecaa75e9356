package fx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/amityadav/searchproxy/internal/config"
	"github.com/amityadav/searchproxy/internal/core"
	"github.com/amityadav/searchproxy/internal/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerModule provides the HTTP server and starts it
var ServerModule = fx.Module("server",
	fx.Provide(NewHTTPServer),
	fx.Invoke(StartServer),
)

// NewHTTPServer creates the HTTP server with the full handler stack
func NewHTTPServer(cfg config.Config, c *core.ContextCore, logger *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.CreateHandler(c, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// ServerParams groups dependencies for starting the server
type ServerParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Server    *http.Server
	Logger    *zap.Logger
}

// StartServer starts the HTTP server with lifecycle management
func StartServer(p ServerParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", p.Server.Addr)
			if err != nil {
				return err
			}

			go func() {
				p.Logger.Info("[FX] HTTP Server listening", zap.String("addr", p.Server.Addr))
				if err := p.Server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("[FX] HTTP Server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("[FX] Shutting down server...")
			return p.Server.Shutdown(ctx)
		},
	})
}
