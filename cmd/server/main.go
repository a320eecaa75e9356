package main

import (
	"log"

	appfx "github.com/amityadav/searchproxy/internal/fx"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app := fx.New(
		appfx.AppModules,   // Provides: config.Config, *zap.Logger, *fetch.Client, *search.Registry, *core.ContextCore
		appfx.ServerModule, // Starts the HTTP server

		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
	)

	// Run blocks until the app receives a shutdown signal
	app.Run()
}
