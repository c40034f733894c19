package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/taptosell-cart/internal/auth"
	"github.com/01moynul/taptosell-cart/internal/cart"
	"github.com/01moynul/taptosell-cart/internal/config"
	"github.com/01moynul/taptosell-cart/internal/database"
	"github.com/01moynul/taptosell-cart/internal/handlers"
	"github.com/01moynul/taptosell-cart/internal/logging"
	"github.com/01moynul/taptosell-cart/internal/routes"
	"github.com/01moynul/taptosell-cart/internal/telemetry"
	"github.com/gin-gonic/gin"
)

const serviceName = "taptosell-cart-api"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

// run owns every resource the server opens and releases them on return.
func run() error {
	// 0. --- Load Environment Variables (.env) ---
	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log := logging.New(logging.Options{
		Service: serviceName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if dotenvErr != nil {
		log.Warn("could not load .env file, relying on system environment variables")
	}
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. --- Tracing ---
	shutdownTracing, err := telemetry.InitTracerProvider(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("initialize tracer provider: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.WithError(err).Warn("tracer provider shutdown failed")
		}
	}()

	// 2. --- Main Database Connection (Read/Write) ---
	db, err := database.OpenDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to primary database: %w", err)
	}
	defer db.Close()
	log.Info("database connection pool established")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		log.Info("schema applied")
	}

	// 3. --- Application Setup ---
	authenticator := auth.NewAuthenticator(database.NewUserStore(db), cfg.Auth)
	app := &handlers.Handlers{
		Cart: cart.NewService(database.NewCartStore(db)),
		Auth: authenticator,
		Log:  log,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, authenticator, routes.Options{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	})

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("starting cart API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("http server error")
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown error")
	}
	log.Info("bye")
	return runErr
}
