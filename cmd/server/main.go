package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/wordrooms/internal/api"
	"github.com/mcoot/wordrooms/internal/config"
	"github.com/mcoot/wordrooms/internal/factory"
)

func main() {
	// A missing .env file is fine; real environment variables still apply
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv(config.EnvPrefix+"_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	// Create application factory
	app, err := factory.New(cfg.Factory(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load dictionary; rooms fall back to the configured main word without one
	if err := app.LoadDictionary(ctx, cfg.Dictionary.Path); err != nil {
		logger.Warn("could not load dictionary", slog.String("error", err.Error()))
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Validator: app.Validator,
		Registry:  app.Registry,
		Results:   app.Storage,
		Sessions:  app.Sessions,
	})
	server := api.NewServer(router, cfg.APIServer(), logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		return app.Registry.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		// Shutdown gets its own deadline from the server config
		return server.Shutdown(context.WithoutCancel(gctx))
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
