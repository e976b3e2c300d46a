package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"weather-lookup/api"
	"weather-lookup/app"
	"weather-lookup/datasource"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.Any("error", err))
	}

	// Parse command line arguments
	port := flag.Int("port", 0, "Port to run the server on (overrides config)")
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if *port > 0 {
		config.Server.Port = *port
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, config, logger, nil)
	if err != nil {
		logger.Error("failed to start", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	server := api.NewServer(a.Search, a.Themes, config.Server.Port, config.Server.AllowedOrigins, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		return
	}
	logger.Info("shutdown complete")
}
