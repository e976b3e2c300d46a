// Package app wires the configured collaborators into a ready orchestrator.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"weather-lookup/datasource"
	"weather-lookup/geolocation"
	"weather-lookup/history"
	"weather-lookup/prefs"
	"weather-lookup/providers/openmeteo"
	"weather-lookup/search"
	"weather-lookup/storage"
)

// App holds everything a front-end needs
type App struct {
	Config *datasource.Config
	KV     storage.KV
	Source datasource.Source
	Themes *prefs.Themes
	Search *search.Orchestrator
}

// New opens storage and builds the orchestrator. onChange may be nil.
func New(ctx context.Context, config *datasource.Config, logger *slog.Logger, onChange func(search.State)) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kv, err := storage.Open(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", config.Storage.Driver, err)
	}

	source := openmeteo.NewClientFromConfig(config, logger)
	hist := history.New(ctx, history.NewKVStore(kv, logger), logger)

	fallback, err := prefs.ParseTheme(config.Theme.Default)
	if err != nil {
		logger.Warn("invalid default theme, using light", slog.Any("error", err))
		fallback = prefs.Light
	}

	locator := geolocation.FromConfig(config, logger)
	orch := search.NewOrchestrator(source, source, locator, hist, search.Options{
		Debounce: config.Search.Debounce,
		Locate: geolocation.Options{
			HighAccuracy: false,
			Timeout:      config.Geolocation.Timeout,
		},
		OnChange: onChange,
	}, logger)

	logger.Info("weather lookup ready",
		slog.String("provider", source.Name()),
		slog.String("storage", config.Storage.Driver),
		slog.String("geolocation", config.Geolocation.Provider))

	return &App{
		Config: config,
		KV:     kv,
		Source: source,
		Themes: prefs.NewThemes(kv, fallback),
		Search: orch,
	}, nil
}

// Close stops background work and releases storage
func (a *App) Close() error {
	a.Search.Close()
	return a.KV.Close()
}
