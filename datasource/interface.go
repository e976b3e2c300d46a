package datasource

import (
	"context"

	"weather-lookup/models"
)

// Resolver turns a free-text place name into the best matching place
type Resolver interface {
	// Resolve returns the rank-1 match or ErrNotFound
	Resolve(ctx context.Context, name string) (models.Place, error)
}

// ForecastSource fetches current conditions and the daily outlook
type ForecastSource interface {
	FetchByPlace(ctx context.Context, place models.Place) (models.ForecastSnapshot, error)

	// FetchByCoordinates accepts an IANA zone or models.AutoTimezone
	FetchByCoordinates(ctx context.Context, latitude, longitude float64, timezone string) (models.ForecastSnapshot, error)
}

// Source is a provider that can do both
type Source interface {
	Resolver
	ForecastSource
	Name() string
}
