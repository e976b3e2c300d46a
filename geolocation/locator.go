// Package geolocation provides the single-shot "where am I" capability used
// by the location search.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"weather-lookup/datasource"
)

// Position is a device position in decimal degrees
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Options controls a single position request
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// DefaultOptions asks for a coarse position within ten seconds
var DefaultOptions = Options{HighAccuracy: false, Timeout: 10 * time.Second}

// Locator acquires the current position once
type Locator interface {
	Locate(ctx context.Context, opts Options) (Position, error)
}

// Platform failure codes
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

var (
	// ErrUnsupported means no geolocation capability is available at all
	ErrUnsupported         = errors.New("geolocation is not supported")
	ErrPermissionDenied    = errors.New("permission to read the position was denied")
	ErrPositionUnavailable = errors.New("position is currently unavailable")
	ErrTimeout             = errors.New("timed out acquiring the position")
)

// Error is a position failure with a code outside the known ones
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("geolocation failed with code %d", e.Code)
	}
	return fmt.Sprintf("geolocation failed with code %d: %s", e.Code, e.Message)
}

// FromCode maps a platform failure code to its error kind
func FromCode(code int, message string) error {
	switch code {
	case CodePermissionDenied:
		return ErrPermissionDenied
	case CodePositionUnavailable:
		return ErrPositionUnavailable
	case CodeTimeout:
		return ErrTimeout
	default:
		return &Error{Code: code, Message: message}
	}
}

// FromConfig builds the configured locator; nil means the capability is absent
func FromConfig(config *datasource.Config, logger *slog.Logger) Locator {
	switch config.Geolocation.Provider {
	case "ip":
		return NewIPLocator(config.Geolocation.IPURL, &http.Client{}, logger)
	case "static":
		return NewStaticLocator(Position{
			Latitude:  config.Geolocation.Latitude,
			Longitude: config.Geolocation.Longitude,
		})
	default:
		return nil
	}
}

// StaticLocator always reports the same configured position
type StaticLocator struct {
	position Position
}

var _ Locator = (*StaticLocator)(nil)

func NewStaticLocator(p Position) *StaticLocator {
	return &StaticLocator{position: p}
}

func (s *StaticLocator) Locate(ctx context.Context, _ Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Position{}, ErrTimeout
		}
		return Position{}, &Error{Message: err.Error()}
	}
	return s.position, nil
}
