package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// IPLocator estimates the position from the public IP address. It is always
// a coarse fix, so Options.HighAccuracy has no effect.
type IPLocator struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

var _ Locator = (*IPLocator)(nil)

// NewIPLocator creates a locator for an ip-api compatible endpoint
func NewIPLocator(endpoint string, client *http.Client, logger *slog.Logger) *IPLocator {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IPLocator{endpoint: endpoint, client: client, logger: logger}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate performs one lookup bounded by opts.Timeout
func (l *IPLocator) Locate(ctx context.Context, opts Options) (Position, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("fields", "status,message,lat,lon")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Position{}, &Error{Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Position{}, ErrTimeout
		}
		l.logger.WarnContext(ctx, "ip lookup failed", slog.Any("error", err))
		return Position{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Position{}, fmt.Errorf("%w: ip lookup returned HTTP %d",
			FromCode(codeForStatus(resp.StatusCode), ""), resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Position{}, ErrTimeout
		}
		return Position{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}

	var lookup ipLookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return Position{}, fmt.Errorf("%w: malformed lookup response: %v", ErrPositionUnavailable, err)
	}
	if lookup.Status != "success" {
		return Position{}, fmt.Errorf("%w: %s", ErrPositionUnavailable, lookup.Message)
	}

	return Position{Latitude: lookup.Lat, Longitude: lookup.Lon}, nil
}

// codeForStatus maps a lookup HTTP status to the platform failure code it stands for
func codeForStatus(status int) int {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodePermissionDenied
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return CodeTimeout
	default:
		return CodePositionUnavailable
	}
}
