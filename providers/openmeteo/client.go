package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"weather-lookup/datasource"
)

var upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "weather",
	Name:      "upstream_request_duration_seconds",
	Help:      "Duration of Open-Meteo requests by operation and outcome.",
	Buckets:   prometheus.DefBuckets,
}, []string{"op", "outcome"})

// Options configures a Client
type Options struct {
	GeocodingURL string
	ForecastURL  string
	Language     string
	ForecastDays int // 0 leaves the upstream default
	Timeout      time.Duration
	UserAgent    string
	HTTPClient   *http.Client // overrides Timeout when set
}

// Client talks to the Open-Meteo geocoding and forecast APIs.
// It implements datasource.Resolver and datasource.ForecastSource.
type Client struct {
	geocodingURL string
	forecastURL  string
	language     string
	forecastDays int
	userAgent    string
	httpClient   *http.Client
	logger       *slog.Logger
}

// Ensure Client implements datasource.Source
var _ datasource.Source = (*Client)(nil)

// NewClient creates a new Open-Meteo client
func NewClient(opts Options, logger *slog.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		geocodingURL: opts.GeocodingURL,
		forecastURL:  opts.ForecastURL,
		language:     opts.Language,
		forecastDays: opts.ForecastDays,
		userAgent:    opts.UserAgent,
		httpClient:   httpClient,
		logger:       logger.With(slog.String("provider", "open-meteo")),
	}
}

// NewClientFromConfig creates a client from the application configuration
func NewClientFromConfig(config *datasource.Config, logger *slog.Logger) *Client {
	return NewClient(Options{
		GeocodingURL: config.OpenMeteo.GeocodingURL,
		ForecastURL:  config.OpenMeteo.ForecastURL,
		Language:     config.OpenMeteo.Language,
		ForecastDays: config.OpenMeteo.ForecastDays,
		Timeout:      config.OpenMeteo.Timeout,
		UserAgent:    config.OpenMeteo.UserAgent,
	}, logger)
}

// Name returns the provider name
func (c *Client) Name() string {
	return "Open-Meteo"
}

// getJSON performs a single GET and decodes the JSON body into out.
// Every failure is reported as a *datasource.TransportError.
func (c *Client) getJSON(ctx context.Context, op, endpoint string, params url.Values, out any) (err error) {
	reqURL := endpoint + "?" + params.Encode()

	ctx, span := otel.Tracer("OpenMeteoClient").Start(ctx, op, trace.WithAttributes(
		attribute.String("http.url", reqURL),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, "upstream request failed")
			c.logger.WarnContext(ctx, "upstream request failed",
				slog.String("op", op),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err))
		} else {
			span.SetStatus(codes.Ok, "upstream request completed")
		}
		upstreamDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	}()

	fail := func(status int, cause error) error {
		return &datasource.TransportError{Op: op, URL: reqURL, StatusCode: status, Err: cause}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fail(0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(0, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return fail(resp.StatusCode, fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(body, 256)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fail(0, fmt.Errorf("%w: %v", datasource.ErrMalformedResponse, err))
	}

	c.logger.DebugContext(ctx, "upstream request completed",
		slog.String("op", op),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
