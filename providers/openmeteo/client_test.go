package openmeteo

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-lookup/datasource"
	"weather-lookup/models"
)

const curitibaGeocoding = `{
  "results": [
    {"id": 6322752, "name": "Curitiba", "latitude": -25.42778, "longitude": -49.27306,
     "country": "Brazil", "timezone": "America/Sao_Paulo"},
    {"id": 1, "name": "Curitiba Second", "latitude": 0, "longitude": 0,
     "country": "Nowhere", "timezone": "UTC"}
  ],
  "generationtime_ms": 0.5
}`

const curitibaForecast = `{
  "latitude": -25.4375,
  "longitude": -49.25,
  "timezone": "America/Sao_Paulo",
  "current": {"time": "2026-10-17T12:00", "temperature_2m": 21.4, "wind_speed_10m": 11.2, "weather_code": 3},
  "daily": {
    "time": ["2026-10-17", "2026-10-18", "2026-10-19", "2026-10-20", "2026-10-21", "2026-10-22"],
    "temperature_2m_max": [24.1, 25.0, 19.8, 22.2, 23.3, 26.0],
    "temperature_2m_min": [13.2, 14.0, 12.5, 11.9, 12.0, 15.1]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Options{
		GeocodingURL: server.URL,
		ForecastURL:  server.URL,
		Language:     "pt",
		ForecastDays: 5,
		Timeout:      2 * time.Second,
		UserAgent:    "weather-lookup-test",
	}, nil)
}

func TestResolveTakesFirstResult(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "weather-lookup-test", r.Header.Get("User-Agent"))
		q := r.URL.Query()
		gotQuery = map[string]string{
			"name":     q.Get("name"),
			"count":    q.Get("count"),
			"language": q.Get("language"),
			"format":   q.Get("format"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(curitibaGeocoding))
	})

	place, err := client.Resolve(context.Background(), "Curitiba")
	require.NoError(t, err)

	assert.Equal(t, "Curitiba", place.Name)
	assert.Equal(t, "Brazil", place.Country)
	assert.Equal(t, "America/Sao_Paulo", place.Timezone)
	assert.InDelta(t, -25.42778, place.Latitude, 1e-9)
	assert.Equal(t, map[string]string{"name": "Curitiba", "count": "1", "language": "pt", "format": "json"}, gotQuery)
}

func TestResolveEncodesName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "São Paulo & Co", r.URL.Query().Get("name"))
		assert.NotContains(t, r.URL.RawQuery, " ")
		_, _ = w.Write([]byte(`{"results":[{"name":"São Paulo","country":"Brasil","latitude":-23.5,"longitude":-46.6,"timezone":"America/Sao_Paulo"}]}`))
	})

	place, err := client.Resolve(context.Background(), "São Paulo & Co")
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", place.Name)
}

func TestResolveNotFound(t *testing.T) {
	tests := map[string]string{
		"absent results": `{"generationtime_ms": 0.3}`,
		"empty results":  `{"results": []}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := client.Resolve(context.Background(), "xyzNotARealCity123")
			assert.ErrorIs(t, err, datasource.ErrNotFound)
			assert.False(t, datasource.IsTransport(err))
		})
	}
}

func TestResolveHTTPFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":true,"reason":"boom"}`, http.StatusInternalServerError)
	})

	_, err := client.Resolve(context.Background(), "Curitiba")
	require.Error(t, err)

	var te *datasource.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Equal(t, "geocoding", te.Op)
}

func TestResolveMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	_, err := client.Resolve(context.Background(), "Curitiba")
	assert.True(t, datasource.IsTransport(err))
	assert.ErrorIs(t, err, datasource.ErrMalformedResponse)
}

func TestResolveNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(Options{GeocodingURL: url, ForecastURL: url, Language: "pt"}, nil)

	_, err := client.Resolve(context.Background(), "Curitiba")
	var te *datasource.TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
}

func TestFetchByPlace(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "-25.42778", q.Get("latitude"))
		assert.Equal(t, "-49.27306", q.Get("longitude"))
		assert.Equal(t, "temperature_2m,wind_speed_10m,weather_code", q.Get("current"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min", q.Get("daily"))
		assert.Equal(t, "America/Sao_Paulo", q.Get("timezone"))
		assert.Equal(t, "5", q.Get("forecast_days"))
		_, _ = w.Write([]byte(curitibaForecast))
	})

	place := models.Place{Name: "Curitiba", Country: "Brazil", Latitude: -25.42778, Longitude: -49.27306, Timezone: "America/Sao_Paulo"}
	snap, err := client.FetchByPlace(context.Background(), place)
	require.NoError(t, err)

	assert.InDelta(t, 21.4, snap.Current.TemperatureC, 1e-9)
	assert.InDelta(t, 11.2, snap.Current.WindKph, 1e-9)
	assert.Equal(t, 3, snap.Current.ConditionCode)
	assert.Equal(t, "America/Sao_Paulo", snap.Timezone)
	require.Len(t, snap.Daily, 6)

	first := snap.Daily[0]
	assert.False(t, math.IsNaN(first.MaxTemperatureC) || math.IsInf(first.MaxTemperatureC, 0))
	_, err = time.Parse(models.DateLayout, first.Day())
	assert.NoError(t, err)
	assert.Equal(t, "2026-10-17", first.Day())
	assert.Len(t, snap.Days(5), 5)
}

func TestFetchByCoordinatesDefaultsToAutoTimezone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "auto", r.URL.Query().Get("timezone"))
		_, _ = w.Write([]byte(curitibaForecast))
	})

	_, err := client.FetchByCoordinates(context.Background(), 1.5, 2.5, "")
	assert.NoError(t, err)
}

func TestFetchMismatchedDailyArrays(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{},"daily":{"time":["2026-10-17","2026-10-18"],"temperature_2m_max":[1],"temperature_2m_min":[0,1]}}`))
	})

	_, err := client.FetchByCoordinates(context.Background(), 0, 0, "auto")
	assert.True(t, datasource.IsTransport(err))
	assert.ErrorIs(t, err, datasource.ErrMalformedResponse)
}

func TestFetchInvalidDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{},"daily":{"time":["17/10/2026"],"temperature_2m_max":[1],"temperature_2m_min":[0]}}`))
	})

	_, err := client.FetchByCoordinates(context.Background(), 0, 0, "auto")
	assert.ErrorIs(t, err, datasource.ErrMalformedResponse)
}

func TestFetchHTTPFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`))
	})

	_, err := client.FetchByCoordinates(context.Background(), 200, 0, "auto")
	var te *datasource.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	assert.Equal(t, "forecast", te.Op)
}
