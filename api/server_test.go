package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-lookup/datasource"
	"weather-lookup/geolocation"
	"weather-lookup/history"
	"weather-lookup/models"
	"weather-lookup/prefs"
	"weather-lookup/search"
	"weather-lookup/storage"
)

type stubSource struct {
	places map[string]models.Place
}

func (s *stubSource) Resolve(_ context.Context, name string) (models.Place, error) {
	if p, ok := s.places[strings.ToLower(name)]; ok {
		return p, nil
	}
	return models.Place{}, datasource.ErrNotFound
}

func (s *stubSource) FetchByPlace(ctx context.Context, place models.Place) (models.ForecastSnapshot, error) {
	return s.FetchByCoordinates(ctx, place.Latitude, place.Longitude, place.Timezone)
}

func (s *stubSource) FetchByCoordinates(_ context.Context, _, _ float64, timezone string) (models.ForecastSnapshot, error) {
	snap := models.ForecastSnapshot{
		Current:  models.CurrentConditions{TemperatureC: 18.2, WindKph: 12, ConditionCode: 61},
		Timezone: timezone,
	}
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		snap.Daily = append(snap.Daily, models.DailyForecast{
			Date:            start.AddDate(0, 0, i),
			MaxTemperatureC: 20 + float64(i),
			MinTemperatureC: 10 + float64(i),
		})
	}
	return snap, nil
}

func newTestServer(t *testing.T, locator geolocation.Locator) *Server {
	t.Helper()
	ctx := context.Background()
	source := &stubSource{places: map[string]models.Place{
		"porto": {Name: "Porto", Country: "Portugal", Latitude: 41.15, Longitude: -8.61, Timezone: "Europe/Lisbon"},
	}}

	kv := storage.NewMemory()
	hist := history.New(ctx, history.NewKVStore(kv, nil), nil)
	orch := search.NewOrchestrator(source, source, locator, hist, search.Options{Locate: geolocation.DefaultOptions}, nil)
	t.Cleanup(orch.Close)

	return NewServer(orch, prefs.NewThemes(kv, prefs.Light), 0, []string{"*"}, nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) StateView {
	t.Helper()
	var view StateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestSearchFlow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPut, "/api/query", `{"query":"Porto"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeState(t, rec).CanSearch)

	rec = do(t, s, http.MethodPost, "/api/search", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeState(t, rec)
	assert.Equal(t, search.StatusSuccess, view.Status)
	require.NotNil(t, view.Place)
	assert.Equal(t, "Portugal", view.Place.Country)
	require.NotNil(t, view.Current)
	assert.Equal(t, "Chuva", view.Current.Label)
	require.Len(t, view.Daily, DisplayDays)
	assert.Equal(t, "2025-06-01", view.Daily[0].Date)

	rec = do(t, s, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		Entries []models.HistoryEntry `json:"entries"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Equal(t, 1, hist.Count)
	assert.Equal(t, "Porto", hist.Entries[0].Name)
}

func TestSearchTooShort(t *testing.T) {
	s := newTestServer(t, nil)

	do(t, s, http.MethodPut, "/api/query", `{"query":" P "}`)
	rec := do(t, s, http.MethodPost, "/api/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchNotFoundIsReportedInState(t *testing.T) {
	s := newTestServer(t, nil)

	do(t, s, http.MethodPut, "/api/query", `{"query":"Atlantis"}`)
	rec := do(t, s, http.MethodPost, "/api/search", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeState(t, rec)
	assert.Equal(t, search.StatusError, view.Status)
	assert.Equal(t, search.MsgNotFound, view.Message)
	assert.Nil(t, view.Place)
}

func TestLocateWithoutCapability(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/locate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, search.MsgUnsupported, decodeState(t, rec).Message)
}

func TestLocateWithStaticPosition(t *testing.T) {
	s := newTestServer(t, geolocation.NewStaticLocator(geolocation.Position{Latitude: 1, Longitude: 2}))

	rec := do(t, s, http.MethodPost, "/api/locate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeState(t, rec)
	assert.Equal(t, search.StatusSuccess, view.Status)
	assert.Equal(t, models.CurrentLocationName, view.Place.Name)
	assert.Equal(t, models.AutoTimezone, view.Timezone)
}

func TestReplayAndClearHistory(t *testing.T) {
	s := newTestServer(t, nil)

	do(t, s, http.MethodPut, "/api/query", `{"query":"Porto"}`)
	do(t, s, http.MethodPost, "/api/search", "")
	do(t, s, http.MethodPost, "/api/reset", "")

	rec := do(t, s, http.MethodPost, "/api/history/replay", `{"index":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/history/replay", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/history/replay", `{"index":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeState(t, rec)
	assert.Equal(t, "Porto", view.Query)
	assert.Equal(t, search.StatusSuccess, view.Status)

	rec = do(t, s, http.MethodDelete, "/api/history", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/history", "")
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestReset(t *testing.T) {
	s := newTestServer(t, nil)

	do(t, s, http.MethodPut, "/api/query", `{"query":"Porto"}`)
	rec := do(t, s, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeState(t, rec)
	assert.Empty(t, view.Query)
	assert.Equal(t, search.StatusIdle, view.Status)
}

func TestTheme(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/theme", "")
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/theme/toggle", "")
	assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/api/theme", `{"theme":"LIGHT"}`)
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/api/theme", `{"theme":"sepia"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/search", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
