package search

import (
	"strings"
	"unicode/utf8"

	"weather-lookup/models"
)

// MinQueryLength is the shortest trimmed query that may be searched
const MinQueryLength = 2

// Status is the phase of the most recent attempt
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry names the entry point that started an attempt
type Entry string

const (
	EntryManual      Entry = "manual"
	EntryAuto        Entry = "auto"
	EntryGeolocation Entry = "geolocation"
	EntryReplay      Entry = "replay"
)

// State is a snapshot of everything the presentation layer renders.
// Place and Forecast are both set only when Status is StatusSuccess, although
// Place may already be filled in while the forecast is loading.
type State struct {
	Query     string                   `json:"query"`
	Status    Status                   `json:"status"`
	Loading   bool                     `json:"loading"`
	Locating  bool                     `json:"locating"`
	Place     *models.Place            `json:"place,omitempty"`
	Forecast  *models.ForecastSnapshot `json:"forecast,omitempty"`
	Message   string                   `json:"message,omitempty"`
	AttemptID string                   `json:"attemptId,omitempty"`
	Entry     Entry                    `json:"entry,omitempty"`
}

// CanSearch reports whether a manual search would be accepted
func (s State) CanSearch() bool {
	return searchable(s.Query) && !s.Loading
}

func searchable(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinQueryLength
}

func (s State) clone() State {
	if s.Place != nil {
		p := *s.Place
		s.Place = &p
	}
	if s.Forecast != nil {
		f := *s.Forecast
		f.Daily = append([]models.DailyForecast(nil), s.Forecast.Daily...)
		s.Forecast = &f
	}
	return s
}
