package api

import (
	"weather-lookup/models"
	"weather-lookup/search"
)

// DisplayDays is how many daily rows the view renders
const DisplayDays = 5

type currentView struct {
	TemperatureC  float64 `json:"temperatureC"`
	WindKph       float64 `json:"windKph"`
	ConditionCode int     `json:"conditionCode"`
	Label         string  `json:"label"`
	Icon          string  `json:"icon"`
}

type dayView struct {
	Date            string  `json:"date"`
	MaxTemperatureC float64 `json:"maxTemperatureC"`
	MinTemperatureC float64 `json:"minTemperatureC"`
}

// StateView is the JSON rendering of search.State
type StateView struct {
	Query     string        `json:"query"`
	CanSearch bool          `json:"canSearch"`
	Status    search.Status `json:"status"`
	Message   string        `json:"message,omitempty"`
	Loading   bool          `json:"loading"`
	Locating  bool          `json:"locating"`
	AttemptID string        `json:"attemptId,omitempty"`
	Place     *models.Place `json:"place,omitempty"`
	Timezone  string        `json:"timezone,omitempty"`
	Current   *currentView  `json:"current,omitempty"`
	Daily     []dayView     `json:"daily,omitempty"`
}

func newStateView(s search.State) StateView {
	view := StateView{
		Query:     s.Query,
		CanSearch: s.CanSearch(),
		Status:    s.Status,
		Message:   s.Message,
		Loading:   s.Loading,
		Locating:  s.Locating,
		AttemptID: s.AttemptID,
		Place:     s.Place,
	}
	if s.Forecast == nil {
		return view
	}

	condition := s.Forecast.Current.Condition()
	view.Timezone = s.Forecast.Timezone
	view.Current = &currentView{
		TemperatureC:  s.Forecast.Current.TemperatureC,
		WindKph:       s.Forecast.Current.WindKph,
		ConditionCode: s.Forecast.Current.ConditionCode,
		Label:         condition.Label,
		Icon:          condition.Icon,
	}
	for _, d := range s.Forecast.Days(DisplayDays) {
		view.Daily = append(view.Daily, dayView{
			Date:            d.Day(),
			MaxTemperatureC: d.MaxTemperatureC,
			MinTemperatureC: d.MinTemperatureC,
		})
	}
	return view
}
