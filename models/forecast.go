package models

import (
	"time"
)

// DateLayout is the calendar-day layout used by the forecast API for daily values
const DateLayout = "2006-01-02"

// DailyForecast holds the temperature extremes for a single calendar day
type DailyForecast struct {
	Date            time.Time `json:"date"`            // midnight of the day in the forecast timezone
	MaxTemperatureC float64   `json:"maxTemperatureC"` // in Celsius
	MinTemperatureC float64   `json:"minTemperatureC"` // in Celsius
}

// Day returns the calendar day formatted as YYYY-MM-DD
func (d DailyForecast) Day() string {
	return d.Date.Format(DateLayout)
}

// ForecastSnapshot represents current conditions plus the daily outlook for a place.
// A snapshot is replaced wholesale on every successful fetch.
type ForecastSnapshot struct {
	Current  CurrentConditions `json:"current"`
	Daily    []DailyForecast   `json:"daily"`    // ascending by date
	Timezone string            `json:"timezone"` // zone the upstream resolved
	Fetched  time.Time         `json:"fetched"`
}

// Days returns at most n leading daily entries
func (f ForecastSnapshot) Days(n int) []DailyForecast {
	if n < 0 {
		n = 0
	}
	if n > len(f.Daily) {
		n = len(f.Daily)
	}
	return f.Daily[:n]
}
