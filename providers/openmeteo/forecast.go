package openmeteo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"weather-lookup/datasource"
	"weather-lookup/models"
)

const (
	currentFields = "temperature_2m,wind_speed_10m,weather_code"
	dailyFields   = "temperature_2m_max,temperature_2m_min"
)

// forecastResponse represents the forecast endpoint payload. Daily values
// come as parallel arrays indexed by day.
type forecastResponse struct {
	Timezone string `json:"timezone"`
	Current  struct {
		Temperature float64 `json:"temperature_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"` // km/h
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time           []string  `json:"time"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// FetchByPlace fetches the forecast for a resolved place
func (c *Client) FetchByPlace(ctx context.Context, place models.Place) (models.ForecastSnapshot, error) {
	return c.FetchByCoordinates(ctx, place.Latitude, place.Longitude, place.Timezone)
}

// FetchByCoordinates fetches the forecast for raw coordinates
func (c *Client) FetchByCoordinates(ctx context.Context, latitude, longitude float64, timezone string) (models.ForecastSnapshot, error) {
	if timezone == "" {
		timezone = models.AutoTimezone
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("current", currentFields)
	params.Set("daily", dailyFields)
	params.Set("timezone", timezone)
	if c.forecastDays > 0 {
		params.Set("forecast_days", strconv.Itoa(c.forecastDays))
	}

	endpoint := c.forecastURL + "/v1/forecast"

	var response forecastResponse
	if err := c.getJSON(ctx, "forecast", endpoint, params, &response); err != nil {
		return models.ForecastSnapshot{}, err
	}

	daily, err := convertDaily(response)
	if err != nil {
		return models.ForecastSnapshot{}, &datasource.TransportError{
			Op:  "forecast",
			URL: endpoint,
			Err: fmt.Errorf("%w: %v", datasource.ErrMalformedResponse, err),
		}
	}

	return models.ForecastSnapshot{
		Current: models.CurrentConditions{
			TemperatureC:  response.Current.Temperature,
			WindKph:       response.Current.WindSpeed,
			ConditionCode: response.Current.WeatherCode,
		},
		Daily:    daily,
		Timezone: response.Timezone,
		Fetched:  time.Now(),
	}, nil
}

func convertDaily(response forecastResponse) ([]models.DailyForecast, error) {
	d := response.Daily
	if len(d.TemperatureMax) != len(d.Time) || len(d.TemperatureMin) != len(d.Time) {
		return nil, fmt.Errorf("daily arrays differ in length: time=%d max=%d min=%d",
			len(d.Time), len(d.TemperatureMax), len(d.TemperatureMin))
	}

	daily := make([]models.DailyForecast, 0, len(d.Time))
	for i, day := range d.Time {
		date, err := time.Parse(models.DateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("invalid daily date %q: %w", day, err)
		}
		daily = append(daily, models.DailyForecast{
			Date:            date,
			MaxTemperatureC: d.TemperatureMax[i],
			MinTemperatureC: d.TemperatureMin[i],
		})
	}
	return daily, nil
}
