package openmeteo

import (
	"context"
	"fmt"
	"net/url"

	"weather-lookup/datasource"
	"weather-lookup/models"
)

// geocodingResponse represents the search endpoint payload; results is
// absent when nothing matched.
type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

// Resolve returns the best match for a free-text place name
func (c *Client) Resolve(ctx context.Context, name string) (models.Place, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	params.Set("language", c.language)
	params.Set("format", "json")

	var response geocodingResponse
	if err := c.getJSON(ctx, "geocoding", c.geocodingURL+"/v1/search", params, &response); err != nil {
		return models.Place{}, err
	}

	if len(response.Results) == 0 {
		return models.Place{}, fmt.Errorf("resolve %q: %w", name, datasource.ErrNotFound)
	}

	best := response.Results[0]
	return models.Place{
		Name:      best.Name,
		Country:   best.Country,
		Latitude:  best.Latitude,
		Longitude: best.Longitude,
		Timezone:  best.Timezone,
	}, nil
}
