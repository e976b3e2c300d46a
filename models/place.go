package models

import "strings"

// AutoTimezone asks the forecast API to infer the zone from coordinates
const AutoTimezone = "auto"

// CurrentLocationName is the display name of a place synthesized from a device position
const CurrentLocationName = "Minha localização"

// Place represents a resolved geographic location
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// PlaceAt synthesizes a place for raw coordinates
func PlaceAt(latitude, longitude float64) Place {
	return Place{
		Name:      CurrentLocationName,
		Latitude:  latitude,
		Longitude: longitude,
		Timezone:  AutoTimezone,
	}
}

// HistoryEntry is a remembered successful lookup
type HistoryEntry struct {
	Name      string   `json:"name"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// EntryFor records a place in history form
func EntryFor(p Place) HistoryEntry {
	lat, lon := p.Latitude, p.Longitude
	return HistoryEntry{
		Name:      p.Name,
		Country:   p.Country,
		Latitude:  &lat,
		Longitude: &lon,
	}
}

// Key is the case-insensitive deduplication key (name, country)
func (e HistoryEntry) Key() string {
	return strings.ToLower(e.Name) + "\x00" + strings.ToLower(e.Country)
}

// SameAs reports whether both entries share a deduplication key
func (e HistoryEntry) SameAs(other HistoryEntry) bool {
	return e.Key() == other.Key()
}

// HasCoordinates reports whether the entry can skip name resolution
func (e HistoryEntry) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}
