package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"weather-lookup/models"
	"weather-lookup/prefs"
	"weather-lookup/search"
)

const displayDays = 5

// renderer serialises output from the prompt and from background attempts
type renderer struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *renderer) printf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}

func (r *renderer) state(s search.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	writeState(r.w, s)
}

func (r *renderer) history(entries []models.HistoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(entries) == 0 {
		fmt.Fprintln(r.w, "Nenhuma busca recente.")
		return
	}
	fmt.Fprintln(r.w, "Buscas recentes:")
	for i, e := range entries {
		label := e.Name
		if e.Country != "" {
			label += ", " + e.Country
		}
		fmt.Fprintf(r.w, "  %d. %s\n", i+1, label)
	}
}

func (r *renderer) theme(t prefs.Theme) {
	r.printf("Tema: %s\n", t)
}

func writeState(w io.Writer, s search.State) {
	switch s.Status {
	case search.StatusLoading:
		if s.Locating {
			fmt.Fprintln(w, "Obtendo localização...")
		} else {
			fmt.Fprintln(w, "Carregando...")
		}
	case search.StatusError:
		fmt.Fprintf(w, "Erro: %s\n", s.Message)
	case search.StatusSuccess:
		if s.Place == nil || s.Forecast == nil {
			return
		}
		place := s.Place.Name
		if s.Place.Country != "" {
			place += ", " + s.Place.Country
		}
		condition := s.Forecast.Current.Condition()

		fmt.Fprintf(w, "\n%s\n%s\n", place, strings.Repeat("-", len([]rune(place))))
		fmt.Fprintf(w, "%s %s  %.1f°C  vento %.1f km/h\n",
			condition.Icon, condition.Label, s.Forecast.Current.TemperatureC, s.Forecast.Current.WindKph)
		for _, d := range s.Forecast.Days(displayDays) {
			fmt.Fprintf(w, "  %s  máx %.1f°C  mín %.1f°C\n", d.Day(), d.MaxTemperatureC, d.MinTemperatureC)
		}
	}
}
