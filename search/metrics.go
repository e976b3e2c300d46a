package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "weather",
	Name:      "search_attempts_total",
	Help:      "Search attempts by entry point and outcome.",
}, []string{"entry", "outcome"})

func recordAttempt(entry Entry, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attemptsTotal.WithLabelValues(string(entry), outcome).Inc()
}
