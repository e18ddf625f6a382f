// Package metrics exposes Prometheus counters for calls to the generation APIs.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mixalchemist/internal/recipe"
)

// Generation kinds.
const (
	KindRecipe         = "recipe"
	KindRecommendation = "recommendation"
	KindImage          = "image"
)

// Generations counts generation calls by kind and outcome.
var Generations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mixalchemist_generations_total",
	Help: "Generation API calls partitioned by kind and outcome.",
}, []string{"kind", "outcome"})

// Outcome classifies err into a label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, recipe.ErrParse):
		return "parse_error"
	case errors.Is(err, recipe.ErrNetwork):
		return "network_error"
	default:
		return "generation_error"
	}
}

// Observe records one call of the given kind.
func Observe(kind string, err error) {
	Generations.WithLabelValues(kind, Outcome(err)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
