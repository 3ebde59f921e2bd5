package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nepses",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of AI text generation requests",
	}, []string{"provider", "model"})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nepses",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of failed AI text generation requests",
	}, []string{"provider", "model"})
)
