package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	generationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learning",
		Name:      "generation_total",
		Help:      "Content generation calls by kind and outcome (generated or fallback)",
	}, []string{"kind", "outcome"})

	throttleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learning",
		Name:      "login_throttle_total",
		Help:      "Login throttle events: failure, blocked, rejected, reset",
	}, []string{"event"})

	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learning",
		Name:      "test_submissions_total",
		Help:      "Module test submissions by result",
	}, []string{"result"})
)

func RecordGeneration(kind, outcome string) {
	generationTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordThrottle(event string) {
	throttleTotal.WithLabelValues(event).Inc()
}

func RecordSubmission(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	submissionsTotal.WithLabelValues(result).Inc()
}

// Handler exposes the default registry on a gin route.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
