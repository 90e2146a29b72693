package binarydict

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Lookups counts FindCandidates calls by result, hit or miss.
var Lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "akaza",
	Subsystem: "dict",
	Name:      "lookups",
	Help:      "Candidate lookups by result",
}, []string{"result"})

// Keys is the key count of the current dictionary.
var Keys = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "akaza",
	Subsystem: "dict",
	Name:      "keys",
	Help:      "Composite keys in the most recently built or loaded dictionary",
})

// BuildDuration observes successful builds.
var BuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "akaza",
	Subsystem: "dict",
	Name:      "build_duration_seconds",
	Help:      "Time spent merging, encoding and building the trie",
	Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
})

// Collectors returns the dictionary metrics for registration by the
// embedding application.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{Lookups, Keys, BuildDuration}
}
