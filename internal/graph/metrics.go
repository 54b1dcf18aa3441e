package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graph_resolve_duration_seconds",
			Help:    "Content graph resolution duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	resolvedNodes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graph_resolved_nodes",
			Help:    "Number of nodes returned by a content graph resolution",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7), // 1 to 4096
		},
		[]string{"mode"},
	)
)

const (
	modeRoot = "root"
	modeIDs  = "ids"
)
