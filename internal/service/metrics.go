package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	parseFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recordmap_parse_fallbacks_total",
			Help: "Persisted columns replaced by their default while building record maps",
		},
		[]string{"kind", "field"},
	)

	queryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_query_cache_total",
			Help: "Collection query cache lookups by result",
		},
		[]string{"result"},
	)
)
