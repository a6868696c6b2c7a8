package spacetraveling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spacetraveling_cache_lookups_total",
	Help: "Number of post cache lookups",
}, []string{"kind", "result"})

var loadMoreRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spacetraveling_load_more_requests_total",
	Help: "Number of load more requests by outcome",
}, []string{"result"})

var readingTimeMinutes = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "spacetraveling_reading_time_minutes",
	Help:    "Estimated reading time of rendered posts",
	Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
})

var buildPages = promauto.NewCounter(prometheus.CounterOpts{
	Name: "spacetraveling_build_pages_total",
	Help: "Number of pages written by static builds",
})
