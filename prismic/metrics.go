package prismic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "prismic_requests_total",
	Help: "Number of requests made to the Prismic API",
}, []string{"op", "status"})

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "prismic_request_duration_seconds",
	Help:    "Latency of requests made to the Prismic API",
	Buckets: prometheus.DefBuckets,
}, []string{"op"})
