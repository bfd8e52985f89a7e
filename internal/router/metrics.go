package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var routingsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "delta_routings_total",
		Help: "Routed utterances by selected intent",
	},
	[]string{"intent"},
)
