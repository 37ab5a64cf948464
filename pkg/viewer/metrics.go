package viewer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_loads_total",
		Help: "Load-more requests by trigger and outcome",
	}, []string{"trigger", "outcome"})

	collectionItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokedex_collection_items",
		Help: "Summaries held by the most recently updated session",
	})

	filterRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokedex_filter_runs_total",
		Help: "Filtered view recomputations",
	})

	detailRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_detail_requests_total",
		Help: "Detail lookups by result (hit, miss, error)",
	}, []string{"result"})
)
