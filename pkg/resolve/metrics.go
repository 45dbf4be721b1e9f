package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolutionsTotal tracks individual reference resolutions by outcome:
	// "hit" (served from cache), "fetched" (upstream fetch), "degraded"
	// (left as the raw reference string).
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_resolutions_total",
			Help: "Total reference resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// expansionsTotal tracks relation expansions by collection and relation.
	expansionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_expansions_total",
			Help: "Total relation expansions by collection and relation",
		},
		[]string{"collection", "relation"},
	)
)
