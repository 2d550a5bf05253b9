package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service counters. Registered on the default registry and exposed via
// the /metrics endpoint when metrics are enabled.
var (
	PastesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wrenbin_pastes_created_total",
		Help: "Total number of pastes created.",
	})

	PastesRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wrenbin_pastes_read_total",
		Help: "Total number of successful paste reads by access mode.",
	}, []string{"mode"})

	PastesBurned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wrenbin_pastes_burned_total",
		Help: "Total number of burn-after-reading pastes consumed.",
	})

	KeyCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wrenbin_key_collisions_total",
		Help: "Total number of key collisions hit during create.",
	})

	PastesPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wrenbin_pastes_purged_total",
		Help: "Total number of expired pastes removed by the janitor.",
	})
)
