package admin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ActionsTotal counts administrative actions by event type and status.
var ActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "prism_admin_actions_total",
		Help: "Total number of administrative actions executed against the warehouse",
	},
	[]string{"event_type", "status"},
)
