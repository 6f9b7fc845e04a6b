package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Log names used as the "log" label.
const (
	logAudit         = "audit"
	logRoleHierarchy = "role_hierarchy"
)

var (
	// LogWritesTotal counts log write attempts by log and outcome.
	LogWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_audit_log_writes_total",
			Help: "Total number of audit and role hierarchy log writes by outcome",
		},
		[]string{"log", "outcome"},
	)
	// IdentityFallbackTotal counts identity lookups that fell back to a sentinel.
	IdentityFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_identity_fallback_total",
			Help: "Total number of identity lookups answered with a sentinel",
		},
		[]string{"kind"},
	)
)
