package api

import (
	"net/http"
	"time"
)

// CostReport handles GET /v1/cost?from&to. The report opens its own
// sessions, one per dataset.
func (h *Handler) CostReport(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = parseTime(raw, false); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = parseTime(raw, true); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	report, err := h.cost.Report(r.Context(), from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
