package governance

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"prism-console/internal/domain"
)

// Count is one label and the number of events carrying it.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TimelineBucket counts events of one type within one hour.
type TimelineBucket struct {
	Hour      time.Time `json:"hour"`
	EventType string    `json:"event_type"`
	Count     int       `json:"count"`
}

// AuditSummary holds the distributions shown on the audit review page.
// Counts are sorted by descending count, then label.
type AuditSummary struct {
	Total    int              `json:"total"`
	ByType   []Count          `json:"by_type"`
	ByStatus []Count          `json:"by_status"`
	ByUser   []Count          `json:"by_user"`
	ByRole   []Count          `json:"by_role"`
	Timeline []TimelineBucket `json:"timeline"`
}

// Summarize computes the review distributions for events.
func Summarize(events []domain.AuditEvent) AuditSummary {
	byType := map[string]int{}
	byStatus := map[string]int{}
	byUser := map[string]int{}
	byRole := map[string]int{}
	type hourKey struct {
		hour      time.Time
		eventType string
	}
	timeline := map[hourKey]int{}

	for _, e := range events {
		byType[e.EventType]++
		byStatus[string(e.Status)]++
		byUser[e.InvokedBy]++
		byRole[e.InvokedByRole]++
		timeline[hourKey{hour: e.EventTime.UTC().Truncate(time.Hour), eventType: e.EventType}]++
	}

	buckets := make([]TimelineBucket, 0, len(timeline))
	for k, n := range timeline {
		buckets = append(buckets, TimelineBucket{Hour: k.hour, EventType: k.eventType, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if !buckets[i].Hour.Equal(buckets[j].Hour) {
			return buckets[i].Hour.Before(buckets[j].Hour)
		}
		return buckets[i].EventType < buckets[j].EventType
	})

	return AuditSummary{
		Total:    len(events),
		ByType:   sortedCounts(byType),
		ByStatus: sortedCounts(byStatus),
		ByUser:   sortedCounts(byUser),
		ByRole:   sortedCounts(byRole),
		Timeline: buckets,
	}
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// csvHeader is the column order of WriteCSV.
var csvHeader = []string{
	"EVENT_ID", "EVENT_TIME", "INVOKED_BY", "INVOKED_BY_ROLE", "EVENT_TYPE",
	"OBJECT_NAME", "SQL_COMMAND", "STATUS", "MESSAGE",
}

// WriteCSV writes a header line and one line per event.
func WriteCSV(w io.Writer, events []domain.AuditEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range events {
		record := []string{
			strconv.FormatInt(e.EventID, 10),
			e.EventTime.UTC().Format(time.RFC3339),
			e.InvokedBy,
			e.InvokedByRole,
			e.EventType,
			e.ObjectName,
			e.SQLCommand,
			string(e.Status),
			e.Message,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record %d: %w", e.EventID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
