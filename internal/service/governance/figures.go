package governance

import (
	"sort"

	"prism-console/internal/chart"
)

// SummaryFigures builds the dark-themed review charts for sum, keyed by
// name: event_types, statuses, timeline, users and roles.
func SummaryFigures(sum AuditSummary) map[string]*chart.Figure {
	labels, values := splitCounts(sum.ByType)
	figs := map[string]*chart.Figure{
		"event_types": chart.Pie("Event Type Distribution", labels, values),
	}
	labels, values = splitCounts(sum.ByStatus)
	figs["statuses"] = chart.Pie("Status Distribution", labels, values)

	byType := map[string]*chart.Series{}
	for _, b := range sum.Timeline {
		s, ok := byType[b.EventType]
		if !ok {
			s = &chart.Series{Name: b.EventType}
			byType[b.EventType] = s
		}
		s.X = append(s.X, b.Hour)
		s.Y = append(s.Y, float64(b.Count))
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	series := make([]chart.Series, 0, len(types))
	for _, t := range types {
		series = append(series, *byType[t])
	}
	figs["timeline"] = chart.Line("Events Over Time", series...)

	labels, values = splitCounts(sum.ByUser)
	figs["users"] = chart.Bar("User Activity", chart.Series{Name: "EVENT_COUNT", X: toAny(labels), Y: values})
	labels, values = splitCounts(sum.ByRole)
	figs["roles"] = chart.Bar("Role Activity", chart.Series{Name: "EVENT_COUNT", X: toAny(labels), Y: values})

	for k, f := range figs {
		figs[k] = chart.ApplyDarkTheme(f)
	}
	return figs
}

func splitCounts(counts []Count) ([]string, []float64) {
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		values[i] = float64(c.Count)
	}
	return labels, values
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
