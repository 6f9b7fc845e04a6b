package cost

import (
	"sort"

	"prism-console/internal/chart"
)

// Figures builds the dark-themed cost charts keyed by name: credits,
// storage, storage_breakdown, query_count and query_time.
func Figures(r *Report) map[string]*chart.Figure {
	figs := map[string]*chart.Figure{}

	credits := map[string]*chart.Series{}
	for _, u := range r.Credits {
		s := seriesFor(credits, u.Warehouse)
		s.X = append(s.X, u.Hour)
		s.Y = append(s.Y, u.Credits)
	}
	figs["credits"] = chart.Line("Warehouse Credit Usage Over Time", sorted(credits)...)

	dbs := make([]any, len(r.Storage))
	total := make([]float64, len(r.Storage))
	active := make([]float64, len(r.Storage))
	failsafe := make([]float64, len(r.Storage))
	for i, u := range r.Storage {
		dbs[i] = u.Database
		total[i] = u.TotalGB
		active[i] = u.ActiveGB
		failsafe[i] = u.FailsafeGB
	}
	figs["storage"] = chart.Bar("Storage Usage by Database (GB)", chart.Series{Name: "STORAGE_GB", X: dbs, Y: total})
	figs["storage_breakdown"] = chart.Bar("Storage Breakdown by Type (GB)",
		chart.Series{Name: "ACTIVE", X: dbs, Y: active},
		chart.Series{Name: "FAILSAFE", X: dbs, Y: failsafe},
	)

	counts := map[string]*chart.Series{}
	times := map[string]*chart.Series{}
	for _, q := range r.Queries {
		c := seriesFor(counts, q.Warehouse)
		c.X = append(c.X, q.Hour)
		c.Y = append(c.Y, float64(q.QueryCount))
		t := seriesFor(times, q.Warehouse)
		t.X = append(t.X, q.Hour)
		t.Y = append(t.Y, q.AvgExecutionTimeMs)
	}
	figs["query_count"] = chart.Line("Query Count Over Time", sorted(counts)...)
	figs["query_time"] = chart.Line("Average Execution Time (ms)", sorted(times)...)

	for k, f := range figs {
		figs[k] = chart.ApplyDarkTheme(f)
	}
	return figs
}

func seriesFor(m map[string]*chart.Series, name string) *chart.Series {
	s, ok := m[name]
	if !ok {
		s = &chart.Series{Name: name}
		m[name] = s
	}
	return s
}

func sorted(m map[string]*chart.Series) []chart.Series {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]chart.Series, 0, len(names))
	for _, n := range names {
		out = append(out, *m[n])
	}
	return out
}
