// Package cost reports warehouse credit, storage and query usage from the
// account usage views.
package cost

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"prism-console/internal/chart"
	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

const bytesPerGB = 1024 * 1024 * 1024

// DefaultWindow is the report window when no range is given.
const DefaultWindow = 30 * 24 * time.Hour

// CreditUsage is the credits one warehouse used in one hour.
type CreditUsage struct {
	Warehouse string    `json:"warehouse"`
	Hour      time.Time `json:"hour"`
	Credits   float64   `json:"credits"`
}

// StorageUsage is the average storage of one database over the window.
type StorageUsage struct {
	Database   string  `json:"database"`
	ActiveGB   float64 `json:"active_gb"`
	FailsafeGB float64 `json:"failsafe_gb"`
	TotalGB    float64 `json:"total_gb"`
}

// QueryUsage aggregates the queries one warehouse ran in one hour.
type QueryUsage struct {
	Hour               time.Time `json:"hour"`
	Warehouse          string    `json:"warehouse"`
	QueryCount         int64     `json:"query_count"`
	AvgExecutionTimeMs float64   `json:"avg_execution_time_ms"`
	Credits            float64   `json:"credits"`
}

// WarehouseSummary holds credit statistics for one warehouse.
type WarehouseSummary struct {
	Warehouse    string  `json:"warehouse"`
	TotalCredits float64 `json:"total_credits"`
	AvgCredits   float64 `json:"avg_credits"`
	MaxCredits   float64 `json:"max_credits"`
}

// Report is the cost dashboard for one window.
type Report struct {
	From    time.Time                `json:"from"`
	To      time.Time                `json:"to"`
	Credits []CreditUsage            `json:"credits"`
	Storage []StorageUsage           `json:"storage"`
	Queries []QueryUsage             `json:"queries"`
	Summary []WarehouseSummary       `json:"summary"`
	Figures map[string]*chart.Figure `json:"figures"`
}

// Service builds cost reports. The three datasets are fetched in parallel,
// each on its own session.
type Service struct {
	sessions domain.SessionProvider
	dialect  warehouse.Dialect
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new cost Service.
func NewService(sessions domain.SessionProvider, dialect warehouse.Dialect, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		dialect:  dialect,
		logger:   logger.With("component", "cost"),
		now:      time.Now,
	}
}

// Report returns usage between from and to. A zero to means now and a zero
// from means DefaultWindow before to.
func (s *Service) Report(ctx context.Context, from, to time.Time) (*Report, error) {
	if !s.dialect.SupportsTelemetry() {
		return nil, domain.ErrValidation("cost analysis is not supported by the %s warehouse", s.dialect.Name())
	}
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultWindow)
	}
	if from.After(to) {
		return nil, domain.ErrValidation("from must not be after to")
	}
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrAccessDenied("authentication required")
	}

	var creditRows, storageRows, queryRows []domain.Row
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(name, stmt string, dst *[]domain.Row) {
		g.Go(func() error {
			session, err := s.sessions.OpenSession(gctx, p)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			defer session.Close() //nolint:errcheck
			rows, err := session.Query(gctx, stmt, from, to)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = rows
			return nil
		})
	}
	fetch("warehouse metering", warehouseMeteringSQL, &creditRows)
	fetch("storage usage", storageUsageSQL, &storageRows)
	fetch("query history", queryHistorySQL, &queryRows)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &Report{
		From:    from,
		To:      to,
		Credits: creditUsage(creditRows),
		Storage: storageUsage(storageRows),
		Queries: queryUsage(queryRows),
	}
	r.Summary = Summarize(r.Credits)
	r.Figures = Figures(r)
	s.logger.Debug("cost report built", "from", from, "to", to,
		"credit_rows", len(r.Credits), "storage_rows", len(r.Storage), "query_rows", len(r.Queries))
	return r, nil
}

func creditUsage(rows []domain.Row) []CreditUsage {
	out := make([]CreditUsage, 0, len(rows))
	for _, r := range rows {
		out = append(out, CreditUsage{
			Warehouse: r.String("WAREHOUSE_NAME"),
			Hour:      r.Time("HOUR"),
			Credits:   r.Float64("CREDITS_USED"),
		})
	}
	return out
}

func storageUsage(rows []domain.Row) []StorageUsage {
	out := make([]StorageUsage, 0, len(rows))
	for _, r := range rows {
		active := toGB(r.Float64("ACTIVE_BYTES"))
		failsafe := toGB(r.Float64("FAILSAFE_BYTES"))
		out = append(out, StorageUsage{
			Database:   r.String("DATABASE_NAME"),
			ActiveGB:   active,
			FailsafeGB: failsafe,
			TotalGB:    active + failsafe,
		})
	}
	return out
}

func queryUsage(rows []domain.Row) []QueryUsage {
	out := make([]QueryUsage, 0, len(rows))
	for _, r := range rows {
		count, _ := r.Int64("QUERY_COUNT")
		out = append(out, QueryUsage{
			Hour:               r.Time("HOUR"),
			Warehouse:          r.String("WAREHOUSE_NAME"),
			QueryCount:         count,
			AvgExecutionTimeMs: r.Float64("AVG_EXECUTION_TIME"),
			Credits:            r.Float64("CREDITS_USED"),
		})
	}
	return out
}

func toGB(b float64) float64 { return b / bytesPerGB }

// Summarize computes total, average and maximum hourly credits per
// warehouse, rounded to two decimals and sorted by warehouse name.
func Summarize(usage []CreditUsage) []WarehouseSummary {
	type acc struct {
		total, max float64
		n          int
	}
	by := map[string]*acc{}
	for _, u := range usage {
		a, ok := by[u.Warehouse]
		if !ok {
			a = &acc{max: u.Credits}
			by[u.Warehouse] = a
		}
		a.total += u.Credits
		a.max = math.Max(a.max, u.Credits)
		a.n++
	}
	out := make([]WarehouseSummary, 0, len(by))
	for name, a := range by {
		out = append(out, WarehouseSummary{
			Warehouse:    name,
			TotalCredits: round2(a.total),
			AvgCredits:   round2(a.total / float64(a.n)),
			MaxCredits:   round2(a.max),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Warehouse < out[j].Warehouse })
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
