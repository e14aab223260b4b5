package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"campus_desk_backend/internal/complaint"

	"github.com/google/uuid"
)

// Count is one bar or slice of a chart.
type Count struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent,omitempty"`
}

// Average is a per-label average in days.
type Average struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// KPIs are the counter cards at the top of the dashboard.
type KPIs struct {
	Total             int     `json:"total"`
	Pending           int     `json:"pending"`
	PendingPercent    float64 `json:"pending_percent"`
	InProgress        int     `json:"in_progress"`
	InProgressPercent float64 `json:"in_progress_percent"`
	Resolved          int     `json:"resolved"`
	ResolvedPercent   float64 `json:"resolved_percent"`
	Deleted           int     `json:"deleted"`
	DeletedPercent    float64 `json:"deleted_percent"`
	AvgResolutionDays int     `json:"avg_resolution_days"`
}

// Report is everything the analytics page and the exports show. The master-only
// breakdowns are empty for scoped admins.
type Report struct {
	GeneratedAt          time.Time `json:"generated_at"`
	Scope                string    `json:"scope"`
	Window               string    `json:"window"`
	KPIs                 KPIs      `json:"kpis"`
	ByStatus             []Count   `json:"by_status"`
	MonthlyTrend         []Count   `json:"monthly_trend"`
	ByWeekday            []Count   `json:"by_weekday"`
	ResolutionByCategory []Average `json:"resolution_by_category"`
	ByCategory           []Count   `json:"by_category,omitempty"`
	ResolvedByRole       []Count   `json:"resolved_by_role,omitempty"`
	ActiveByCategory     []Count   `json:"active_by_category,omitempty"`
}

const (
	trendMonths   = 6
	unknownRole   = "Unknown"
	uncategorized = "Uncategorized"
	hoursPerDay   = 24
)

// Build computes a report over rows, which must already be limited to the window and the
// caller's scope. roles maps admin ids to admin roles and is only read when master is set.
func Build(rows []complaint.Row, roles map[uuid.UUID]string, w Window, scope string, master bool, now time.Time) *Report {
	r := &Report{GeneratedAt: now, Scope: scope, Window: w.Label}
	r.KPIs = kpis(rows, now)
	r.ByStatus = []Count{
		{Label: complaint.StatusPending, Count: r.KPIs.Pending},
		{Label: "In Progress", Count: r.KPIs.InProgress},
		{Label: complaint.StatusResolved, Count: r.KPIs.Resolved},
		{Label: complaint.StatusDeleted, Count: r.KPIs.Deleted},
	}
	r.MonthlyTrend = monthlyTrend(rows, now)
	r.ByWeekday = byWeekday(rows, now.Location())
	r.ResolutionByCategory = resolutionByCategory(rows, now)

	if master {
		r.ByCategory = byCategory(rows)
		r.ResolvedByRole = resolvedByRole(rows, roles)
		r.ActiveByCategory = activeByCategory(rows)
	}
	return r
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// resolutionDays uses the last update of a resolved complaint as its resolution time.
func resolutionDays(row complaint.Row, now time.Time) int {
	end := row.UpdatedAt
	if end.IsZero() || end.Before(row.SubmittedDate) {
		end = now
	}
	return int(end.Sub(row.SubmittedDate).Hours() / hoursPerDay)
}

func averageDays(total, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}

func kpis(rows []complaint.Row, now time.Time) KPIs {
	stats := complaint.CountStatuses(rows)
	k := KPIs{
		Total:      stats.Total,
		Pending:    stats.Pending,
		InProgress: stats.InProgress,
		Resolved:   stats.Resolved,
		Deleted:    stats.Deleted,
	}
	k.PendingPercent = percent(k.Pending, k.Total)
	k.InProgressPercent = percent(k.InProgress, k.Total)
	k.ResolvedPercent = percent(k.Resolved, k.Total)
	k.DeletedPercent = percent(k.Deleted, k.Total)

	days := 0
	for _, row := range rows {
		if row.Status == complaint.StatusResolved {
			days += resolutionDays(row, now)
		}
	}
	k.AvgResolutionDays = averageDays(days, k.Resolved)
	return k
}

func monthlyTrend(rows []complaint.Row, now time.Time) []Count {
	loc := now.Location()
	y, m, _ := now.In(loc).Date()
	trend := make([]Count, trendMonths)
	for i := range trend {
		month := time.Date(y, m-time.Month(trendMonths-1-i), 1, 0, 0, 0, 0, loc)
		trend[i].Label = month.Format("Jan")
		for _, row := range rows {
			ry, rm, _ := row.SubmittedDate.In(loc).Date()
			if ry == month.Year() && rm == month.Month() {
				trend[i].Count++
			}
		}
	}
	return trend
}

func byWeekday(rows []complaint.Row, loc *time.Location) []Count {
	counts := make([]Count, 7)
	for d := range counts {
		counts[d].Label = time.Weekday(d).String()[:3]
	}
	for _, row := range rows {
		counts[row.SubmittedDate.In(loc).Weekday()].Count++
	}
	return counts
}

func categoryOf(row complaint.Row) string {
	if strings.TrimSpace(row.CategoryName) == "" {
		return uncategorized
	}
	return row.CategoryName
}

// sortedCounts orders by label so repeated exports line up.
func sortedCounts(m map[string]int, total int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, Count: n, Percent: percent(n, total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func byCategory(rows []complaint.Row) []Count {
	m := map[string]int{}
	for _, row := range rows {
		m[categoryOf(row)]++
	}
	return sortedCounts(m, len(rows))
}

func resolutionByCategory(rows []complaint.Row, now time.Time) []Average {
	type acc struct{ days, n int }
	m := map[string]*acc{}
	for _, row := range rows {
		cat := categoryOf(row)
		if m[cat] == nil {
			m[cat] = &acc{}
		}
		if row.Status == complaint.StatusResolved {
			m[cat].days += resolutionDays(row, now)
			m[cat].n++
		}
	}
	out := make([]Average, 0, len(m))
	for cat, a := range m {
		out = append(out, Average{Label: cat, Days: averageDays(a.days, a.n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func resolvedByRole(rows []complaint.Row, roles map[uuid.UUID]string) []Count {
	m := map[string]int{}
	total := 0
	for _, row := range rows {
		if row.Status != complaint.StatusResolved || row.AdminID == uuid.Nil {
			continue
		}
		role := roles[row.AdminID]
		if role == "" {
			role = unknownRole
		}
		m[role]++
		total++
	}
	return sortedCounts(m, total)
}

// activeByCategory breaks down everything not yet resolved.
func activeByCategory(rows []complaint.Row) []Count {
	m := map[string]int{}
	total := 0
	for _, row := range rows {
		if row.Status == complaint.StatusResolved {
			continue
		}
		m[categoryOf(row)]++
		total++
	}
	return sortedCounts(m, total)
}
