// Package listing filters, sorts and pages in-memory report collections.
//
// Everything here is pure: the input slice is never reordered or modified, and
// the same records and query always produce the same Result.
package listing

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// PageSize is the fixed number of rows per page.
const PageSize = 10

// Source discriminates which collection a record came from.
type Source string

const (
	SourceAll       Source = "all"
	SourceLost      Source = "lost"
	SourceFound     Source = "found"
	SourceComplaint Source = "complaint"
)

// ParseSource maps a query value onto a source filter, defaulting to all.
func ParseSource(s string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceLost:
		return SourceLost
	case SourceFound:
		return SourceFound
	case SourceComplaint:
		return SourceComplaint
	default:
		return SourceAll
	}
}

// SortOrder orders records by their relevant date.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// Record is anything the engine can filter.
type Record interface {
	ListingKey() string
	ListingSource() Source
	ListingCategory() string
	ListingStatus() string
	// ListingDate is the date used for range filters and sorting: submission date for
	// lost reports and complaints, creation date for found items.
	ListingDate() time.Time
	// SearchFields are the values the free-text query is matched against.
	SearchFields() []string
}

// Query is a filter specification plus the requested page.
type Query struct {
	Source     Source
	Categories []string
	Statuses   []string
	From       *time.Time
	To         *time.Time
	Text       string
	Sort       SortOrder
	Page       int
	// Location is used to compare dates by calendar day. Nil means UTC.
	Location *time.Location
}

// Result is one rendered page plus what the page controls need.
type Result[T Record] struct {
	Items      []T           `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Start      int           `json:"start"`
	End        int           `json:"end"`
	Label      string        `json:"label"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	Controls   []PageControl `json:"controls"`
}

// Apply filters records with q, sorts the matches and slices out the requested page.
func Apply[T Record](records []T, q Query) Result[T] {
	matched := make([]T, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			matched = append(matched, r)
		}
	}

	oldestFirst := q.Sort == SortOldest
	sort.SliceStable(matched, func(i, j int) bool {
		di, dj := matched[i].ListingDate(), matched[j].ListingDate()
		if !di.Equal(dj) {
			if oldestFirst {
				return di.Before(dj)
			}
			return di.After(dj)
		}
		return matched[i].ListingKey() < matched[j].ListingKey()
	})

	total := len(matched)
	totalPages := (total + PageSize - 1) / PageSize
	page := ClampPage(q.Page, totalPages)

	startIdx := (page - 1) * PageSize
	endIdx := startIdx + PageSize
	if endIdx > total {
		endIdx = total
	}
	if startIdx > endIdx {
		startIdx = endIdx
	}

	start, end := RangeLabel(total, page)
	return Result[T]{
		Items:      matched[startIdx:endIdx:endIdx],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
		Label:      fmt.Sprintf("Showing %d to %d of %d entries", start, end, total),
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Controls:   PageControls(page, totalPages),
	}
}

// Matches reports whether r satisfies every active predicate of q.
// Values inside one dimension are OR-ed; dimensions are AND-ed.
func (q Query) Matches(r Record) bool {
	if q.Source != "" && q.Source != SourceAll && r.ListingSource() != q.Source {
		return false
	}
	if len(q.Categories) > 0 && !containsFold(q.Categories, r.ListingCategory()) {
		return false
	}
	if len(q.Statuses) > 0 && !containsFold(q.Statuses, r.ListingStatus()) {
		return false
	}
	if (q.From != nil || q.To != nil) && !q.inDateRange(r.ListingDate()) {
		return false
	}
	return matchesText(r.SearchFields(), q.Text)
}

func (q Query) inDateRange(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	day := truncateDay(t, loc)
	if q.From != nil && day.Before(truncateDay(*q.From, loc)) {
		return false
	}
	if q.To != nil && day.After(truncateDay(*q.To, loc)) {
		return false
	}
	return true
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}

func matchesText(fields []string, text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// ClampPage keeps page inside [1, totalPages]; with no pages it is 1.
func ClampPage(page, totalPages int) int {
	if totalPages <= 0 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// RangeLabel returns the 1-based inclusive bounds for a "showing X to Y of Z" label.
// An empty result is (0, 0).
func RangeLabel(total, page int) (start, end int) {
	if total <= 0 {
		return 0, 0
	}
	page = ClampPage(page, (total+PageSize-1)/PageSize)
	start = (page-1)*PageSize + 1
	end = page * PageSize
	if end > total {
		end = total
	}
	return start, end
}
