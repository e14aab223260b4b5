// Package analytics computes complaint statistics for the admin dashboard and exports
// them as PDF or XLSX reports.
package analytics

import (
	"fmt"
	"strings"
	"time"

	"campus_desk_backend/internal/common"
)

// Range is a date preset over the submitted date of complaints.
type Range string

const (
	RangeAll    Range = "all"
	RangeWeek   Range = "week"
	RangeMonth  Range = "month"
	RangeYear   Range = "year"
	RangeCustom Range = "custom"
)

// ParseRange maps a query value onto a preset. Unknown values are an error.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeWeek, RangeMonth, RangeYear, RangeCustom:
		return r, nil
	default:
		return "", fmt.Errorf("unknown range %q", s)
	}
}

// Window is a resolved date range. From is inclusive and Until exclusive; both are nil
// for RangeAll.
type Window struct {
	Range Range
	From  *time.Time
	Until *time.Time
	Label string
}

const labelLayout = "2006-01-02"

// ResolveWindow turns a preset into concrete bounds relative to now. Week starts on
// Sunday; month and year start on the first day. Custom ranges need both days and cover
// them whole.
func ResolveWindow(r Range, from, to *time.Time, now time.Time) (Window, error) {
	loc := now.Location()
	startOfDay := func(t time.Time) time.Time {
		y, m, d := t.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	endOfToday := startOfDay(now).AddDate(0, 0, 1)
	bounded := func(start time.Time, label string) Window {
		return Window{Range: r, From: &start, Until: &endOfToday, Label: label}
	}

	switch r {
	case RangeAll, "":
		return Window{Range: RangeAll, Label: "All Time"}, nil
	case RangeWeek:
		today := startOfDay(now)
		return bounded(today.AddDate(0, 0, -int(today.Weekday())), "This Week"), nil
	case RangeMonth:
		y, m, _ := now.In(loc).Date()
		return bounded(time.Date(y, m, 1, 0, 0, 0, 0, loc), "This Month"), nil
	case RangeYear:
		return bounded(time.Date(now.In(loc).Year(), time.January, 1, 0, 0, 0, 0, loc), "This Year"), nil
	case RangeCustom:
		fe := common.FieldErrors{}
		if from == nil {
			fe.Add("from", "Please select both start and end dates.")
		}
		if to == nil {
			fe.Add("to", "Please select both start and end dates.")
		}
		if from != nil && to != nil && to.Before(*from) {
			fe.Add("to", "The end date cannot be before the start date.")
		}
		if err := fe.Err("Date range is invalid."); err != nil {
			return Window{}, err
		}
		start := startOfDay(*from)
		until := startOfDay(*to).AddDate(0, 0, 1)
		return Window{
			Range: r,
			From:  &start,
			Until: &until,
			Label: fmt.Sprintf("%s to %s", start.Format(labelLayout), startOfDay(*to).Format(labelLayout)),
		}, nil
	default:
		return Window{}, common.NewValidationError("Date range is invalid.", map[string]string{"range": fmt.Sprintf("Unknown range %q.", r)})
	}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.Until != nil && !t.Before(*w.Until) {
		return false
	}
	return true
}
