package listing

import (
	"strings"
	"time"
)

// DateLayout is the wire format of the from/to query parameters.
const DateLayout = "2006-01-02"

// QueryParams is the query-string form of Query, bound with gin's ShouldBindQuery.
// Repeated parameters and comma-separated lists are both accepted for category and status.
type QueryParams struct {
	Source     string   `form:"source" binding:"omitempty,oneof=all lost found complaint"`
	Categories []string `form:"category"`
	Statuses   []string `form:"status"`
	From       string   `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string   `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Text       string   `form:"q" binding:"max=200"`
	Sort       string   `form:"sort" binding:"omitempty,oneof=newest oldest"`
	Page       int      `form:"page"`
}

// ToQuery converts bound parameters into a Query. Dates were already validated by binding.
func (p QueryParams) ToQuery(loc *time.Location) Query {
	if loc == nil {
		loc = time.UTC
	}
	q := Query{
		Source:     ParseSource(p.Source),
		Categories: splitList(p.Categories),
		Statuses:   splitList(p.Statuses),
		Text:       p.Text,
		Sort:       SortNewest,
		Page:       p.Page,
		Location:   loc,
	}
	if p.Sort == string(SortOldest) {
		q.Sort = SortOldest
	}
	if t, err := time.ParseInLocation(DateLayout, p.From, loc); err == nil {
		q.From = &t
	}
	if t, err := time.ParseInLocation(DateLayout, p.To, loc); err == nil {
		q.To = &t
	}
	return q
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" && !strings.EqualFold(part, "all") {
				out = append(out, part)
			}
		}
	}
	return out
}
