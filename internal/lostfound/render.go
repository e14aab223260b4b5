package lostfound

import "fmt"

// Status tones of lost and found badges.
const (
	ToneOrange = "orange"
	ToneBlue   = "blue"
	ToneGreen  = "green"
	ToneRed    = "red"
	ToneYellow = "yellow"
	ToneGray   = "gray"
)

// View is what a list row or card shows for one lost or found item.
type View struct {
	Key         string `json:"key"`
	ID          string `json:"id"`
	Source      string `json:"source"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	StatusLabel string `json:"status_label"`
	StatusTone  string `json:"status_tone"`
	DateLabel   string `json:"date_label"`
	Thumbnail   string `json:"thumbnail_url,omitempty"`
	DetailLink  string `json:"detail_link"`
}

const dateLabelLayout = "Jan 2, 2006"

// RenderEntry maps an entry to its view. Found items link to the found-item detail page.
func RenderEntry(e Entry) View {
	d := e.details()
	subtitle := d.ItemType
	if loc := e.Location(); loc != "" {
		subtitle = fmt.Sprintf("%s · %s", d.ItemType, loc)
	}
	id := e.ID().String()
	link := "/admin/lost-items/" + id
	if e.Found != nil {
		link = "/admin/found-items/" + id
	}
	v := View{
		Key:         e.ListingKey(),
		ID:          id,
		Source:      string(e.Source),
		Title:       d.ItemName,
		Subtitle:    subtitle,
		StatusLabel: e.ListingStatus(),
		StatusTone:  statusTone(e.ListingStatus()),
		DetailLink:  link,
	}
	if date := e.ListingDate(); !date.IsZero() {
		v.DateLabel = date.Format(dateLabelLayout)
	}
	if atts := e.Attachments(); len(atts) > 0 {
		v.Thumbnail = atts[0].FileURL
	}
	return v
}

// RenderEntries renders a page of entries.
func RenderEntries(entries []Entry) []View {
	views := make([]View, len(entries))
	for i, e := range entries {
		views[i] = RenderEntry(e)
	}
	return views
}

func statusTone(status string) string {
	switch status {
	case StatusLost:
		return ToneOrange
	case StatusClaim:
		return ToneBlue
	case StatusFound, StatusClaimed:
		return ToneGreen
	case StatusDeleted:
		return ToneRed
	case StatusUnclaimed:
		return ToneYellow
	default:
		return ToneGray
	}
}
