package complaint

import "fmt"

// Status tones map statuses onto the colour the client uses for the badge.
const (
	ToneWarning = "warning"
	ToneActive  = "active"
	ToneSuccess = "success"
	ToneMuted   = "muted"
)

// View is what a list row or card shows for one complaint.
type View struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	StatusLabel string `json:"status_label"`
	StatusTone  string `json:"status_tone"`
	DateLabel   string `json:"date_label"`
	Thumbnail   string `json:"thumbnail_url,omitempty"`
	DetailLink  string `json:"detail_link"`
}

const dateLabelLayout = "Jan 2, 2006"

// RenderComplaint maps a row to its view. Admin views link to the admin detail page.
func RenderComplaint(r Row, forAdmin bool) View {
	subtitle := r.CategoryName
	if forAdmin && r.SubmitterName != "" {
		subtitle = fmt.Sprintf("%s · %s", r.CategoryName, r.SubmitterName)
	}
	link := "/complaints/" + r.ID.String()
	if forAdmin {
		link = "/admin/complaints/" + r.ID.String()
	}
	v := View{
		ID:          r.ID.String(),
		Title:       r.Title,
		Subtitle:    subtitle,
		StatusLabel: r.Status,
		StatusTone:  statusTone(r.Status),
		DetailLink:  link,
	}
	if !r.SubmittedDate.IsZero() {
		v.DateLabel = r.SubmittedDate.Format(dateLabelLayout)
	}
	if len(r.Attachments) > 0 {
		v.Thumbnail = r.Attachments[0].FileURL
	}
	return v
}

func statusTone(status string) string {
	switch status {
	case StatusPending:
		return ToneWarning
	case StatusInProgress:
		return ToneActive
	case StatusResolved:
		return ToneSuccess
	default:
		return ToneMuted
	}
}
