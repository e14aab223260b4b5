package complaint

import (
	"strings"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/listing"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Complaint statuses.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In-Progress"
	StatusResolved   = "Resolved"
	StatusDeleted    = "Deleted"
)

// Statuses lists every complaint status in workflow order.
var Statuses = []string{StatusPending, StatusInProgress, StatusResolved, StatusDeleted}

// ValidStatus reports whether s is a complaint status.
func ValidStatus(s string) bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// Complaint is the parent record of a submission.
type Complaint struct {
	common.BaseModel
	SubmitterID   uuid.UUID `gorm:"type:uuid;not null;index" json:"submitter_id"`
	AdminID       uuid.UUID `gorm:"type:uuid;not null;index" json:"admin_id"`
	CategoryID    uuid.UUID `gorm:"type:uuid;not null" json:"category_id"`
	Title         string    `gorm:"type:varchar(200);not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	Status        string    `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	SubmittedDate time.Time `gorm:"not null;index" json:"submitted_date"`
	IncidentDate  time.Time `json:"incident_date"`
	AdminFeedback *string   `gorm:"type:text" json:"admin_feedback,omitempty"`

	FacilityDetail       *FacilityDetail       `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"facility_detail,omitempty"`
	AdministrativeDetail *AdministrativeDetail `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"administrative_detail,omitempty"`
	Attachments          []Attachment          `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

func (Complaint) TableName() string { return "complaints" }

// FacilityDetail holds the facility-specific fields of a complaint.
type FacilityDetail struct {
	ComplaintID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"complaint_id"`
	FacilityType      string    `gorm:"type:varchar(100);not null" json:"facility_type"`
	FacilityIssueType string    `gorm:"type:varchar(100);not null" json:"facility_issue_type"`
	Floor             string    `gorm:"type:varchar(50);not null" json:"floor"`
	PreviousAttempt   *string   `gorm:"type:text" json:"previous_attempt,omitempty"`
}

func (FacilityDetail) TableName() string { return "facility_complaints" }

// AdministrativeDetail holds the administrative-specific fields of a complaint.
type AdministrativeDetail struct {
	ComplaintID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"complaint_id"`
	Department       string         `gorm:"type:varchar(100);not null" json:"department"`
	StaffInvolved    pq.StringArray `gorm:"type:text[]" json:"staff_involved,omitempty"`
	PreviousAttempts *string        `gorm:"type:text" json:"previous_attempts,omitempty"`
	DesiredOutcome   *string        `gorm:"type:text" json:"desired_outcome,omitempty"`
}

func (AdministrativeDetail) TableName() string { return "administrative_complaints" }

// Attachment is a stored file belonging to a complaint.
type Attachment struct {
	common.BaseModel
	ComplaintID uuid.UUID `gorm:"type:uuid;not null;index" json:"complaint_id"`
	FileURL     string    `gorm:"type:text;not null" json:"file_url"`
	ObjectKey   string    `gorm:"type:text;not null" json:"-"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"file_name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
}

func (Attachment) TableName() string { return "complaint_attachments" }

// Row is a complaint joined with the names a list needs. It is what the list engine filters.
type Row struct {
	Complaint
	CategoryName  string `json:"category_name"`
	SubmitterName string `json:"submitter_name,omitempty"`
}

var _ listing.Record = Row{}

func (r Row) ListingKey() string { return r.ID.String() }
func (r Row) ListingSource() listing.Source { return listing.SourceComplaint }
func (r Row) ListingCategory() string { return r.CategoryName }
func (r Row) ListingStatus() string { return r.Status }
func (r Row) ListingDate() time.Time { return r.SubmittedDate }
func (r Row) SearchFields() []string {
	return []string{r.Title, r.Description, r.CategoryName, r.SubmitterName}
}

// Stats are the dashboard counters.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Deleted    int `json:"deleted"`
}

// CountStatuses tallies rows by status.
func CountStatuses(rows []Row) Stats {
	s := Stats{Total: len(rows)}
	for _, r := range rows {
		switch r.Status {
		case StatusPending:
			s.Pending++
		case StatusInProgress:
			s.InProgress++
		case StatusResolved:
			s.Resolved++
		case StatusDeleted:
			s.Deleted++
		}
	}
	return s
}

// splitStaff turns "Ann Lee, Bo Chen" into ["Ann Lee", "Bo Chen"].
func splitStaff(raw string) pq.StringArray {
	var out pq.StringArray
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
