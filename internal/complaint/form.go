package complaint

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/platform/storage"
)

const (
	maxDescriptionWords    = 500
	maxAttachmentDescWords = 100
	maxPreviousWords       = 100
	maxAttachments         = 5
)

var plainText = regexp.MustCompile(`^[A-Za-z0-9\s]+$`)

// Upload is one attached file and its optional description.
type Upload struct {
	File        *storage.File
	Description string
}

// baseForm holds the fields every complaint kind shares.
type baseForm struct {
	Title       string
	Description string
	Declaration bool
	Uploads     []Upload
}

// FacilityForm is a facility complaint as submitted.
type FacilityForm struct {
	baseForm
	FacilityType      string
	FacilityIssueType string
	Floor             string
	IncidentDate      time.Time
	PreviousAttempt   string
}

// AdministrativeForm is an administrative complaint as submitted. The incident date
// is the submission time.
type AdministrativeForm struct {
	baseForm
	Department       string
	StaffInvolved    string
	PreviousAttempts string
	DesiredOutcome   string
}

// NewFacilityForm builds a facility form.
func NewFacilityForm(title, description string, declaration bool, uploads []Upload) FacilityForm {
	return FacilityForm{baseForm: baseForm{Title: title, Description: description, Declaration: declaration, Uploads: uploads}}
}

// NewAdministrativeForm builds an administrative form.
func NewAdministrativeForm(title, description string, declaration bool, uploads []Upload) AdministrativeForm {
	return AdministrativeForm{baseForm: baseForm{Title: title, Description: description, Declaration: declaration, Uploads: uploads}}
}

func (f *baseForm) validate(fe common.FieldErrors, maxUploadBytes int64) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)

	switch {
	case f.Title == "":
		fe.Add("title", "Complaint title is required.")
	case !plainText.MatchString(f.Title):
		fe.Add("title", "Complaint title can only contain letters, numbers, and spaces.")
	}
	if f.Description == "" {
		fe.Add("description", "Description is required.")
	} else if common.CountWords(f.Description) > maxDescriptionWords {
		fe.Add("description", fmt.Sprintf("Description cannot exceed %d words.", maxDescriptionWords))
	}
	if !f.Declaration {
		fe.Add("declaration", "You must declare that the information provided is accurate.")
	}
	if len(f.Uploads) > maxAttachments {
		fe.Add("files", fmt.Sprintf("At most %d files can be attached.", maxAttachments))
	}
	for i, u := range f.Uploads {
		field := fmt.Sprintf("files[%d]", i)
		if u.File == nil || u.File.Content == nil {
			fe.Add(field, "File is empty.")
			continue
		}
		if maxUploadBytes > 0 && u.File.Size > maxUploadBytes {
			fe.Add(field, fmt.Sprintf("%s exceeds the %d MB limit.", u.File.Name, maxUploadBytes/(1024*1024)))
		}
		if common.CountWords(u.Description) > maxAttachmentDescWords {
			fe.Add(field+".description", fmt.Sprintf("File description cannot exceed %d words.", maxAttachmentDescWords))
		}
	}
}

// Validate checks the facility form against now. It performs no I/O.
func (f *FacilityForm) Validate(now time.Time, maxUploadBytes int64) error {
	fe := common.FieldErrors{}
	f.validate(fe, maxUploadBytes)
	required(fe, "facility_type", "Type of facility", &f.FacilityType)
	required(fe, "facility_issue_type", "Type of facility issue", &f.FacilityIssueType)
	required(fe, "floor", "Floor", &f.Floor)
	if f.IncidentDate.IsZero() {
		fe.Add("incident_date", "Date of observation is required.")
	} else if common.AfterToday(f.IncidentDate, now) {
		fe.Add("incident_date", "Date of observation cannot be in the future.")
	}
	f.PreviousAttempt = strings.TrimSpace(f.PreviousAttempt)
	if common.CountWords(f.PreviousAttempt) > maxPreviousWords {
		fe.Add("previous_attempt", fmt.Sprintf("Previous attempt cannot exceed %d words.", maxPreviousWords))
	}
	return fe.Err("Facility complaint is invalid.")
}

// Validate checks the administrative form. It performs no I/O.
func (f *AdministrativeForm) Validate(maxUploadBytes int64) error {
	fe := common.FieldErrors{}
	f.validate(fe, maxUploadBytes)
	required(fe, "department", "Type of administration", &f.Department)
	for _, name := range splitStaff(f.StaffInvolved) {
		if !plainText.MatchString(name) {
			fe.Add("staff_involved", "Staff Involved can only contain letters, numbers, and spaces.")
			break
		}
	}
	f.PreviousAttempts = strings.TrimSpace(f.PreviousAttempts)
	if common.CountWords(f.PreviousAttempts) > maxPreviousWords {
		fe.Add("previous_attempts", fmt.Sprintf("Previous attempts cannot exceed %d words.", maxPreviousWords))
	}
	f.DesiredOutcome = strings.TrimSpace(f.DesiredOutcome)
	return fe.Err("Administrative complaint is invalid.")
}

func required(fe common.FieldErrors, field, label string, value *string) {
	*value = strings.TrimSpace(*value)
	if *value == "" {
		fe.Add(field, label+" is required.")
	}
}

// StatusChange is an admin's decision on a complaint.
type StatusChange struct {
	Status string
	Reason string
}

func (c *StatusChange) validate() error {
	fe := common.FieldErrors{}
	c.Status = strings.TrimSpace(c.Status)
	c.Reason = strings.TrimSpace(c.Reason)
	if !ValidStatus(c.Status) {
		fe.Add("status", fmt.Sprintf("Status must be one of %s.", strings.Join(Statuses, ", ")))
	}
	if c.Reason == "" {
		fe.Add("reason", "A reason is required.")
	}
	return fe.Err("Status change is invalid.")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
