package complaint

import (
	"strings"
	"testing"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/platform/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var formNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func validFacilityForm() FacilityForm {
	f := NewFacilityForm("Broken projector", "The projector in room 204 flickers.", true, nil)
	f.FacilityType = "Classroom"
	f.FacilityIssueType = "Equipment"
	f.Floor = "2"
	f.IncidentDate = formNow.AddDate(0, 0, -1)
	return f
}

func testUpload(name string, size int64) Upload {
	return Upload{File: &storage.File{Name: name, ContentType: "image/png", Size: size, Content: strings.NewReader("x")}}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	we, ok := common.IsWorkflowError(err)
	require.True(t, ok)
	details, ok := we.Details.(map[string]string)
	require.True(t, ok)
	return details
}

func TestFacilityForm_Valid(t *testing.T) {
	f := validFacilityForm()
	f.Title = "  Broken projector  "
	require.NoError(t, f.Validate(formNow, 1024))
	assert.Equal(t, "Broken projector", f.Title)
}

func TestFacilityForm_TitleRules(t *testing.T) {
	f := validFacilityForm()
	f.Title = "Projector!!"
	assert.Contains(t, fieldErrors(t, f.Validate(formNow, 0)), "title")

	f.Title = "   "
	assert.Equal(t, "Complaint title is required.", fieldErrors(t, f.Validate(formNow, 0))["title"])
}

func TestFacilityForm_DescriptionWordLimit(t *testing.T) {
	f := validFacilityForm()
	f.Description = strings.Repeat("word ", 500)
	require.NoError(t, f.Validate(formNow, 0))

	f.Description = strings.Repeat("word ", 501)
	assert.Contains(t, fieldErrors(t, f.Validate(formNow, 0)), "description")
}

func TestFacilityForm_DeclarationRequired(t *testing.T) {
	f := validFacilityForm()
	f.Declaration = false
	assert.Contains(t, fieldErrors(t, f.Validate(formNow, 0)), "declaration")
}

func TestFacilityForm_IncidentDate(t *testing.T) {
	f := validFacilityForm()
	f.IncidentDate = formNow.Add(6 * time.Hour)
	require.NoError(t, f.Validate(formNow, 0), "later the same day is allowed")

	f.IncidentDate = formNow.AddDate(0, 0, 1)
	assert.Equal(t, "Date of observation cannot be in the future.", fieldErrors(t, f.Validate(formNow, 0))["incident_date"])

	f.IncidentDate = time.Time{}
	assert.Contains(t, fieldErrors(t, f.Validate(formNow, 0)), "incident_date")
}

func TestFacilityForm_RequiredFields(t *testing.T) {
	f := validFacilityForm()
	f.FacilityType, f.FacilityIssueType, f.Floor = "", " ", ""
	details := fieldErrors(t, f.Validate(formNow, 0))
	assert.Contains(t, details, "facility_type")
	assert.Contains(t, details, "facility_issue_type")
	assert.Contains(t, details, "floor")
}

func TestFacilityForm_Uploads(t *testing.T) {
	f := validFacilityForm()
	f.Uploads = []Upload{testUpload("a.png", 10), testUpload("b.png", 2048)}
	details := fieldErrors(t, f.Validate(formNow, 1024))
	assert.NotContains(t, details, "files[0]")
	assert.Contains(t, details, "files[1]")

	f.Uploads = make([]Upload, 6)
	for i := range f.Uploads {
		f.Uploads[i] = testUpload("a.png", 1)
	}
	assert.Contains(t, fieldErrors(t, f.Validate(formNow, 1024)), "files")

	long := testUpload("a.png", 1)
	long.Description = strings.Repeat("w ", 101)
	f.Uploads = []Upload{long}
	assert.Contains(t, fieldErrors(t, f.Validate(formNow, 1024)), "files[0].description")
}

func TestAdministrativeForm_Validate(t *testing.T) {
	f := NewAdministrativeForm("Fee dispute", "Charged twice.", true, nil)
	f.Department = "Finance"
	f.StaffInvolved = "Ann Lee, Bo Chen"
	require.NoError(t, f.Validate(0))

	f.StaffInvolved = "Ann Lee, B@d"
	assert.Contains(t, fieldErrors(t, f.Validate(0)), "staff_involved")

	f.StaffInvolved = ""
	f.Department = ""
	f.PreviousAttempts = strings.Repeat("tried ", 101)
	details := fieldErrors(t, f.Validate(0))
	assert.Contains(t, details, "department")
	assert.Contains(t, details, "previous_attempts")
}

func TestStatusChange_Validate(t *testing.T) {
	c := StatusChange{Status: " Resolved ", Reason: " Fixed "}
	require.NoError(t, c.validate())
	assert.Equal(t, StatusResolved, c.Status)
	assert.Equal(t, "Fixed", c.Reason)

	bad := StatusChange{Status: "Closed"}
	details := fieldErrors(t, bad.validate())
	assert.Contains(t, details, "status")
	assert.Contains(t, details, "reason")
}

func TestSplitStaff(t *testing.T) {
	assert.Equal(t, []string{"Ann Lee", "Bo Chen"}, []string(splitStaff(" Ann Lee ,, Bo Chen,")))
	assert.Empty(t, splitStaff(""))
}
