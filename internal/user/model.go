// File: internal/user/model.go
package user

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"campus_desk_backend/internal/common"
)

// User is a student: complainant, lost-item reporter and notification recipient.
type User struct {
	common.BaseModel
	FirebaseUID *string `gorm:"type:varchar(128);uniqueIndex"`
	Email       string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName   string  `gorm:"type:varchar(100)"`
	LastName    string  `gorm:"type:varchar(100)"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Admin is a help-desk staff member. AdminRole decides which queue the admin handles.
type Admin struct {
	common.BaseModel
	FirebaseUID   *string `gorm:"type:varchar(128);uniqueIndex"`
	Email         string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName     string  `gorm:"type:varchar(100)"`
	LastName      string  `gorm:"type:varchar(100)"`
	AdminRole     string  `gorm:"type:varchar(50);not null;index"`
	ProfilePicURL *string `gorm:"type:text"`
}

// TableName specifies the table name for the Admin model.
func (Admin) TableName() string {
	return "admins"
}

// FullName joins first and last name.
func (a *Admin) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Contact is what the mailer needs to reach a user.
type Contact struct {
	Email     string
	FirstName string
}

// AdminSummary is the admin block shown on detail views.
type AdminSummary struct {
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Initials  string  `json:"initials"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ToAdminSummary builds the display block for an admin.
func ToAdminSummary(a *Admin) AdminSummary {
	initials := Initials(a.FirstName, a.LastName)
	if initials == "" {
		initials = "A"
	}
	role := a.AdminRole
	if role == "" {
		role = "Admin"
	}
	return AdminSummary{Name: a.FullName(), Role: role, Initials: initials, AvatarURL: a.ProfilePicURL}
}

// Initials joins the upper-cased first letter of each non-blank name part.
func Initials(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		r, size := utf8.DecodeRuneInString(strings.TrimSpace(part))
		if size == 0 || r == utf8.RuneError {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
