package lostfound

import (
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/listing"

	"github.com/google/uuid"
)

// Lost item statuses.
const (
	StatusLost    = "Lost"
	StatusClaim   = "Claim"
	StatusFound   = "Found"
	StatusDeleted = "Deleted"
)

// Found item statuses.
const (
	StatusUnclaimed = "Unclaimed"
	StatusClaimed   = "Claimed"
)

var (
	LostStatuses  = []string{StatusLost, StatusClaim, StatusFound, StatusDeleted}
	FoundStatuses = []string{StatusUnclaimed, StatusClaimed}
)

// ValidStatus reports whether status belongs to source.
func ValidStatus(source listing.Source, status string) bool {
	var set []string
	switch source {
	case listing.SourceLost:
		set = LostStatuses
	case listing.SourceFound:
		set = FoundStatuses
	}
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// ItemDetails are the descriptive fields lost and found items share.
type ItemDetails struct {
	ItemName               string  `gorm:"type:varchar(200);not null" json:"item_name"`
	ItemType               string  `gorm:"type:varchar(100);not null;index" json:"item_type"`
	Brand                  *string `gorm:"type:varchar(100)" json:"brand,omitempty"`
	Model                  *string `gorm:"type:varchar(100)" json:"model,omitempty"`
	PrimaryColor           *string `gorm:"type:varchar(50)" json:"primary_color,omitempty"`
	SecondaryColor         *string `gorm:"type:varchar(50)" json:"secondary_color,omitempty"`
	SerialNumber           *string `gorm:"type:varchar(100)" json:"serial_number,omitempty"`
	DistinguishingFeatures *string `gorm:"type:text" json:"distinguishing_features,omitempty"`
	Description            *string `gorm:"type:text" json:"description,omitempty"`
}

// LostItem is a student's report of something they lost.
type LostItem struct {
	common.BaseModel
	ReporterID uuid.UUID `gorm:"type:uuid;not null;index" json:"reporter_id"`
	AdminID    uuid.UUID `gorm:"type:uuid;not null;index" json:"admin_id"`
	ItemDetails
	LocationLost       string           `gorm:"type:varchar(255);not null" json:"location_lost"`
	DateLost           time.Time        `gorm:"not null" json:"date_lost"`
	TimeLost           *string          `gorm:"type:varchar(5)" json:"time_lost,omitempty"`
	Status             string           `gorm:"type:varchar(20);not null;default:'Lost';index" json:"status"`
	AdminFeedback      *string          `gorm:"type:text" json:"admin_feedback,omitempty"`
	MatchedFoundItemID *uuid.UUID       `gorm:"type:uuid" json:"matched_found_item_id,omitempty"`
	ReportedDate       time.Time        `gorm:"not null;index" json:"reported_date"`
	Attachments        []ItemAttachment `gorm:"foreignKey:LostItemID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

func (LostItem) TableName() string { return "lost_items" }

// FoundItem is an item the desk has in hand.
type FoundItem struct {
	common.BaseModel
	AdminID uuid.UUID `gorm:"type:uuid;not null;index" json:"admin_id"`
	ItemDetails
	LocationFound     string           `gorm:"type:varchar(255);not null" json:"location_found"`
	DateFound         time.Time        `gorm:"not null" json:"date_found"`
	TimeFound         *string          `gorm:"type:varchar(5)" json:"time_found,omitempty"`
	Status            string           `gorm:"type:varchar(20);not null;default:'Unclaimed';index" json:"status"`
	AdminFeedback     *string          `gorm:"type:text" json:"admin_feedback,omitempty"`
	MatchedLostItemID *uuid.UUID       `gorm:"type:uuid" json:"matched_lost_item_id,omitempty"`
	Attachments       []ItemAttachment `gorm:"foreignKey:FoundItemID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

func (FoundItem) TableName() string { return "found_items" }

// ItemAttachment is an image of a lost or found item. Exactly one of the item ids is set.
type ItemAttachment struct {
	common.BaseModel
	LostItemID  *uuid.UUID `gorm:"type:uuid;index" json:"lost_item_id,omitempty"`
	FoundItemID *uuid.UUID `gorm:"type:uuid;index" json:"found_item_id,omitempty"`
	FileURL     string     `gorm:"type:text;not null" json:"file_url"`
	ObjectKey   string     `gorm:"type:text;not null" json:"-"`
	FileName    string     `gorm:"type:varchar(255)" json:"file_name"`
	FileType    string     `gorm:"type:varchar(20);not null;default:'image'" json:"file_type"`
}

func (ItemAttachment) TableName() string { return "lost_found_attachments" }

const fileTypeImage = "image"

// Entry is one lost or found item as the merged list sees it. Exactly one of Lost and
// Found is set.
type Entry struct {
	Source       listing.Source `json:"source"`
	Lost         *LostItem      `json:"lost,omitempty"`
	Found        *FoundItem     `json:"found,omitempty"`
	ReporterName string         `json:"reporter_name,omitempty"`
}

var _ listing.Record = Entry{}

// LostEntry wraps a lost item.
func LostEntry(item LostItem, reporterName string) Entry {
	return Entry{Source: listing.SourceLost, Lost: &item, ReporterName: reporterName}
}

// FoundEntry wraps a found item.
func FoundEntry(item FoundItem) Entry {
	return Entry{Source: listing.SourceFound, Found: &item}
}

func (e Entry) ID() uuid.UUID {
	if e.Lost != nil {
		return e.Lost.ID
	}
	return e.Found.ID
}

func (e Entry) details() ItemDetails {
	if e.Lost != nil {
		return e.Lost.ItemDetails
	}
	return e.Found.ItemDetails
}

func (e Entry) Location() string {
	if e.Lost != nil {
		return e.Lost.LocationLost
	}
	return e.Found.LocationFound
}

func (e Entry) Attachments() []ItemAttachment {
	if e.Lost != nil {
		return e.Lost.Attachments
	}
	return e.Found.Attachments
}

// ListingKey is "<source>:<id>"; lost and found ids live in different tables.
func (e Entry) ListingKey() string { return string(e.Source) + ":" + e.ID().String() }
func (e Entry) ListingSource() listing.Source { return e.Source }
func (e Entry) ListingCategory() string { return e.details().ItemType }

func (e Entry) ListingStatus() string {
	if e.Lost != nil {
		return e.Lost.Status
	}
	return e.Found.Status
}

// ListingDate is the reported date of a lost item and the creation date of a found item.
func (e Entry) ListingDate() time.Time {
	if e.Lost != nil {
		return e.Lost.ReportedDate
	}
	return e.Found.CreatedAt
}

func (e Entry) SearchFields() []string {
	d := e.details()
	fields := []string{d.ItemName, d.ItemType, e.Location()}
	for _, p := range []*string{d.Description, d.DistinguishingFeatures, d.Brand, d.Model, d.SerialNumber, d.PrimaryColor, d.SecondaryColor} {
		if p != nil {
			fields = append(fields, *p)
		}
	}
	return fields
}
