package lostfound

import (
	"fmt"
	"strings"
	"time"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/listing"
	"campus_desk_backend/internal/platform/storage"

	"github.com/google/uuid"
)

const timeLayout = "15:04"

// ItemForm is a lost or found report as submitted. Date and Location mean "lost" or
// "found" depending on the report.
type ItemForm struct {
	ItemName               string
	ItemType               string
	Brand                  string
	Model                  string
	PrimaryColor           string
	SecondaryColor         string
	SerialNumber           string
	Location               string
	Date                   time.Time
	Time                   string
	DistinguishingFeatures string
	Description            string
	Image                  *storage.File
}

// Validate checks the form against now. verb is "lost" or "found" and names the fields.
func (f *ItemForm) Validate(now time.Time, maxUploadBytes int64, verb string) error {
	fe := common.FieldErrors{}
	for _, r := range []struct {
		field, label string
		value        *string
	}{
		{"item_name", "Item name", &f.ItemName},
		{"item_type", "Item type", &f.ItemType},
		{"location_" + verb, "Location", &f.Location},
	} {
		*r.value = strings.TrimSpace(*r.value)
		if *r.value == "" {
			fe.Add(r.field, r.label+" is required.")
		}
	}

	dateField := "date_" + verb
	if f.Date.IsZero() {
		fe.Add(dateField, "Date is required.")
	} else if common.AfterToday(f.Date, now) {
		fe.Add(dateField, fmt.Sprintf("Date %s cannot be in the future.", verb))
	}
	f.Time = strings.TrimSpace(f.Time)
	if f.Time != "" {
		if _, err := time.Parse(timeLayout, f.Time); err != nil {
			fe.Add("time_"+verb, "Time must be in HH:MM format.")
		}
	}

	if f.Image != nil {
		if !strings.HasPrefix(f.Image.ContentType, "image/") {
			fe.Add("image", "Only image files can be attached.")
		} else if maxUploadBytes > 0 && f.Image.Size > maxUploadBytes {
			fe.Add("image", fmt.Sprintf("%s exceeds the %d MB limit.", f.Image.Name, maxUploadBytes/(1024*1024)))
		}
	}
	return fe.Err("Item report is invalid.")
}

func (f *ItemForm) details() ItemDetails {
	return ItemDetails{
		ItemName:               f.ItemName,
		ItemType:               f.ItemType,
		Brand:                  optional(f.Brand),
		Model:                  optional(f.Model),
		PrimaryColor:           optional(f.PrimaryColor),
		SecondaryColor:         optional(f.SecondaryColor),
		SerialNumber:           optional(f.SerialNumber),
		DistinguishingFeatures: optional(f.DistinguishingFeatures),
		Description:            optional(f.Description),
	}
}

// StatusChange is an admin decision on a lost or found item. FoundItemID links a lost
// item to the found item that matches it.
type StatusChange struct {
	Source      listing.Source
	Status      string
	Reason      string
	FoundItemID *uuid.UUID
}

func (c *StatusChange) validate() error {
	fe := common.FieldErrors{}
	c.Status = strings.TrimSpace(c.Status)
	c.Reason = strings.TrimSpace(c.Reason)

	switch c.Source {
	case listing.SourceLost, listing.SourceFound:
		if !ValidStatus(c.Source, c.Status) {
			fe.Add("status", fmt.Sprintf("%q is not a valid status for a %s item.", c.Status, c.Source))
		}
	default:
		fe.Add("source", "Source must be lost or found.")
	}
	if c.Reason == "" {
		fe.Add("reason", "A reason is required.")
	}
	if c.FoundItemID != nil && (c.Source != listing.SourceLost || c.Status != StatusFound) {
		fe.Add("found_item_id", "A found item can only be linked when marking a lost item as Found.")
	}
	return fe.Err("Status change is invalid.")
}

// linking reports whether the change matches a lost item to a found item.
func (c *StatusChange) linking() bool {
	return c.FoundItemID != nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
