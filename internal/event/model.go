package event

import (
	"time"

	"github.com/whatson-events/whatson-backend/internal/geo"
	"github.com/whatson-events/whatson-backend/internal/vendor"
)

// Event is a dated listing published by a vendor. Address, postcode and
// coordinates form a coupled nullable group: all three are null when the
// creator left the address blank, which means "inherit from the vendor at
// read time" so later vendor address changes propagate. Photo falls back
// independently.
type Event struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Title       string   `gorm:"type:varchar(255);not null" json:"title"`
	Description string   `gorm:"type:text;not null;default:''" json:"description"`
	Photo       *string  `gorm:"type:text" json:"photo"`
	Address     *string  `gorm:"type:text" json:"address"`
	Postcode    *string  `gorm:"type:varchar(16)" json:"postcode"`
	Lat         *float64 `json:"-"`
	Lng         *float64 `json:"-"`

	// Date is the calendar day, stored at midnight UTC.
	Date time.Time `gorm:"type:date;not null;index" json:"-"`
	// Time is free text ("7pm til late"), never parsed.
	Time string `gorm:"column:start_time;type:varchar(64);not null" json:"time"`

	VendorID uint           `gorm:"not null;index" json:"-"`
	Vendor   *vendor.Vendor `gorm:"foreignKey:VendorID" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Coords returns the event's own coordinates, or nil when it inherits
// from the vendor.
func (e *Event) Coords() *geo.Coordinates {
	if e.Lat == nil || e.Lng == nil {
		return nil
	}
	return &geo.Coordinates{Lat: *e.Lat, Lng: *e.Lng}
}

// DateLayout is the wire format for event dates.
const DateLayout = "2006-01-02"

// CreateRequest is the multipart create form. Address and postcode may
// both be blank, which stores the null inherit-from-vendor group.
type CreateRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description"`
	Address     string `form:"address"`
	Postcode    string `form:"postcode"`
	Date        string `form:"date" binding:"required"`
	Time        string `form:"time" binding:"required"`
}

// UpdateRequest mirrors CreateRequest for PATCH.
type UpdateRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description"`
	Address     string `form:"address"`
	Postcode    string `form:"postcode"`
	Date        string `form:"date" binding:"required"`
	Time        string `form:"time" binding:"required"`
}

// Response is the serialized form of an Event. Raw stored fields keep
// their nulls so clients can tell own values from inherited ones; the
// Effective block carries the resolved values and is present whenever the
// owning vendor is loaded.
type Response struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Photo       *string           `json:"photo"`
	Address     *string           `json:"address"`
	Postcode    *string           `json:"postcode"`
	Coords      *geo.Coordinates  `json:"coords"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	VendorID    uint              `json:"vendorId"`
	Vendor      *vendor.Vendor    `json:"vendor,omitempty"`
	Effective   *EffectiveDetails `json:"effective,omitempty"`
}

// WithDistance is a search result: the event plus its distance in miles
// from the query location.
type WithDistance struct {
	Response
	Distance float64 `json:"distance"`
}

// NewResponse builds the wire form of an event, resolving the effective
// details when the owning vendor is loaded.
func NewResponse(e *Event) Response {
	resp := Response{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Photo:       e.Photo,
		Address:     e.Address,
		Postcode:    e.Postcode,
		Coords:      e.Coords(),
		Date:        e.Date.Format(DateLayout),
		Time:        e.Time,
		VendorID:    e.VendorID,
		Vendor:      e.Vendor,
	}
	if e.Vendor != nil {
		eff := Effective(e, e.Vendor)
		resp.Effective = &eff
	}
	return resp
}

// DateOnly truncates a moment to its calendar day in loc, stored at
// midnight UTC like every event date.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
