package event

import (
	"github.com/whatson-events/whatson-backend/internal/geo"
	"github.com/whatson-events/whatson-backend/internal/vendor"
)

// EffectiveDetails are the display/filtering values for an event after
// vendor fallback has been applied.
type EffectiveDetails struct {
	Address  string          `json:"address"`
	Postcode string          `json:"postcode"`
	Coords   geo.Coordinates `json:"coords"`
	Photo    string          `json:"photo"`
}

// Effective resolves the event's address, postcode, coordinates and photo
// against its owning vendor. Each field falls back independently: a null
// or empty event value takes the vendor's, a populated one stands. Every
// read path (detail view, list view, distance filtering, exports) must go
// through this function so fallback logic cannot diverge.
func Effective(e *Event, v *vendor.Vendor) EffectiveDetails {
	details := EffectiveDetails{
		Address:  v.Address,
		Postcode: v.Postcode,
		Coords:   v.Coords,
		Photo:    v.Photo,
	}
	if e.Address != nil && *e.Address != "" {
		details.Address = *e.Address
	}
	if e.Postcode != nil && *e.Postcode != "" {
		details.Postcode = *e.Postcode
	}
	if coords := e.Coords(); coords != nil {
		details.Coords = *coords
	}
	if e.Photo != nil && *e.Photo != "" {
		details.Photo = *e.Photo
	}
	return details
}
