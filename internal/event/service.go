package event

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/whatson-events/whatson-backend/internal/apperror"
	"github.com/whatson-events/whatson-backend/internal/auditlog"
	"github.com/whatson-events/whatson-backend/internal/geo"
	"github.com/whatson-events/whatson-backend/internal/geocoding"
	"github.com/whatson-events/whatson-backend/internal/upload"
	"github.com/whatson-events/whatson-backend/internal/vendor"
)

// Resolver turns an address and postcode into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, address, postcode string) (geo.Coordinates, error)
}

// Service wraps event CRUD and the search pipeline.
type Service struct {
	repo     Repository
	vendors  vendor.Repository
	geocoder Resolver
	store    upload.Store
	audit    auditlog.Service
	loc      *time.Location

	// now is swappable for tests.
	now func() time.Time
}

func NewService(repo Repository, vendors vendor.Repository, geocoder Resolver, store upload.Store, audit auditlog.Service, loc *time.Location) *Service {
	return &Service{
		repo:     repo,
		vendors:  vendors,
		geocoder: geocoder,
		store:    store,
		audit:    audit,
		loc:      loc,
		now:      time.Now,
	}
}

// Create publishes a new event for the authenticated vendor. When address
// or postcode is blank, the address/postcode/coordinate group is stored
// null so the vendor's details are inherited at read time; otherwise the
// address is geocoded up front.
func (s *Service) Create(ctx context.Context, authVendorID uint, req CreateRequest, photoURL, ip string) (*Event, error) {
	v, err := s.vendors.FindByID(ctx, authVendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.NotFound, "Unable to find a vendor with that id.")
		}
		return nil, apperror.Wrap(apperror.Persistence, "Something went wrong! Unable to create event. Please try again later.", err)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	e := &Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Time:        req.Time,
		VendorID:    v.ID,
	}
	if photoURL != "" {
		e.Photo = &photoURL
	}
	if err := s.applyOwnAddress(ctx, e, req.Address, req.Postcode, nil); err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithVendor(context.WithoutCancel(ctx), e); err != nil {
		return nil, apperror.Wrap(apperror.Persistence, "Something went wrong! Unable to create event. Please try again later.", err)
	}

	s.audit.LogAction(ctx, &v.ID, "EVENT_CREATED", map[string]interface{}{"event_id": e.ID, "title": e.Title}, ip, auditlog.StatusSuccess)
	e.Vendor = v
	return e, nil
}

// Get fetches a single event with its vendor populated.
func (s *Service) Get(ctx context.Context, id uint) (*Event, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.NotFound, "Could not find an event with that id. Please try again.")
		}
		return nil, apperror.Wrap(apperror.Persistence, "Something went wrong! Please try again later.", err)
	}
	return e, nil
}

// Today returns all events on the current calendar day in the configured
// timezone, unfiltered by distance.
func (s *Service) Today(ctx context.Context) ([]Response, error) {
	events, err := s.repo.ListByDate(ctx, DateOnly(s.now(), s.loc))
	if err != nil {
		return nil, apperror.Wrap(apperror.Persistence, "Could not load events. Please try again later", err)
	}
	responses := make([]Response, 0, len(events))
	for i := range events {
		responses = append(responses, NewResponse(&events[i]))
	}
	return responses, nil
}

// Search is the distance-filtered event query: geocode the postcode,
// fetch the day's events, resolve each event's effective coordinates and
// keep those within the radius, inclusive. Each result carries its
// computed distance; ordering is left to the consumer.
func (s *Service) Search(ctx context.Context, postcode string, radiusMiles float64, date time.Time) ([]WithDistance, error) {
	queryCoords, err := s.resolveCoords(ctx, "", postcode)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, apperror.Wrap(apperror.Persistence, "Could not load events. Please try again later", err)
	}

	results := make([]WithDistance, 0, len(events))
	for i := range events {
		e := &events[i]
		if e.Vendor == nil {
			continue
		}
		eff := Effective(e, e.Vendor)
		d := geo.Distance(eff.Coords, queryCoords)
		if d > radiusMiles {
			continue
		}
		results = append(results, WithDistance{Response: NewResponse(e), Distance: d})
	}
	return results, nil
}

// ListForVendor returns a vendor's past or current/future events,
// relative to today in the configured timezone.
func (s *Service) ListForVendor(ctx context.Context, vendorID uint, timeRef string) ([]Response, error) {
	events, err := s.repo.ListByVendor(ctx, vendorID, DateOnly(s.now(), s.loc), timeRef == "past")
	if err != nil {
		return nil, apperror.Wrap(apperror.Persistence, "Something went wrong! Please try again later.", err)
	}
	responses := make([]Response, 0, len(events))
	for i := range events {
		responses = append(responses, NewResponse(&events[i]))
	}
	return responses, nil
}

// AllForVendor returns every event a vendor has published, oldest first.
func (s *Service) AllForVendor(ctx context.Context, vendorID uint) ([]Event, error) {
	events, err := s.repo.ListAllByVendor(ctx, vendorID)
	if err != nil {
		return nil, apperror.Wrap(apperror.Persistence, "Something went wrong! Please try again later.", err)
	}
	return events, nil
}

// Update edits an event owned by the authenticated vendor. Coordinates
// are recomputed only when the address/postcode text actually changed,
// and postcode is stored from its own field. A replaced photo is removed
// from storage after the save succeeds, best effort.
func (s *Service) Update(ctx context.Context, authVendorID, id uint, req UpdateRequest, newPhotoURL, ip string) (*Event, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.VendorID != authVendorID {
		return nil, apperror.New(apperror.Unauthorized, "You cannot edit another vendor's events!")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	oldPhoto := ""
	if e.Photo != nil {
		oldPhoto = *e.Photo
	}

	e.Title = req.Title
	e.Description = req.Description
	e.Date = date
	e.Time = req.Time
	if err := s.applyOwnAddress(ctx, e, req.Address, req.Postcode, e.Coords()); err != nil {
		return nil, err
	}
	if newPhotoURL != "" {
		e.Photo = &newPhotoURL
	}

	if err := s.repo.Update(context.WithoutCancel(ctx), e); err != nil {
		return nil, apperror.Wrap(apperror.Persistence, "Something went wrong! Please try again later.", err)
	}

	if newPhotoURL != "" && oldPhoto != "" {
		if err := s.store.Delete(ctx, oldPhoto); err != nil {
			s.audit.LogAction(ctx, &e.VendorID, "PHOTO_CLEANUP", map[string]interface{}{"url": oldPhoto, "error": err.Error()}, ip, auditlog.StatusFailure)
		}
	}

	s.audit.LogAction(ctx, &e.VendorID, "EVENT_UPDATED", map[string]interface{}{"event_id": e.ID}, ip, auditlog.StatusSuccess)
	return e, nil
}

// Delete removes an event owned by the authenticated vendor together
// with the vendor's back-reference, then deletes the stored photo, best
// effort: a failed blob delete is recorded but never surfaced.
func (s *Service) Delete(ctx context.Context, authVendorID, id uint, ip string) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.VendorID != authVendorID {
		return apperror.New(apperror.Unauthorized, "You are not allowed to delete another vendor's events!")
	}

	if err := s.repo.DeleteWithVendor(context.WithoutCancel(ctx), e); err != nil {
		return apperror.Wrap(apperror.Persistence, "Something went wrong! Please try again later.", err)
	}

	if e.Photo != nil && *e.Photo != "" {
		if err := s.store.Delete(ctx, *e.Photo); err != nil {
			s.audit.LogAction(ctx, &e.VendorID, "PHOTO_CLEANUP", map[string]interface{}{"url": *e.Photo, "error": err.Error()}, ip, auditlog.StatusFailure)
		}
	}

	s.audit.LogAction(ctx, &e.VendorID, "EVENT_DELETED", map[string]interface{}{"event_id": id}, ip, auditlog.StatusSuccess)
	return nil
}

// applyOwnAddress sets the coupled address/postcode/coordinates group.
// Blank address or postcode stores the null inherit group. A populated
// pair is geocoded unless the text matches what the event already stores,
// in which case prior coordinates are kept.
func (s *Service) applyOwnAddress(ctx context.Context, e *Event, address, postcode string, prior *geo.Coordinates) error {
	if address == "" || postcode == "" {
		e.Address = nil
		e.Postcode = nil
		e.Lat = nil
		e.Lng = nil
		return nil
	}

	unchanged := e.Address != nil && *e.Address == address &&
		e.Postcode != nil && vendor.NormalizePostcode(*e.Postcode) == vendor.NormalizePostcode(postcode) &&
		prior != nil

	e.Address = &address
	e.Postcode = &postcode

	if unchanged {
		e.Lat = &prior.Lat
		e.Lng = &prior.Lng
		return nil
	}

	coords, err := s.resolveCoords(ctx, address, postcode)
	if err != nil {
		return err
	}
	e.Lat = &coords.Lat
	e.Lng = &coords.Lng
	return nil
}

func (s *Service) resolveCoords(ctx context.Context, address, postcode string) (geo.Coordinates, error) {
	coords, err := s.geocoder.Resolve(ctx, address, postcode)
	if err != nil {
		if errors.Is(err, geocoding.ErrNoResults) {
			return geo.Coordinates{}, apperror.Wrap(apperror.Validation, "Could not find location for the specified address. Please double-check and try again.", err)
		}
		return geo.Coordinates{}, apperror.Wrap(apperror.Upstream, "Something went wrong! Please try again later.", err)
	}
	return coords, nil
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, apperror.Wrap(apperror.Validation, "Invalid information submitted. Please double-check and try again.", err)
	}
	return date, nil
}
