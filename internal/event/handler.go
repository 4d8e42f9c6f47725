package event

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/whatson-events/whatson-backend/internal/apperror"
	"github.com/whatson-events/whatson-backend/internal/upload"
	"github.com/whatson-events/whatson-backend/internal/vendor"
	"github.com/whatson-events/whatson-backend/middleware"
)

type Handler struct {
	svc     *Service
	vendors *vendor.Service
	store   upload.Store
}

func NewHandler(svc *Service, vendors *vendor.Service, store upload.Store) *Handler {
	return &Handler{svc: svc, vendors: vendors, store: store}
}

// List godoc
// @Summary  Search events near a postcode on a date
// @Param    postcode query string true "query postcode"
// @Param    distance query number true "radius in miles"
// @Param    date     query string true "calendar date, YYYY-MM-DD"
// @Produce  json
// @Router   /events [get]
func (h *Handler) List(c *gin.Context) {
	postcode := c.Query("postcode")
	distance := c.Query("distance")
	date := c.Query("date")
	if postcode == "" || distance == "" || date == "" {
		c.Error(apperror.New(apperror.Validation, "Your postcode, a date and a desired distance must be provided."))
		return
	}

	radius, err := strconv.ParseFloat(distance, 64)
	if err != nil || radius < 0 {
		c.Error(apperror.New(apperror.Validation, "Your postcode, a date and a desired distance must be provided."))
		return
	}
	day, err := parseDate(date)
	if err != nil {
		c.Error(err)
		return
	}

	events, err := h.svc.Search(c.Request.Context(), postcode, radius, day)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Today godoc
// @Summary  All events happening today
// @Produce  json
// @Router   /events/today [get]
func (h *Handler) Today(c *gin.Context) {
	events, err := h.svc.Today(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetByID godoc
// @Summary  Single event with vendor populated
// @Produce  json
// @Router   /events/{eid} [get]
func (h *Handler) GetByID(c *gin.Context) {
	id, err := parseID(c.Param("eid"))
	if err != nil {
		c.Error(apperror.New(apperror.Validation, "Invalid event id."))
		return
	}

	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": NewResponse(e)})
}

// Create godoc
// @Summary  Create an event
// @Accept   mpfd
// @Produce  json
// @Security BearerAuth
// @Router   /events [post]
func (h *Handler) Create(c *gin.Context) {
	auth, ok := middleware.GetAuth(c)
	if !ok {
		c.Error(apperror.New(apperror.Unauthorized, "Authentication failed"))
		return
	}

	var req CreateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.Wrap(apperror.Validation, "Invalid information submitted. Please double-check and try again.", err))
		return
	}

	photoURL, err := h.optionalPhoto(c)
	if err != nil {
		c.Error(err)
		return
	}

	e, err := h.svc.Create(c.Request.Context(), auth.VendorID, req, photoURL, c.ClientIP())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": NewResponse(e)})
}

// Update godoc
// @Summary  Update an owned event
// @Accept   mpfd
// @Produce  json
// @Security BearerAuth
// @Router   /events/{eid} [patch]
func (h *Handler) Update(c *gin.Context) {
	auth, ok := middleware.GetAuth(c)
	if !ok {
		c.Error(apperror.New(apperror.Unauthorized, "Authentication failed"))
		return
	}

	id, err := parseID(c.Param("eid"))
	if err != nil {
		c.Error(apperror.New(apperror.Validation, "Invalid event id."))
		return
	}

	var req UpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.Wrap(apperror.Validation, "Invalid information submitted. Please double-check and try again.", err))
		return
	}

	photoURL, err := h.optionalPhoto(c)
	if err != nil {
		c.Error(err)
		return
	}

	e, err := h.svc.Update(c.Request.Context(), auth.VendorID, id, req, photoURL, c.ClientIP())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": NewResponse(e)})
}

// Delete godoc
// @Summary  Delete an owned event
// @Produce  json
// @Security BearerAuth
// @Router   /events/{eid} [delete]
func (h *Handler) Delete(c *gin.Context) {
	auth, ok := middleware.GetAuth(c)
	if !ok {
		c.Error(apperror.New(apperror.Unauthorized, "Authentication failed"))
		return
	}

	id, err := parseID(c.Param("eid"))
	if err != nil {
		c.Error(apperror.New(apperror.Validation, "Invalid event id."))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), auth.VendorID, id, c.ClientIP()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully."})
}

// VendorProfile godoc
// @Summary  Vendor profile with past or upcoming events
// @Param    vid     path string true "vendor id"
// @Param    timeRef path string true "past or current"
// @Produce  json
// @Router   /vendors/{vid}/{timeRef} [get]
func (h *Handler) VendorProfile(c *gin.Context) {
	id, err := parseID(c.Param("vid"))
	if err != nil {
		c.Error(apperror.New(apperror.Validation, "Invalid vendor id."))
		return
	}

	v, err := h.vendors.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	events, err := h.svc.ListForVendor(c.Request.Context(), id, c.Param("timeRef"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendor": v, "events": events})
}

// optionalPhoto ingests the "image" form file when one was sent and marks
// it for cleanup should the rest of the request fail.
func (h *Handler) optionalPhoto(c *gin.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	url, err := upload.Ingest(c.Request.Context(), fh, h.store)
	if err != nil {
		return "", err
	}
	c.Set(middleware.UploadedPhotoKey, url)
	return url, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err
}
