package reports

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/whatson-events/whatson-backend/internal/apperror"
	"github.com/whatson-events/whatson-backend/internal/event"
	"github.com/whatson-events/whatson-backend/internal/vendor"
	"github.com/whatson-events/whatson-backend/middleware"
)

type Handler struct {
	vendors  *vendor.Service
	events   *event.Service
	exporter Exporter
}

func NewHandler(vendors *vendor.Service, events *event.Service, exporter Exporter) *Handler {
	return &Handler{vendors: vendors, events: events, exporter: exporter}
}

// ExportEvents godoc
// @Summary  Download own event list as excel, csv or pdf
// @Param    vid    path  string true  "vendor id"
// @Param    format query string false "excel, csv or pdf"
// @Produce  octet-stream
// @Security BearerAuth
// @Router   /vendors/{vid}/events/export [get]
func (h *Handler) ExportEvents(c *gin.Context) {
	auth, ok := middleware.GetAuth(c)
	if !ok {
		c.Error(apperror.New(apperror.Unauthorized, "Authentication failed"))
		return
	}

	id, err := strconv.ParseUint(c.Param("vid"), 10, 32)
	if err != nil {
		c.Error(apperror.New(apperror.Validation, "Invalid vendor id."))
		return
	}
	if auth.VendorID != uint(id) {
		c.Error(apperror.New(apperror.Unauthorized, "You do not have permission to do that!"))
		return
	}

	format := c.DefaultQuery("format", FormatExcel)

	v, err := h.vendors.Get(c.Request.Context(), uint(id))
	if err != nil {
		c.Error(err)
		return
	}
	events, err := h.events.AllForVendor(c.Request.Context(), uint(id))
	if err != nil {
		c.Error(err)
		return
	}

	rows := make([]EventRow, 0, len(events))
	for i := range events {
		e := &events[i]
		eff := event.Effective(e, v)
		rows = append(rows, EventRow{
			Title:    e.Title,
			Date:     e.Date.Format(event.DateLayout),
			Time:     e.Time,
			Address:  eff.Address,
			Postcode: eff.Postcode,
		})
	}

	data, filename, contentType, err := h.exporter.Export(format, v.Name, rows)
	if err != nil {
		c.Error(apperror.Wrap(apperror.Validation, "Unsupported export format. Use excel, csv or pdf.", err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
