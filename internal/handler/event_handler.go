package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peerroom-api/internal/models"
	"github.com/noah-isme/peerroom-api/internal/service"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
	"github.com/noah-isme/peerroom-api/pkg/response"
)

const maxImportSize = 2 << 20

type eventService interface {
	AddEvent(ctx context.Context, date, title string) (*models.Event, error)
	UpdateEvent(ctx context.Context, id, title string) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	EventsForDay(ctx context.Context, date string) ([]models.Event, error)
	EventsForMonth(ctx context.Context, year int, month time.Month) (map[string][]models.Event, error)
	EventsBetween(ctx context.Context, from, to string) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ImportICS(ctx context.Context, body []byte) (*service.ImportResult, error)
}

type calendarExportService interface {
	CalendarICS(ctx context.Context, from, to string) (*service.ExportFile, error)
}

// EventHandler exposes calendar endpoints.
type EventHandler struct {
	events  eventService
	exports calendarExportService
}

// NewEventHandler constructs the handler.
func NewEventHandler(events eventService, exports calendarExportService) *EventHandler {
	return &EventHandler{events: events, exports: exports}
}

// List godoc
// @Summary List events for a day, a month or a date range
// @Tags Events
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD)"
// @Param month query string false "Month (YYYY-MM)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	switch {
	case c.Query("date") != "":
		events, err := h.events.EventsForDay(ctx, strings.TrimSpace(c.Query("date")))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, events, nil)
	case c.Query("month") != "":
		month, err := time.Parse("2006-01", strings.TrimSpace(c.Query("month")))
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM"))
			return
		}
		grouped, err := h.events.EventsForMonth(ctx, month.Year(), month.Month())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, grouped, nil)
	case c.Query("from") != "" || c.Query("to") != "":
		events, err := h.events.EventsBetween(ctx, c.Query("from"), c.Query("to"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, events, nil)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "one of date, month or from/to is required"))
	}
}

// Create godoc
// @Summary Add an event to a day
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.AddEventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req service.AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	event, err := h.events.AddEvent(c.Request.Context(), req.Date, req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Get godoc
// @Summary Get event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Update godoc
// @Summary Rename an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.UpdateEventRequest true "Title"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	event, err := h.events.UpdateEvent(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	if event == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "event not found"))
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export events as iCalendar
// @Tags Events
// @Produce text/calendar
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /events/export.ics [get]
func (h *EventHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrServiceOffline)
		return
	}
	file, err := h.exports.CalendarICS(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Import godoc
// @Summary Import events from an iCalendar file
// @Tags Events
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "ICS file"
// @Success 200 {object} response.Envelope
// @Router /events/import [post]
func (h *EventHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if header.Size > maxImportSize {
		response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooBig, "calendar file too large"))
		return
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read file"))
		return
	}
	defer f.Close() //nolint:errcheck
	body, err := io.ReadAll(io.LimitReader(f, maxImportSize))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read file"))
		return
	}
	result, err := h.events.ImportICS(c.Request.Context(), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
