package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peerroom-api/internal/models"
	"github.com/noah-isme/peerroom-api/internal/service"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
	"github.com/noah-isme/peerroom-api/pkg/response"
)

type roomService interface {
	ListRooms(ctx context.Context, req service.ListRoomsRequest) ([]models.Room, *models.Pagination, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	DeleteRoom(ctx context.Context, session, roomID string) error
}

type roomExportService interface {
	RoomsCSV(ctx context.Context, req service.ListRoomsRequest) (*service.ExportFile, error)
	RoomSyllabusPDF(ctx context.Context, id string) (*service.ExportFile, error)
}

type roomImageService interface {
	AttachImage(ctx context.Context, roomID, filename string, r io.Reader) (*service.UploadResult, error)
	OpenRoomImage(ctx context.Context, roomID, name string) (io.ReadCloser, string, error)
}

// RoomHandler exposes the explore listing and per-room endpoints.
type RoomHandler struct {
	rooms   roomService
	exports roomExportService
	images  roomImageService
}

// NewRoomHandler constructs the handler. exports and images may be nil.
func NewRoomHandler(rooms roomService, exports roomExportService, images roomImageService) *RoomHandler {
	return &RoomHandler{rooms: rooms, exports: exports, images: images}
}

// List godoc
// @Summary Explore rooms
// @Tags Rooms
// @Produce json
// @Param search query string false "Search name, description or category"
// @Param category query string false "Category"
// @Param sort query string false "name, enrolled or created"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	var req service.ListRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	rooms, pagination, err := h.rooms.ListRooms(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, pagination)
}

// Get godoc
// @Summary Get room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.rooms.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Delete godoc
// @Summary Delete room
// @Tags Rooms
// @Param id path string true "Room ID"
// @Param X-Session-ID header string false "Draft session"
// @Success 204
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	session, _ := sessionFromContext(c)
	if err := h.rooms.DeleteRoom(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportCSV godoc
// @Summary Export rooms as CSV
// @Tags Rooms
// @Produce text/csv
// @Param search query string false "Search"
// @Param category query string false "Category"
// @Param sort query string false "name, enrolled or created"
// @Success 200 {file} file
// @Router /rooms/export.csv [get]
func (h *RoomHandler) ExportCSV(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrServiceOffline)
		return
	}
	var req service.ListRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	file, err := h.exports.RoomsCSV(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Syllabus godoc
// @Summary Download room syllabus
// @Tags Rooms
// @Produce application/pdf
// @Param id path string true "Room ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id}/syllabus.pdf [get]
func (h *RoomHandler) Syllabus(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrServiceOffline)
		return
	}
	file, err := h.exports.RoomSyllabusPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// UploadImage godoc
// @Summary Upload room image
// @Description Stores the original and renders a thumbnail in the background.
// @Tags Rooms
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Room ID"
// @Param image formData file true "Image (jpg, png, gif)"
// @Success 202 {object} response.Envelope
// @Router /rooms/{id}/image [post]
func (h *RoomHandler) UploadImage(c *gin.Context) {
	if h.images == nil {
		response.Error(c, appErrors.ErrServiceOffline)
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image is required"))
		return
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read image"))
		return
	}
	defer f.Close() //nolint:errcheck

	result, err := h.images.AttachImage(c.Request.Context(), c.Param("id"), header.Filename, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, result)
}

// Image godoc
// @Summary Room thumbnail
// @Tags Rooms
// @Produce jpeg
// @Param id path string true "Room ID"
// @Param name path string true "Thumbnail name"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id}/image/{name} [get]
func (h *RoomHandler) Image(c *gin.Context) {
	if h.images == nil {
		response.Error(c, appErrors.ErrServiceOffline)
		return
	}
	rc, key, err := h.images.OpenRoomImage(c.Request.Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close() //nolint:errcheck

	// Thumbnail names are unique per upload, so the content never changes.
	serveFile(c, rc, key, "public, max-age=86400, immutable")
}
