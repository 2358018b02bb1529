package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peerroom-api/internal/models"
	"github.com/noah-isme/peerroom-api/internal/service"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
	"github.com/noah-isme/peerroom-api/pkg/response"
)

type draftService interface {
	Draft(ctx context.Context, session string) (*models.RoomDraft, error)
	LoadDraft(ctx context.Context, session, roomID string) (*models.RoomDraft, error)
	ResetDraft(ctx context.Context, session string) (*models.RoomDraft, error)
	SetModulesCount(ctx context.Context, session string, n int) (*models.RoomDraft, error)
	UpdateModuleField(ctx context.Context, session, moduleID string, field models.ModuleField, value string) (*models.RoomDraft, error)
	UpdateDraft(ctx context.Context, session string, req service.UpdateDraftRequest) (*models.RoomDraft, error)
	CreateRoom(ctx context.Context, session string) (*models.Room, error)
	UpdateRoom(ctx context.Context, session string) (*models.Room, error)
}

type modulesCountRequest struct {
	ModulesCount *int `json:"modules_count" binding:"required"`
}

type moduleFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// DraftHandler exposes the per-session room builder.
type DraftHandler struct {
	drafts     draftService
	maxModules int
}

// NewDraftHandler constructs the handler. maxModules bounds modules_count; zero means 20.
func NewDraftHandler(drafts draftService, maxModules int) *DraftHandler {
	if maxModules <= 0 {
		maxModules = 20
	}
	return &DraftHandler{drafts: drafts, maxModules: maxModules}
}

// Get godoc
// @Summary Current room draft
// @Tags Room Draft
// @Produce json
// @Param X-Session-ID header string true "Draft session"
// @Success 200 {object} response.Envelope
// @Router /rooms/draft [get]
func (h *DraftHandler) Get(c *gin.Context) {
	h.respond(c, func(ctx context.Context, session string) (*models.RoomDraft, error) {
		return h.drafts.Draft(ctx, session)
	})
}

// Reset godoc
// @Summary Reset the room draft
// @Tags Room Draft
// @Produce json
// @Param X-Session-ID header string true "Draft session"
// @Success 200 {object} response.Envelope
// @Router /rooms/draft [delete]
func (h *DraftHandler) Reset(c *gin.Context) {
	h.respond(c, func(ctx context.Context, session string) (*models.RoomDraft, error) {
		return h.drafts.ResetDraft(ctx, session)
	})
}

// Update godoc
// @Summary Edit draft room fields
// @Tags Room Draft
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Draft session"
// @Param payload body service.UpdateDraftRequest true "Fields"
// @Success 200 {object} response.Envelope
// @Router /rooms/draft [put]
func (h *DraftHandler) Update(c *gin.Context) {
	var req service.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	h.respond(c, func(ctx context.Context, session string) (*models.RoomDraft, error) {
		return h.drafts.UpdateDraft(ctx, session, req)
	})
}

// SetModulesCount godoc
// @Summary Resize the draft module list
// @Tags Room Draft
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Draft session"
// @Param payload body modulesCountRequest true "Module count"
// @Success 200 {object} response.Envelope
// @Router /rooms/draft/modules-count [put]
func (h *DraftHandler) SetModulesCount(c *gin.Context) {
	var req modulesCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "modules_count is required"))
		return
	}
	if n := *req.ModulesCount; n < 1 || n > h.maxModules {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("modules_count must be between 1 and %d", h.maxModules)))
		return
	}
	h.respond(c, func(ctx context.Context, session string) (*models.RoomDraft, error) {
		return h.drafts.SetModulesCount(ctx, session, *req.ModulesCount)
	})
}

// UpdateModule godoc
// @Summary Edit a draft module
// @Tags Room Draft
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Draft session"
// @Param moduleId path string true "Module ID"
// @Param payload body moduleFieldRequest true "Field (name or content) and value"
// @Success 200 {object} response.Envelope
// @Router /rooms/draft/modules/{moduleId} [patch]
func (h *DraftHandler) UpdateModule(c *gin.Context) {
	var req moduleFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "field is required"))
		return
	}
	moduleID := c.Param("moduleId")
	h.respond(c, func(ctx context.Context, session string) (*models.RoomDraft, error) {
		return h.drafts.UpdateModuleField(ctx, session, moduleID, models.ModuleField(req.Field), req.Value)
	})
}

// Load godoc
// @Summary Load a room into the draft for editing
// @Tags Room Draft
// @Produce json
// @Param X-Session-ID header string true "Draft session"
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/draft/load/{id} [post]
func (h *DraftHandler) Load(c *gin.Context) {
	roomID := c.Param("id")
	h.respond(c, func(ctx context.Context, session string) (*models.RoomDraft, error) {
		return h.drafts.LoadDraft(ctx, session, roomID)
	})
}

// CreateRoom godoc
// @Summary Create a room from the draft
// @Tags Room Draft
// @Produce json
// @Param X-Session-ID header string true "Draft session"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rooms/draft/create [post]
func (h *DraftHandler) CreateRoom(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	room, err := h.drafts.CreateRoom(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// UpdateRoom godoc
// @Summary Save the draft over the loaded room
// @Tags Room Draft
// @Produce json
// @Param X-Session-ID header string true "Draft session"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rooms/draft/update [post]
func (h *DraftHandler) UpdateRoom(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	room, err := h.drafts.UpdateRoom(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	if room == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "no room is loaded in the draft"))
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

func (h *DraftHandler) respond(c *gin.Context, fn func(ctx context.Context, session string) (*models.RoomDraft, error)) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	draft, err := fn(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}
