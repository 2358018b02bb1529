package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted under the API prefix. Nil handlers
// leave their routes unregistered.
type Handlers struct {
	Events    *EventHandler
	Rooms     *RoomHandler
	Drafts    *DraftHandler
	Dashboard *DashboardHandler
	Settings  *SettingsHandler
	Files     *FileHandler
}

// RegisterRoutes mounts the API on group.
func RegisterRoutes(group *gin.RouterGroup, h Handlers) {
	if h.Events != nil {
		events := group.Group("/events")
		events.GET("", h.Events.List)
		events.POST("", h.Events.Create)
		events.GET("/export.ics", h.Events.Export)
		events.POST("/import", h.Events.Import)
		events.GET("/:id", h.Events.Get)
		events.PUT("/:id", h.Events.Update)
		events.DELETE("/:id", h.Events.Delete)
	}

	rooms := group.Group("/rooms")
	if h.Drafts != nil {
		draft := rooms.Group("/draft")
		draft.GET("", h.Drafts.Get)
		draft.PUT("", h.Drafts.Update)
		draft.DELETE("", h.Drafts.Reset)
		draft.PUT("/modules-count", h.Drafts.SetModulesCount)
		draft.PATCH("/modules/:moduleId", h.Drafts.UpdateModule)
		draft.POST("/load/:id", h.Drafts.Load)
		draft.POST("/create", h.Drafts.CreateRoom)
		draft.POST("/update", h.Drafts.UpdateRoom)
	}
	if h.Rooms != nil {
		rooms.GET("", h.Rooms.List)
		rooms.GET("/export.csv", h.Rooms.ExportCSV)
		rooms.GET("/:id", h.Rooms.Get)
		rooms.DELETE("/:id", h.Rooms.Delete)
		rooms.GET("/:id/syllabus.pdf", h.Rooms.Syllabus)
		rooms.POST("/:id/image", h.Rooms.UploadImage)
		rooms.GET("/:id/image/:name", h.Rooms.Image)
	}

	if h.Dashboard != nil {
		group.GET("/dashboard", h.Dashboard.Summary)
		group.GET("/dashboard/system", h.Dashboard.System)
	}
	if h.Settings != nil {
		group.GET("/settings", h.Settings.Get)
		group.PUT("/settings", h.Settings.Update)
	}
	if h.Files != nil {
		group.GET("/files/:token", h.Files.Download)
	}
}
