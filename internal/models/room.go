package models

import "time"

// Module is one unit of a room's syllabus.
type Module struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Content string `db:"content" json:"content"`
}

// ModuleField names an editable module attribute.
type ModuleField string

const (
	ModuleFieldName    ModuleField = "name"
	ModuleFieldContent ModuleField = "content"
)

// Room is a persisted learning room.
type Room struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	Category      string    `db:"category" json:"category"`
	Image         string    `db:"image" json:"image"`
	ModulesCount  int       `db:"modules_count" json:"modules_count"`
	Modules       []Module  `db:"-" json:"modules"`
	EnrolledUsers int       `db:"enrolled_users" json:"enrolled_users"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy so callers never share module slices.
func (r Room) Clone() Room {
	out := r
	out.Modules = cloneModules(r.Modules)
	return out
}

// RoomDraft is the editable form state of a single session.
type RoomDraft struct {
	RoomID       string    `json:"room_id,omitempty"`
	Image        string    `json:"image"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ModulesCount int       `json:"modules_count"`
	Modules      []Module  `json:"modules"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewRoomDraft returns the empty form defaults.
func NewRoomDraft() *RoomDraft {
	return &RoomDraft{ModulesCount: 1, Modules: []Module{}}
}

// DraftFromRoom copies every editable field of room into a fresh draft.
func DraftFromRoom(room Room) *RoomDraft {
	return &RoomDraft{
		RoomID:       room.ID,
		Image:        room.Image,
		Name:         room.Name,
		Description:  room.Description,
		Category:     room.Category,
		ModulesCount: room.ModulesCount,
		Modules:      cloneModules(room.Modules),
	}
}

// Loaded reports whether the draft targets an existing room.
func (d *RoomDraft) Loaded() bool {
	return d != nil && d.RoomID != ""
}

// RoomSort enumerates explore listing orders.
type RoomSort string

const (
	RoomSortName     RoomSort = "name"
	RoomSortEnrolled RoomSort = "enrolled"
	RoomSortCreated  RoomSort = "created"
)

// RoomFilter narrows the explore listing.
type RoomFilter struct {
	Search   string
	Category string
	SortBy   RoomSort
	Page     int
	PageSize int
}

// CategoryCount aggregates rooms per category.
type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Rooms    int    `db:"rooms" json:"rooms"`
}

func cloneModules(in []Module) []Module {
	out := make([]Module, len(in))
	copy(out, in)
	return out
}

// RoomTotals holds platform-wide room counters.
type RoomTotals struct {
	Rooms    int `db:"rooms" json:"rooms"`
	Enrolled int `db:"enrolled" json:"enrolled"`
	Modules  int `db:"modules" json:"modules"`
}
