package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/models"
)

type seedEvent struct {
	Date  string
	Title string
}

var seedEvents = []seedEvent{
	{Date: "2026-02-15", Title: "Call peer"},
	{Date: "2026-02-18", Title: "Connect with mentor"},
	{Date: "2026-02-22", Title: "Group study"},
	{Date: "2026-02-05", Title: "Team meeting"},
}

var seedRooms = []models.Room{
	{
		Name:          "Cybersecurity 101",
		Description:   "Learn the fundamentals of protecting systems, networks and data from digital attacks.",
		Category:      "Technology",
		ModulesCount:  5,
		EnrolledUsers: 24,
		Modules: []models.Module{
			{Name: "Introduction", Content: "What is cybersecurity?"},
			{Name: "Threats", Content: "Common threats and attacks"},
		},
	},
	{
		Name:          "UI/UX Design",
		Description:   "Design intuitive interfaces and delightful user experiences.",
		Category:      "Design",
		ModulesCount:  8,
		EnrolledUsers: 42,
		Modules: []models.Module{
			{Name: "Color Theory", Content: "Basics of colors"},
		},
	},
}

type eventCreator interface {
	Count(ctx context.Context) (int, error)
	AddEvent(ctx context.Context, date, title string) (*models.Event, error)
}

// SeedResult reports what a seed run inserted.
type SeedResult struct {
	Events int `json:"events"`
	Rooms  int `json:"rooms"`
}

// Seeder loads the demo rooms and events.
type Seeder struct {
	events      eventCreator
	rooms       roomRepository
	placeholder string
	logger      *zap.Logger
	now         func() time.Time
}

// NewSeeder constructs a seeder writing rooms straight to the repository so
// enrolled counts survive.
func NewSeeder(events eventCreator, rooms roomRepository, placeholderImage string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{events: events, rooms: rooms, placeholder: placeholderImage, logger: logger, now: time.Now}
}

// SeedIfEmpty seeds each collection only when it holds nothing yet.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	count, err := s.events.Count(ctx)
	if err != nil {
		return result, err
	}
	if count == 0 {
		for _, e := range seedEvents {
			if _, err := s.events.AddEvent(ctx, e.Date, e.Title); err != nil {
				return result, fmt.Errorf("seed event %q: %w", e.Title, err)
			}
			result.Events++
		}
	}

	_, total, err := s.rooms.List(ctx, models.RoomFilter{Page: 1, PageSize: 1})
	if err != nil {
		return result, err
	}
	if total == 0 {
		for i, tmpl := range seedRooms {
			room := s.buildRoom(tmpl, i)
			if err := s.rooms.Create(ctx, &room); err != nil {
				return result, fmt.Errorf("seed room %q: %w", room.Name, err)
			}
			result.Rooms++
		}
	}
	s.logger.Info("seed completed", zap.Int("events", result.Events), zap.Int("rooms", result.Rooms))
	return result, nil
}

// buildRoom backfills seed modules to modules_count so seeded rooms satisfy the
// same length invariant as rooms created through the draft.
func (s *Seeder) buildRoom(tmpl models.Room, offset int) models.Room {
	room := tmpl.Clone()
	for i := len(room.Modules); i < room.ModulesCount; i++ {
		room.Modules = append(room.Modules, models.Module{Name: fmt.Sprintf("Module %d", i+1)})
	}
	for i := range room.Modules {
		room.Modules[i].ID = fmt.Sprintf("%s-m%d", slug(room.Name), i+1)
	}
	room.Image = s.placeholder
	now := s.now().UTC().Add(time.Duration(offset) * time.Second)
	room.CreatedAt = now
	room.UpdatedAt = now
	return room
}
