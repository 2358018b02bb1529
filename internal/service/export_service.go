package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/models"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
	"github.com/noah-isme/peerroom-api/pkg/export"
)

type roomReader interface {
	ListRooms(ctx context.Context, req ListRoomsRequest) ([]models.Room, *models.Pagination, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
}

type calendarExporter interface {
	ExportICS(ctx context.Context, from, to string) ([]byte, error)
}

var roomCSVColumns = []export.Column{
	{Key: "id", Title: "ID"},
	{Key: "name", Title: "Name"},
	{Key: "category", Title: "Category"},
	{Key: "description", Title: "Description"},
	{Key: "modules_count", Title: "Modules"},
	{Key: "enrolled_users", Title: "Enrolled"},
	{Key: "created_at", Title: "Created"},
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders rooms and events into downloadable files.
type ExportService struct {
	rooms  roomReader
	events calendarExporter
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(rooms roomReader, events calendarExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{rooms: rooms, events: events, csv: export.NewCSVExporter(), pdf: export.NewPDFExporter(), logger: logger}
}

// RoomsCSV exports every room matching the filter, across all pages.
func (s *ExportService) RoomsCSV(ctx context.Context, req ListRoomsRequest) (*ExportFile, error) {
	req.Page = 1
	req.PageSize = 50
	table := export.Table{Columns: roomCSVColumns}
	for {
		rooms, page, err := s.rooms.ListRooms(ctx, req)
		if err != nil {
			return nil, err
		}
		for _, room := range rooms {
			table.Rows = append(table.Rows, map[string]string{
				"id":             room.ID,
				"name":           room.Name,
				"category":       room.Category,
				"description":    room.Description,
				"modules_count":  strconv.Itoa(room.ModulesCount),
				"enrolled_users": strconv.Itoa(room.EnrolledUsers),
				"created_at":     room.CreatedAt.UTC().Format(models.DateLayout),
			})
		}
		if page == nil || req.Page >= page.TotalPages {
			break
		}
		req.Page++
	}
	body, err := s.csv.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render rooms csv")
	}
	return &ExportFile{Filename: "rooms.csv", ContentType: "text/csv", Body: body}, nil
}

// RoomSyllabusPDF renders one room and its modules.
func (s *ExportService) RoomSyllabusPDF(ctx context.Context, id string) (*ExportFile, error) {
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	syllabus := export.Syllabus{
		Name:        room.Name,
		Category:    room.Category,
		Description: room.Description,
		Enrolled:    room.EnrolledUsers,
		Modules:     make([]export.SyllabusModule, len(room.Modules)),
	}
	for i, m := range room.Modules {
		syllabus.Modules[i] = export.SyllabusModule{Name: m.Name, Content: m.Content}
	}
	body, err := s.pdf.Render(syllabus)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render syllabus")
	}
	return &ExportFile{Filename: slug(room.Name) + "-syllabus.pdf", ContentType: "application/pdf", Body: body}, nil
}

// CalendarICS exports events between from and to.
func (s *ExportService) CalendarICS(ctx context.Context, from, to string) (*ExportFile, error) {
	body, err := s.events.ExportICS(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: fmt.Sprintf("events-%s-%s.ics", from, to), ContentType: "text/calendar", Body: body}, nil
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "room"
	}
	return out
}
