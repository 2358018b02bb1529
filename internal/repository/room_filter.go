package repository

import (
	"sort"
	"strings"

	"github.com/noah-isme/peerroom-api/internal/models"
)

const (
	defaultRoomPageSize = 6
	maxRoomPageSize     = 50
)

// normalizeRoomFilter clamps paging and defaults the sort order.
func normalizeRoomFilter(filter models.RoomFilter) models.RoomFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultRoomPageSize
	}
	if filter.PageSize > maxRoomPageSize {
		filter.PageSize = maxRoomPageSize
	}
	switch filter.SortBy {
	case models.RoomSortEnrolled, models.RoomSortCreated:
	default:
		filter.SortBy = models.RoomSortName
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Category = strings.TrimSpace(filter.Category)
	return filter
}

// applyRoomFilter runs the explore search, sort and pagination over an in-memory
// slice. It returns the requested page and the total number of matches.
func applyRoomFilter(rooms []models.Room, filter models.RoomFilter) ([]models.Room, int) {
	filter = normalizeRoomFilter(filter)
	needle := strings.ToLower(filter.Search)

	matched := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if filter.Category != "" && !strings.EqualFold(room.Category, filter.Category) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(room.Name), needle) &&
			!strings.Contains(strings.ToLower(room.Description), needle) &&
			!strings.Contains(strings.ToLower(room.Category), needle) {
			continue
		}
		matched = append(matched, room)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch filter.SortBy {
		case models.RoomSortEnrolled:
			if a.EnrolledUsers != b.EnrolledUsers {
				return a.EnrolledUsers > b.EnrolledUsers
			}
		case models.RoomSortCreated:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []models.Room{}, total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	page := make([]models.Room, 0, end-start)
	for _, room := range matched[start:end] {
		page = append(page, room.Clone())
	}
	return page, total
}

// summarizeRooms computes totals and per-category counts ordered by count desc.
func summarizeRooms(rooms []models.Room) (models.RoomTotals, []models.CategoryCount) {
	totals := models.RoomTotals{Rooms: len(rooms)}
	counts := map[string]int{}
	for _, room := range rooms {
		totals.Enrolled += room.EnrolledUsers
		totals.Modules += len(room.Modules)
		counts[room.Category]++
	}
	categories := make([]models.CategoryCount, 0, len(counts))
	for category, n := range counts {
		categories = append(categories, models.CategoryCount{Category: category, Rooms: n})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Rooms != categories[j].Rooms {
			return categories[i].Rooms > categories[j].Rooms
		}
		return categories[i].Category < categories[j].Category
	})
	return totals, categories
}
