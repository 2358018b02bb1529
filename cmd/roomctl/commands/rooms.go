package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/peerroom-api/internal/service"
)

var (
	roomsSearch   string
	roomsCategory string
	roomsSort     string
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Inspect stored rooms",
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rooms as a table",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		req := service.ListRoomsRequest{Search: roomsSearch, Category: roomsCategory, SortBy: roomsSort, Page: 1, PageSize: 50}
		var rows [][]string
		for {
			rooms, page, err := a.rooms.ListRooms(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, room := range rooms {
				rows = append(rows, []string{
					room.ID,
					room.Name,
					room.Category,
					strconv.Itoa(len(room.Modules)),
					strconv.Itoa(room.EnrolledUsers),
				})
			}
			if page == nil || req.Page >= page.TotalPages {
				break
			}
			req.Page++
		}
		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			printWarning(out, "no rooms found")
			return nil
		}
		printTable(out, []string{"ID", "NAME", "CATEGORY", "MODULES", "ENROLLED"}, rows)
		faint.Fprintf(out, "%d rooms\n", len(rows))
		return nil
	}),
}

func init() {
	roomsListCmd.Flags().StringVar(&roomsSearch, "search", "", "Filter by name, description or category")
	roomsListCmd.Flags().StringVar(&roomsCategory, "category", "", "Filter by category")
	roomsListCmd.Flags().StringVar(&roomsSort, "sort", "name", "Sort by name, enrolled or created")
	roomsCmd.AddCommand(roomsListCmd)
	rootCmd.AddCommand(roomsCmd)
}
