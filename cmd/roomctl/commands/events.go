package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportFrom string
	exportTo   string
	exportOut  string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect and export calendar events",
}

var eventsDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List the events of one day in insertion order",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		events, err := a.events.EventsForDay(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			printWarning(out, "no events on %s", args[0])
			return nil
		}
		rows := make([][]string, len(events))
		for i, e := range events {
			rows[i] = []string{e.ID, e.Date, e.Title}
		}
		printTable(out, []string{"ID", "DATE", "TITLE"}, rows)
		return nil
	}),
}

var eventsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write events in a date range to an iCalendar file",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		file, err := a.exports.CalendarICS(cmd.Context(), exportFrom, exportTo)
		if err != nil {
			return err
		}
		target := exportOut
		if target == "" {
			target = file.Filename
		}
		if target == "-" {
			_, err := cmd.OutOrStdout().Write(file.Body)
			return err
		}
		if err := os.WriteFile(target, file.Body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		printSuccess(cmd.OutOrStdout(), "wrote %s", target)
		return nil
	}),
}

func init() {
	eventsExportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start (YYYY-MM-DD)")
	eventsExportCmd.Flags().StringVar(&exportTo, "to", "", "Range end (YYYY-MM-DD)")
	eventsExportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output file, - for stdout")
	_ = eventsExportCmd.MarkFlagRequired("from")
	_ = eventsExportCmd.MarkFlagRequired("to")
	eventsCmd.AddCommand(eventsDayCmd, eventsExportCmd)
	rootCmd.AddCommand(eventsCmd)
}
