package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/aggregate"
	"github.com/Tiliavir/trackmytime/internal/filter"
	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/timecalc"
	"github.com/Tiliavir/trackmytime/internal/tracker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current timer status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := app.svc.Now()
	snap := snapshot(cmd)

	if running := filter.Running(snap.Entries); len(running) > 0 {
		printRunning(os.Stdout, running, snap, now)
		return nil
	}

	// Idle: the last bucket of the week series is today.
	series := aggregate.Aggregate(snap.Entries, aggregate.Week, now)
	today := series[len(series)-1].Seconds

	fmt.Println("No active timer.")
	fmt.Printf("Today: %s logged.\n", timecalc.FormatSeconds(today))
	return nil
}

// printRunning prints one block per running entry, headed by its short id.
func printRunning(w io.Writer, running []model.Entry, snap tracker.Snapshot, now time.Time) {
	fmt.Fprintln(w, "Running:")
	for _, e := range running {
		fmt.Fprintf(w, "  %s\n", shortID(e.ID))
		fmt.Fprintf(w, "    Project: %s\n", snap.ProjectName(e.ProjectID))
		if e.Notes != "" {
			fmt.Fprintf(w, "    Notes: %s\n", e.Notes)
		}
		fmt.Fprintf(w, "    Since: %s\n", e.Start.Format("15:04"))
		fmt.Fprintf(w, "    Elapsed: %s\n", timecalc.FormatClock(now.Sub(e.Start)))
	}
}
