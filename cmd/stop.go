package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/timecalc"
	"github.com/Tiliavir/trackmytime/internal/tracker"
)

var stopID string

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running timer",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopID, "id", "", "Stop only this entry (id or id prefix)")
}

func runStop(cmd *cobra.Command, args []string) error {
	snap := snapshot(cmd)

	var stopped []model.Entry
	if stopID != "" {
		id, err := resolveEntry(snap, stopID)
		if err != nil {
			return err
		}
		e, err := app.svc.Stop(cmd.Context(), id)
		if err != nil {
			return err
		}
		stopped = append(stopped, e)
	} else {
		var err error
		stopped, err = app.svc.StopRunning(cmd.Context())
		if errors.Is(err, tracker.ErrNoRunningEntry) {
			fmt.Fprintln(os.Stderr, "No active timer to stop.")
			os.Exit(1)
		}
		if err != nil {
			return err
		}
	}

	for _, e := range stopped {
		d, _ := e.Duration()
		fmt.Printf("Stopped timer for project %q. Elapsed: %s\n",
			snap.ProjectName(e.ProjectID), timecalc.FormatDuration(d))
	}
	return nil
}
