package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/tracker"
)

var (
	startNotes string
	startTags  string
)

var startCmd = &cobra.Command{
	Use:   "start <project>",
	Short: "Start a new time entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&startNotes, "notes", "", "Notes for the entry")
	startCmd.Flags().StringVar(&startTags, "tags", "", "Comma-separated tag names")
}

// entryProject resolves ref for an entry form. Unknown references are passed
// through so the tracker reports them.
func entryProject(snap tracker.Snapshot, ref string) string {
	if len(snap.Projects) == 0 {
		return ""
	}
	if p, ok := snap.Project(ref); ok {
		return p.ID
	}
	return ref
}

func runStart(cmd *cobra.Command, args []string) error {
	snap := snapshot(cmd)
	in := tracker.EntryInput{
		ProjectID: entryProject(snap, args[0]),
		TagIDs:    snap.ResolveTags(splitList(startTags)),
		Notes:     startNotes,
	}

	entry, stopped, err := app.svc.Start(cmd.Context(), in)
	if err != nil {
		return err
	}
	for _, s := range stopped {
		fmt.Fprintf(os.Stderr, "Warning: auto-stopping active timer for project %q\n", snap.ProjectName(s.ProjectID))
	}

	fmt.Printf("Started timer for project %q at %s\n", snap.ProjectName(entry.ProjectID), entry.Start.Format("15:04:05"))
	return nil
}
