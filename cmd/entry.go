package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/timecalc"
	"github.com/Tiliavir/trackmytime/internal/tracker"
)

var (
	entryProjectFlag string
	entryStart       string
	entryEnd         string
	entryNotes       string
	entryTags        string
	entryRunning     bool
)

var addCmd = &cobra.Command{
	Use:   "add <project>",
	Short: "Record an entry with explicit times",
	Long: `Record an entry after the fact. Times accept RFC 3339, "2006-01-02 15:04",
a bare date or "15:04" for today. Without --end the entry keeps running.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	addCmd.Flags().StringVar(&entryStart, "start", "", "Start time (required)")
	addCmd.Flags().StringVar(&entryEnd, "end", "", "End time")
	addCmd.Flags().StringVar(&entryNotes, "notes", "", "Notes for the entry")
	addCmd.Flags().StringVar(&entryTags, "tags", "", "Comma-separated tag names")
	_ = addCmd.MarkFlagRequired("start")

	editCmd.Flags().StringVar(&entryProjectFlag, "project", "", "Move the entry to this project")
	editCmd.Flags().StringVar(&entryStart, "start", "", "New start time")
	editCmd.Flags().StringVar(&entryEnd, "end", "", "New end time")
	editCmd.Flags().BoolVar(&entryRunning, "running", false, "Remove the end so the entry runs again")
	editCmd.Flags().StringVar(&entryNotes, "notes", "", "Replace the notes")
	editCmd.Flags().StringVar(&entryTags, "tags", "", "Replace the tags (comma-separated, empty clears)")
	editCmd.MarkFlagsMutuallyExclusive("end", "running")
}

func parseEnd(value string, ref time.Time) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	end, err := timecalc.ParseWhen(value, ref)
	if err != nil {
		return nil, err
	}
	return &end, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	now := app.svc.Now()
	snap := snapshot(cmd)

	start, err := timecalc.ParseWhen(entryStart, now)
	if err != nil {
		return err
	}
	end, err := parseEnd(entryEnd, start)
	if err != nil {
		return err
	}

	e, err := app.svc.AddEntry(cmd.Context(), tracker.EntryInput{
		ProjectID: entryProject(snap, args[0]),
		TagIDs:    snap.ResolveTags(splitList(entryTags)),
		Notes:     entryNotes,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added entry %s for project %q\n", shortID(e.ID), snap.ProjectName(e.ProjectID))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	snap := snapshot(cmd)
	id, err := resolveEntry(snap, args[0])
	if err != nil {
		return err
	}
	cur, _ := snap.Entry(id)

	in := tracker.EntryInput{
		ProjectID: cur.ProjectID,
		TagIDs:    cur.TagIDs,
		Notes:     cur.Notes,
		Start:     cur.Start,
		End:       cur.End,
	}
	flags := cmd.Flags()
	if flags.Changed("project") {
		in.ProjectID = entryProject(snap, entryProjectFlag)
	}
	if flags.Changed("start") {
		if in.Start, err = timecalc.ParseWhen(entryStart, cur.Start); err != nil {
			return err
		}
	}
	if flags.Changed("end") {
		if in.End, err = parseEnd(entryEnd, in.Start); err != nil {
			return err
		}
	}
	if entryRunning {
		in.End = nil
	}
	if flags.Changed("notes") {
		in.Notes = entryNotes
	}
	if flags.Changed("tags") {
		in.TagIDs = snap.ResolveTags(splitList(entryTags))
	}

	e, err := app.svc.EditEntry(cmd.Context(), id, in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated entry %s\n", shortID(e.ID))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	snap := snapshot(cmd)
	id, err := resolveEntry(snap, args[0])
	if err != nil {
		return err
	}
	if err := app.svc.DeleteEntry(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted entry %s\n", shortID(id))
	return nil
}
