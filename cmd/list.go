package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/filter"
	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/timecalc"
	"github.com/Tiliavir/trackmytime/internal/tracker"
)

var (
	listProject string
	listTag     string
	listOldest  bool
	listNewest  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	Long:  "List entries, newest first unless configured otherwise, optionally filtered by project and tag.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listProject, "project", "", "Only entries of this project")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only entries carrying this tag")
	listCmd.Flags().BoolVar(&listOldest, "oldest", false, "Oldest entries first")
	listCmd.Flags().BoolVar(&listNewest, "newest", false, "Newest entries first")
	listCmd.MarkFlagsMutuallyExclusive("oldest", "newest")
}

// listCriteria builds the filter from the list flags.
func listCriteria(snap tracker.Snapshot) (filter.Criteria, error) {
	projectID, err := resolveProject(snap, listProject)
	if err != nil {
		return filter.Criteria{}, err
	}
	tagID, err := resolveTag(snap, listTag)
	if err != nil {
		return filter.Criteria{}, err
	}
	return filter.Criteria{
		ProjectID:   projectID,
		TagID:       tagID,
		NewestFirst: newestFirst(app.cfg.List.NewestFirst, listNewest, listOldest),
	}, nil
}

// newestFirst applies the --newest and --oldest overrides to the configured order.
func newestFirst(configured, newest, oldest bool) bool {
	switch {
	case newest:
		return true
	case oldest:
		return false
	}
	return configured
}

func runList(cmd *cobra.Command, args []string) error {
	snap := snapshot(cmd)
	c, err := listCriteria(snap)
	if err != nil {
		return err
	}
	printList(os.Stdout, filter.Select(snap.Entries, c), snap, app.svc.Now())
	return nil
}

// printList groups entries by start day and prints them in the given order.
func printList(w io.Writer, entries []model.Entry, snap tracker.Snapshot, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	var currentDay string
	for _, e := range entries {
		day := e.Start.Format("2006-01-02")
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}

		endStr := "ongoing"
		d := now.Sub(e.Start)
		if e.End != nil {
			endStr = e.End.Format("15:04")
			d, _ = e.Duration()
		}

		var extra strings.Builder
		for _, t := range e.TagIDs {
			if tag, ok := snap.Tag(t); ok {
				extra.WriteString(" " + tagLabel(tag))
			}
		}
		if e.Notes != "" {
			extra.WriteString("  " + strings.ReplaceAll(e.Notes, "\n", " "))
		}

		fmt.Fprintf(w, "  %s  %s–%s  %s%s (%s)\n",
			shortID(e.ID), e.Start.Format("15:04"), endStr,
			snap.ProjectName(e.ProjectID), extra.String(), timecalc.FormatDuration(d))
	}
}
