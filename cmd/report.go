package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/aggregate"
	"github.com/Tiliavir/trackmytime/internal/export"
	"github.com/Tiliavir/trackmytime/internal/timecalc"
	"github.com/Tiliavir/trackmytime/internal/tracker"
)

var (
	reportWindow string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show time per project",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportWindow, "window", "", "week, month, 3months or all (default from config)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type projectLine struct {
	Project         string `json:"project"`
	DurationSeconds int64  `json:"duration_seconds"`
}

type reportDoc struct {
	Window       string        `json:"window"`
	From         string        `json:"from"`
	To           string        `json:"to"`
	Projects     []projectLine `json:"projects"`
	TotalSeconds int64         `json:"total_seconds"`
}

func buildReport(snap tracker.Snapshot, w aggregate.Window, now time.Time) reportDoc {
	from, to := aggregate.Bounds(snap.Entries, w, now)
	doc := reportDoc{
		Window:   w.String(),
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		Projects: []projectLine{},
	}
	for _, pt := range aggregate.ByProject(snap.Entries, w, now) {
		if pt.Seconds <= 0 {
			continue
		}
		secs := int64(pt.Seconds)
		doc.Projects = append(doc.Projects, projectLine{Project: snap.ProjectName(pt.ProjectID), DurationSeconds: secs})
		doc.TotalSeconds += secs
	}
	return doc
}

func runReport(cmd *cobra.Command, args []string) error {
	w, err := selectedWindow(reportWindow)
	if err != nil {
		return err
	}
	doc := buildReport(snapshot(cmd), w, app.svc.Now())
	return writeReport(os.Stdout, doc, reportFormat)
}

func writeReport(out io.Writer, doc reportDoc, format string) error {
	switch format {
	case "csv":
		if err := export.WriteCSVLine(out, []string{"project", "duration_seconds"}); err != nil {
			return err
		}
		for _, p := range doc.Projects {
			if err := export.WriteCSVLine(out, []string{p.Project, strconv.FormatInt(p.DurationSeconds, 10)}); err != nil {
				return err
			}
		}
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "md":
		fmt.Fprintf(out, "%s %s → %s\n", doc.Window, doc.From, doc.To)
		fmt.Fprintln(out, "--------------------------------")
		for _, p := range doc.Projects {
			fmt.Fprintf(out, "%-20s%s\n", p.Project, timecalc.FormatDuration(time.Duration(p.DurationSeconds)*time.Second))
		}
		fmt.Fprintln(out, "--------------------------------")
		fmt.Fprintf(out, "%-20s%s\n", "Total", timecalc.FormatDuration(time.Duration(doc.TotalSeconds)*time.Second))
	default:
		return fmt.Errorf("unknown report format %q (want md, csv or json)", format)
	}
	return nil
}
