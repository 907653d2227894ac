// Package export writes entries as CSV, JSON, YAML or Markdown.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/timecalc"
)

// Names resolves the ids stored on entries into display names.
type Names interface {
	ProjectName(id string) string
	TagNames(ids []string) []string
}

// Formats accepted by Write.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "md"
)

// CSVHeader is the first line of every CSV export.
var CSVHeader = []string{"id", "project", "tags", "notes", "start", "end", "duration_seconds"}

// Record is the exported shape of an entry with names resolved.
type Record struct {
	ID              string     `json:"id" yaml:"id"`
	Project         string     `json:"project" yaml:"project"`
	Tags            []string   `json:"tags" yaml:"tags"`
	Notes           string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Start           time.Time  `json:"start" yaml:"start"`
	End             *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
	Source          string     `json:"source,omitempty" yaml:"source,omitempty"`
}

// NewRecord resolves e against names.
func NewRecord(e model.Entry, names Names) Record {
	r := Record{
		ID:      e.ID,
		Project: names.ProjectName(e.ProjectID),
		Tags:    names.TagNames(e.TagIDs),
		Notes:   e.Notes,
		Start:   e.Start,
		End:     e.End,
		Source:  e.Source,
	}
	if d, ok := e.Duration(); ok {
		secs := int64(d / time.Second)
		if secs < 0 {
			secs = 0
		}
		r.DurationSeconds = &secs
	}
	return r
}

// Write encodes entries in format to w.
func Write(w io.Writer, format string, entries []model.Entry, names Names) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, entries, names)
	case FormatJSON:
		return WriteJSON(w, entries, names)
	case FormatYAML:
		return WriteYAML(w, entries, names)
	case FormatMarkdown:
		return WriteMarkdown(w, entries, names)
	default:
		return fmt.Errorf("unknown export format %q (want csv, json, yaml or md)", format)
	}
}

// CSVRow returns the CSV fields of e, unescaped.
func CSVRow(e model.Entry, names Names) []string {
	r := NewRecord(e, names)
	end, dur := "", ""
	if r.End != nil {
		end = r.End.Format(time.RFC3339)
	}
	if r.DurationSeconds != nil {
		dur = strconv.FormatInt(*r.DurationSeconds, 10)
	}
	return []string{
		r.ID,
		r.Project,
		strings.Join(r.Tags, ";"),
		r.Notes,
		r.Start.Format(time.RFC3339),
		end,
		dur,
	}
}

// WriteCSV writes a header line and one row per entry.
func WriteCSV(w io.Writer, entries []model.Entry, names Names) error {
	if err := WriteCSVLine(w, CSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := WriteCSVLine(w, CSVRow(e, names)); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSVLine writes one RFC 4180 record.
func WriteCSVLine(w io.Writer, fields []string) error {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = csvEscape(f)
	}
	_, err := fmt.Fprintln(w, strings.Join(escaped, ","))
	return err
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func records(entries []model.Entry, names Names) []Record {
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewRecord(e, names))
	}
	return out
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []model.Entry, names Names) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records(entries, names)); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes entries as a YAML sequence.
func WriteYAML(w io.Writer, entries []model.Entry, names Names) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records(entries, names)); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// WriteMarkdown writes entries as a bullet list under one heading per start
// day, in the order given.
func WriteMarkdown(w io.Writer, entries []model.Entry, names Names) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No entries found.")
		return err
	}

	var currentDay string
	for _, e := range entries {
		r := NewRecord(e, names)
		day := r.Start.Format("2006-01-02")
		if day != currentDay {
			prefix := "\n"
			if currentDay == "" {
				prefix = ""
			}
			if _, err := fmt.Fprintf(w, "%s## %s\n\n", prefix, day); err != nil {
				return err
			}
			currentDay = day
		}

		endStr, durStr := "ongoing", ""
		if r.End != nil {
			endStr = r.End.Format("15:04")
		}
		if r.DurationSeconds != nil {
			durStr = fmt.Sprintf(" (%s)", timecalc.FormatDuration(time.Duration(*r.DurationSeconds)*time.Second))
		}
		line := fmt.Sprintf("- %s–%s **%s**", r.Start.Format("15:04"), endStr, r.Project)
		if len(r.Tags) > 0 {
			line += " `" + strings.Join(r.Tags, "` `") + "`"
		}
		if r.Notes != "" {
			line += " " + strings.ReplaceAll(r.Notes, "\n", " ")
		}
		if _, err := fmt.Fprintln(w, line+durStr); err != nil {
			return err
		}
	}
	return nil
}
