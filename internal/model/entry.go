package model

import "time"

// Source values for Entry.Source.
const (
	SourceManual  = "manual"
	SourceOutlook = "outlook"
)

// Entry represents a single tracked time interval.
type Entry struct {
	ID         string     `json:"id" yaml:"id"`
	ProjectID  string     `json:"project_id" yaml:"project_id"`
	TagIDs     []string   `json:"tag_ids" yaml:"tag_ids"`
	Notes      string     `json:"notes" yaml:"notes"`
	Start      time.Time  `json:"start" yaml:"start"`
	End        *time.Time `json:"end" yaml:"end"`
	ExternalID string     `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Source     string     `json:"source" yaml:"source"`
}

// RecordID returns the entry's id.
func (e Entry) RecordID() string { return e.ID }

// Running reports whether the entry has no recorded end.
func (e Entry) Running() bool {
	return e.End == nil
}

// Duration returns End - Start. The second result is false for running entries.
func (e Entry) Duration() (time.Duration, bool) {
	if e.End == nil {
		return 0, false
	}
	return e.End.Sub(e.Start), true
}

// HasTag reports whether id is among the entry's tags.
func (e Entry) HasTag(id string) bool {
	for _, t := range e.TagIDs {
		if t == id {
			return true
		}
	}
	return false
}

// DayFile is the top-level structure stored in each daily JSON file.
type DayFile struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}
