// Package filter selects and orders entries for display.
package filter

import (
	"sort"

	"github.com/Tiliavir/trackmytime/internal/model"
)

// Criteria narrows and orders a Select call. Empty ids match everything.
type Criteria struct {
	ProjectID   string
	TagID       string
	NewestFirst bool
}

// Matches reports whether e passes the project and tag filters of c.
func (c Criteria) Matches(e model.Entry) bool {
	if c.ProjectID != "" && e.ProjectID != c.ProjectID {
		return false
	}
	if c.TagID != "" && !e.HasTag(c.TagID) {
		return false
	}
	return true
}

// Select returns the entries matching c ordered by start time. Entries with
// identical starts keep their input order. entries itself is not modified.
func Select(entries []model.Entry, c Criteria) []model.Entry {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c.NewestFirst {
			return out[i].Start.After(out[j].Start)
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Running returns the entries without an end, newest first.
func Running(entries []model.Entry) []model.Entry {
	var running []model.Entry
	for _, e := range entries {
		if e.Running() {
			running = append(running, e)
		}
	}
	return Select(running, Criteria{NewestFirst: true})
}
