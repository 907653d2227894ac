package tracker

import (
	"strings"

	"github.com/Tiliavir/trackmytime/internal/model"
)

// NoProject is shown for entries whose project is missing.
const NoProject = "No Project"

// Project resolves ref as an id, then as a case-insensitive name.
func (s Snapshot) Project(ref string) (model.Project, bool) {
	for _, p := range s.Projects {
		if p.ID == ref {
			return p, true
		}
	}
	for _, p := range s.Projects {
		if strings.EqualFold(p.Name, ref) {
			return p, true
		}
	}
	return model.Project{}, false
}

// Tag resolves ref as an id, then as a case-insensitive name.
func (s Snapshot) Tag(ref string) (model.Tag, bool) {
	for _, t := range s.Tags {
		if t.ID == ref {
			return t, true
		}
	}
	for _, t := range s.Tags {
		if strings.EqualFold(t.Name, ref) {
			return t, true
		}
	}
	return model.Tag{}, false
}

// Entry finds an entry by id or unique id prefix.
func (s Snapshot) Entry(ref string) (model.Entry, bool) {
	var found model.Entry
	n := 0
	for _, e := range s.Entries {
		if e.ID == ref {
			return e, true
		}
		if ref != "" && strings.HasPrefix(e.ID, ref) {
			found = e
			n++
		}
	}
	return found, n == 1
}

// ProjectName returns the project's name or NoProject.
func (s Snapshot) ProjectName(id string) string {
	for _, p := range s.Projects {
		if p.ID == id {
			return p.Name
		}
	}
	return NoProject
}

// TagNames maps tag ids to names, dropping ids without a tag.
func (s Snapshot) TagNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		for _, t := range s.Tags {
			if t.ID == id {
				names = append(names, t.Name)
				break
			}
		}
	}
	return names
}

// ResolveTags maps refs to tag ids. Unresolved refs are returned as-is so
// validation reports them.
func (s Snapshot) ResolveTags(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if t, ok := s.Tag(r); ok {
			out = append(out, t.ID)
		} else {
			out = append(out, r)
		}
	}
	return out
}
