package tracker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Tiliavir/trackmytime/internal/model"
)

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

func cleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrNameRequired
	}
	return trimmed, nil
}

// NormalizeColor returns c as upper-case "#RRGGBB". Empty stays empty.
func NormalizeColor(c string) (string, error) {
	c = strings.TrimSpace(c)
	if c == "" {
		return "", nil
	}
	m := hexColor.FindStringSubmatch(c)
	if m == nil {
		return "", fmt.Errorf("%q: %w", c, ErrInvalidColor)
	}
	return "#" + strings.ToUpper(m[1]), nil
}

// CreateProject adds a project. The name is trimmed and must not be empty.
func (s *Service) CreateProject(ctx context.Context, name, details string) (model.Project, error) {
	name, err := cleanName(name)
	if err != nil {
		return model.Project{}, err
	}
	p := model.Project{ID: s.newID(), Name: name, Details: strings.TrimSpace(details)}
	if err := s.repo.Projects().Insert(ctx, p); err != nil {
		return model.Project{}, fmt.Errorf("saving project: %w", err)
	}
	s.logger.Debug("project created", "id", p.ID, "name", p.Name)
	return p, nil
}

// EditProject renames a project and replaces its description.
func (s *Service) EditProject(ctx context.Context, id, name, details string) (model.Project, error) {
	name, err := cleanName(name)
	if err != nil {
		return model.Project{}, err
	}
	p, err := s.repo.Projects().Get(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	p.Name = name
	p.Details = strings.TrimSpace(details)
	if err := s.repo.Projects().Update(ctx, p); err != nil {
		return model.Project{}, fmt.Errorf("saving project: %w", err)
	}
	return p, nil
}

// DeleteOptions controls what happens to a deleted project's entries.
// With an empty ReassignTo they are deleted too.
type DeleteOptions struct {
	ReassignTo string
}

// DeleteProject removes a project and either deletes or reassigns its
// entries. It returns the number of affected entries.
func (s *Service) DeleteProject(ctx context.Context, id string, opts DeleteOptions) (int, error) {
	if _, err := s.repo.Projects().Get(ctx, id); err != nil {
		return 0, err
	}
	if opts.ReassignTo != "" {
		if opts.ReassignTo == id {
			return 0, ErrSameProject
		}
		if _, err := s.repo.Projects().Get(ctx, opts.ReassignTo); err != nil {
			return 0, fmt.Errorf("reassign target: %w", err)
		}
	}

	entries, err := s.repo.Entries().List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing entries: %w", err)
	}
	affected := 0
	for _, e := range entries {
		if e.ProjectID != id {
			continue
		}
		if opts.ReassignTo != "" {
			e.ProjectID = opts.ReassignTo
			err = s.repo.Entries().Update(ctx, e)
		} else {
			err = s.repo.Entries().Delete(ctx, e.ID)
			if err == nil && e.Running() {
				s.notifier.End(e.ID)
			}
		}
		if err != nil {
			return affected, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		affected++
	}

	if err := s.repo.Projects().Delete(ctx, id); err != nil {
		return affected, fmt.Errorf("deleting project: %w", err)
	}
	s.logger.Debug("project deleted", "id", id, "entries", affected, "reassigned_to", opts.ReassignTo)
	return affected, nil
}

// CreateTag adds a tag with an optional colour.
func (s *Service) CreateTag(ctx context.Context, name, color string) (model.Tag, error) {
	name, err := cleanName(name)
	if err != nil {
		return model.Tag{}, err
	}
	color, err = NormalizeColor(color)
	if err != nil {
		return model.Tag{}, err
	}
	t := model.Tag{ID: s.newID(), Name: name, ColorHex: color}
	if err := s.repo.Tags().Insert(ctx, t); err != nil {
		return model.Tag{}, fmt.Errorf("saving tag: %w", err)
	}
	return t, nil
}

// EditTag renames a tag. An empty color keeps the current one.
func (s *Service) EditTag(ctx context.Context, id, name, color string) (model.Tag, error) {
	name, err := cleanName(name)
	if err != nil {
		return model.Tag{}, err
	}
	color, err = NormalizeColor(color)
	if err != nil {
		return model.Tag{}, err
	}
	t, err := s.repo.Tags().Get(ctx, id)
	if err != nil {
		return model.Tag{}, err
	}
	t.Name = name
	if color != "" {
		t.ColorHex = color
	}
	if err := s.repo.Tags().Update(ctx, t); err != nil {
		return model.Tag{}, fmt.Errorf("saving tag: %w", err)
	}
	return t, nil
}

// DeleteTag removes the tag from every entry carrying it, then deletes it.
func (s *Service) DeleteTag(ctx context.Context, id string) (int, error) {
	if _, err := s.repo.Tags().Get(ctx, id); err != nil {
		return 0, err
	}
	entries, err := s.repo.Entries().List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing entries: %w", err)
	}
	affected := 0
	for _, e := range entries {
		if !e.HasTag(id) {
			continue
		}
		kept := make([]string, 0, len(e.TagIDs))
		for _, t := range e.TagIDs {
			if t != id {
				kept = append(kept, t)
			}
		}
		e.TagIDs = kept
		if err := s.repo.Entries().Update(ctx, e); err != nil {
			return affected, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		affected++
	}
	if err := s.repo.Tags().Delete(ctx, id); err != nil {
		return affected, fmt.Errorf("deleting tag: %w", err)
	}
	return affected, nil
}
