package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/trackmytime/internal/filter"
	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/storage"
)

// EntryInput carries the editable fields of an entry form. A nil End
// leaves the entry running.
type EntryInput struct {
	ProjectID string
	TagIDs    []string
	Notes     string
	Start     time.Time
	End       *time.Time
}

// validate resolves the project and tags referenced by in and returns the
// deduplicated tag ids.
func (s *Service) validate(ctx context.Context, in EntryInput) ([]string, error) {
	if in.ProjectID == "" {
		projects, err := s.repo.Projects().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		if len(projects) == 0 {
			return nil, ErrNoProjects
		}
		return nil, ErrProjectRequired
	}
	if _, err := s.repo.Projects().Get(ctx, in.ProjectID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", in.ProjectID, ErrUnknownProject)
		}
		return nil, err
	}
	if in.End != nil && !in.End.After(in.Start) {
		return nil, ErrEndBeforeStart
	}

	tagIDs := make([]string, 0, len(in.TagIDs))
	seen := make(map[string]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seen[id] {
			continue
		}
		if _, err := s.repo.Tags().Get(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", id, ErrUnknownTag)
			}
			return nil, err
		}
		seen[id] = true
		tagIDs = append(tagIDs, id)
	}
	return tagIDs, nil
}

// Start begins a new running entry at the current time. Entries that were
// running before are stopped once the new entry is saved, and returned.
func (s *Service) Start(ctx context.Context, in EntryInput) (model.Entry, []model.Entry, error) {
	now := s.clock.Now()
	in.Start = now
	in.End = nil
	tagIDs, err := s.validate(ctx, in)
	if err != nil {
		return model.Entry{}, nil, err
	}

	entries, err := s.repo.Entries().List(ctx)
	if err != nil {
		return model.Entry{}, nil, fmt.Errorf("listing entries: %w", err)
	}
	running := filter.Running(entries)

	e := model.Entry{
		ID:        s.newID(),
		ProjectID: in.ProjectID,
		TagIDs:    tagIDs,
		Notes:     strings.TrimSpace(in.Notes),
		Start:     now,
		Source:    model.SourceManual,
	}
	if err := s.repo.Entries().Insert(ctx, e); err != nil {
		return model.Entry{}, nil, fmt.Errorf("saving entry: %w", err)
	}

	stopped := make([]model.Entry, 0, len(running))
	for _, r := range running {
		done, err := s.Stop(ctx, r.ID)
		if err != nil {
			return e, stopped, err
		}
		stopped = append(stopped, done)
	}
	s.notifier.Start(e.ID, e.Start)
	s.logger.Debug("entry started", "id", e.ID, "project", e.ProjectID)
	return e, stopped, nil
}

// Stop ends the running entry id at the current time.
func (s *Service) Stop(ctx context.Context, id string) (model.Entry, error) {
	e, err := s.repo.Entries().Get(ctx, id)
	if err != nil {
		return model.Entry{}, err
	}
	if !e.Running() {
		return model.Entry{}, fmt.Errorf("%s: %w", id, ErrNotRunning)
	}
	now := s.clock.Now()
	if now.Before(e.Start) {
		now = e.Start
	}
	e.End = &now
	if err := s.repo.Entries().Update(ctx, e); err != nil {
		return model.Entry{}, fmt.Errorf("saving entry: %w", err)
	}
	s.notifier.End(e.ID)
	s.logger.Debug("entry stopped", "id", e.ID)
	return e, nil
}

// StopRunning stops every running entry, newest first.
func (s *Service) StopRunning(ctx context.Context) ([]model.Entry, error) {
	entries, err := s.repo.Entries().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	running := filter.Running(entries)
	if len(running) == 0 {
		return nil, ErrNoRunningEntry
	}
	stopped := make([]model.Entry, 0, len(running))
	for _, e := range running {
		done, err := s.Stop(ctx, e.ID)
		if err != nil {
			return stopped, err
		}
		stopped = append(stopped, done)
	}
	return stopped, nil
}

// AddEntry records an entry with explicit times, typically a closed one
// entered after the fact.
func (s *Service) AddEntry(ctx context.Context, in EntryInput) (model.Entry, error) {
	tagIDs, err := s.validate(ctx, in)
	if err != nil {
		return model.Entry{}, err
	}
	e := model.Entry{
		ID:        s.newID(),
		ProjectID: in.ProjectID,
		TagIDs:    tagIDs,
		Notes:     strings.TrimSpace(in.Notes),
		Start:     in.Start,
		End:       in.End,
		Source:    model.SourceManual,
	}
	if err := s.repo.Entries().Insert(ctx, e); err != nil {
		return model.Entry{}, fmt.Errorf("saving entry: %w", err)
	}
	if e.Running() {
		s.notifier.Start(e.ID, e.Start)
	}
	return e, nil
}

// EditEntry replaces the editable fields of entry id and keeps the running
// indicator in step with the change.
func (s *Service) EditEntry(ctx context.Context, id string, in EntryInput) (model.Entry, error) {
	prev, err := s.repo.Entries().Get(ctx, id)
	if err != nil {
		return model.Entry{}, err
	}
	tagIDs, err := s.validate(ctx, in)
	if err != nil {
		return model.Entry{}, err
	}

	e := prev
	e.ProjectID = in.ProjectID
	e.TagIDs = tagIDs
	e.Notes = strings.TrimSpace(in.Notes)
	e.Start = in.Start
	e.End = in.End
	if err := s.repo.Entries().Update(ctx, e); err != nil {
		return model.Entry{}, fmt.Errorf("saving entry: %w", err)
	}

	switch {
	case prev.Running() && e.Running():
		if !prev.Start.Equal(e.Start) {
			s.notifier.Update(e.ID, e.Start)
		}
	case prev.Running():
		s.notifier.End(e.ID)
	case e.Running():
		s.notifier.Start(e.ID, e.Start)
	}
	return e, nil
}

// DeleteEntry removes entry id.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	e, err := s.repo.Entries().Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Entries().Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if e.Running() {
		s.notifier.End(id)
	}
	return nil
}
