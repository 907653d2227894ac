package msgraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/storage"
	"github.com/Tiliavir/trackmytime/internal/timecalc"
	"github.com/Tiliavir/trackmytime/internal/tracker"
)

// OutlookTag is attached to every imported entry.
const OutlookTag = "outlook"

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Updated  int
	Errors   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	DryRun bool
	// Project is the name of the project imported entries belong to.
	Project  string
	Timezone string
}

// Syncer imports calendar events into the repository.
type Syncer struct {
	Repo    storage.Repository
	Tracker *tracker.Service
	// Out receives one progress line per event.
	Out    io.Writer
	Logger *slog.Logger
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// buildNotes combines subject, bodyPreview and location, one per line.
func buildNotes(event CalendarEvent) string {
	parts := []string{}
	for _, p := range []string{event.Subject, event.BodyPreview, event.Location.DisplayName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	switch {
	case event.IsCancelled, event.IsAllDay:
		return true
	case event.Sensitivity == "private", event.ShowAs == "free":
		return true
	case event.Start.DateTime == "" || event.End.DateTime == "":
		return true
	}
	return false
}

// MapEventToEntry converts a Graph CalendarEvent into a closed entry of
// projectID carrying tagID. The entry has no id yet.
func MapEventToEntry(event CalendarEvent, timezone, projectID, tagID string) (model.Entry, error) {
	startTime, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing start time: %w", err)
	}
	endTime, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing end time: %w", err)
	}

	tags := []string{}
	if tagID != "" {
		tags = append(tags, tagID)
	}
	return model.Entry{
		ExternalID: event.ID,
		ProjectID:  projectID,
		TagIDs:     tags,
		Notes:      buildNotes(event),
		Start:      startTime,
		End:        &endTime,
		Source:     model.SourceOutlook,
	}, nil
}

// findByExternalID searches entries for one with the given external id.
func findByExternalID(entries []model.Entry, externalID string) *model.Entry {
	for i := range entries {
		if entries[i].ExternalID == externalID {
			return &entries[i]
		}
	}
	return nil
}

func unchanged(found, entry model.Entry) bool {
	return found.Notes == entry.Notes &&
		found.Start.Equal(entry.Start) &&
		found.End != nil && found.End.Equal(*entry.End)
}

// resolveCatalog returns the ids of the import project and the outlook tag,
// creating them unless this is a dry run.
func (s *Syncer) resolveCatalog(ctx context.Context, snap tracker.Snapshot, opts SyncOptions) (string, string, error) {
	var projectID, tagID string
	if p, ok := snap.Project(opts.Project); ok {
		projectID = p.ID
	} else if !opts.DryRun {
		p, err := s.Tracker.CreateProject(ctx, opts.Project, "Imported from Outlook")
		if err != nil {
			return "", "", fmt.Errorf("creating project %q: %w", opts.Project, err)
		}
		projectID = p.ID
	}
	if t, ok := snap.Tag(OutlookTag); ok {
		tagID = t.ID
	} else if !opts.DryRun {
		t, err := s.Tracker.CreateTag(ctx, OutlookTag, "#0078D4")
		if err != nil {
			return "", "", fmt.Errorf("creating tag %q: %w", OutlookTag, err)
		}
		tagID = t.ID
	}
	return projectID, tagID, nil
}

// Sync processes a slice of Graph events and persists them. Events already
// imported are matched by ExternalID and updated in place when they changed.
func (s *Syncer) Sync(ctx context.Context, events []CalendarEvent, opts SyncOptions) (SyncResult, error) {
	var result SyncResult
	out := s.Out
	if out == nil {
		out = io.Discard
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	snap, err := s.Tracker.Snapshot(ctx)
	if err != nil {
		return result, err
	}
	projectID, tagID, err := s.resolveCatalog(ctx, snap, opts)
	if err != nil {
		return result, err
	}
	entries := snap.Entries

	for _, event := range events {
		if shouldSkip(event) {
			logger.Debug("event filtered", "id", event.ID, "subject", event.Subject)
			continue
		}

		entry, err := MapEventToEntry(event, opts.Timezone, projectID, tagID)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}
		dur := ""
		if d, ok := entry.Duration(); ok {
			dur = fmt.Sprintf(" (%s)", timecalc.FormatDuration(d))
		}

		if found := findByExternalID(entries, event.ID); found != nil {
			if unchanged(*found, entry) {
				fmt.Fprintf(out, "  – Skipped:  %s (already exists)\n", event.Subject)
				result.Skipped++
				continue
			}
			// Keep the id and any user changes to project and tags.
			entry.ID = found.ID
			entry.ProjectID = found.ProjectID
			entry.TagIDs = found.TagIDs
			if !opts.DryRun {
				if err := s.Repo.Entries().Update(ctx, entry); err != nil {
					fmt.Fprintf(out, "  ! Error updating %q: %v\n", event.Subject, err)
					result.Errors++
					continue
				}
			}
			*found = entry
			fmt.Fprintf(out, "  ↑ Updated:  %s%s\n", event.Subject, dur)
			result.Updated++
			continue
		}

		entry.ID = uuid.New().String()
		if !opts.DryRun {
			if err := s.Repo.Entries().Insert(ctx, entry); err != nil {
				fmt.Fprintf(out, "  ! Error saving %q: %v\n", event.Subject, err)
				result.Errors++
				continue
			}
		}
		entries = append(entries, entry)
		fmt.Fprintf(out, "  ✓ Imported: %s%s\n", event.Subject, dur)
		result.Imported++
	}

	return result, nil
}
