// Package activity publishes the "timer running" indicator for entries.
package activity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DeepLink is stored with every activity so indicators can open the running view.
const DeepLink = "tmt://running"

// Notifier receives running-entry lifecycle events. Implementations must not
// fail the caller; problems are logged.
type Notifier interface {
	Start(entryID string, start time.Time)
	Update(entryID string, start time.Time)
	End(entryID string)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Start(string, time.Time)  {}
func (Nop) Update(string, time.Time) {}
func (Nop) End(string)               {}

// State is one running activity as written to the indicator file.
type State struct {
	Start    time.Time `json:"start"`
	DeepLink string    `json:"deeplink"`
}

// IndicatorFile is the JSON document kept at FileIndicator.Path.
type IndicatorFile struct {
	Activities map[string]State `json:"activities"`
}

// FileIndicator mirrors running entries into a JSON file that status bars
// (tmux, waybar, ...) can poll or watch.
type FileIndicator struct {
	Path   string
	Logger *slog.Logger

	mu sync.Mutex
}

// NewFileIndicator returns an indicator writing to dir/running.json.
func NewFileIndicator(dir string, logger *slog.Logger) *FileIndicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileIndicator{Path: filepath.Join(dir, "running.json"), Logger: logger}
}

// Start records a new activity. Starting an id that is already active is a no-op.
func (f *FileIndicator) Start(entryID string, start time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		f.Logger.Error("activity start failed", "entry", entryID, "error", err)
		return
	}
	if _, ok := doc.Activities[entryID]; ok {
		f.Logger.Debug("activity already running", "entry", entryID)
		return
	}
	doc.Activities[entryID] = State{Start: start, DeepLink: DeepLink}
	if err := f.save(doc); err != nil {
		f.Logger.Error("activity start failed", "entry", entryID, "error", err)
		return
	}
	f.Logger.Info("activity started", "entry", entryID, "start", start.Format(time.RFC3339))
}

// Update changes the start of an active activity.
func (f *FileIndicator) Update(entryID string, start time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		f.Logger.Error("activity update failed", "entry", entryID, "error", err)
		return
	}
	if _, ok := doc.Activities[entryID]; !ok {
		f.Logger.Warn("no active activity to update", "entry", entryID)
		return
	}
	doc.Activities[entryID] = State{Start: start, DeepLink: DeepLink}
	if err := f.save(doc); err != nil {
		f.Logger.Error("activity update failed", "entry", entryID, "error", err)
		return
	}
	f.Logger.Info("activity updated", "entry", entryID, "start", start.Format(time.RFC3339))
}

// End removes an activity.
func (f *FileIndicator) End(entryID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		f.Logger.Error("activity end failed", "entry", entryID, "error", err)
		return
	}
	if _, ok := doc.Activities[entryID]; !ok {
		f.Logger.Warn("no active activity to end", "entry", entryID)
		return
	}
	delete(doc.Activities, entryID)
	if err := f.save(doc); err != nil {
		f.Logger.Error("activity end failed", "entry", entryID, "error", err)
		return
	}
	f.Logger.Info("activity ended", "entry", entryID)
}

// Active returns the activities currently recorded in the file.
func (f *FileIndicator) Active() (map[string]State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	return doc.Activities, nil
}

func (f *FileIndicator) load() (IndicatorFile, error) {
	doc := IndicatorFile{Activities: map[string]State{}}
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		// A broken indicator is rebuilt from scratch.
		f.Logger.Warn("resetting corrupt indicator file", "path", f.Path, "error", err)
		return IndicatorFile{Activities: map[string]State{}}, nil
	}
	if doc.Activities == nil {
		doc.Activities = map[string]State{}
	}
	return doc, nil
}

func (f *FileIndicator) save(doc IndicatorFile) error {
	if len(doc.Activities) == 0 {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", f.Path, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating indicator directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling indicator: %w", err)
	}
	tmpPath := f.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing indicator: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving indicator: %w", err)
	}
	return nil
}
