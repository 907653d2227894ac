package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/storage"
)

func TestLoadDayNotExist(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	df, err := storage.LoadDay(base, day)
	if err != nil {
		t.Fatalf("LoadDay on missing file: %v", err)
	}
	if df.Date != "2026-02-27" {
		t.Errorf("LoadDay date = %q, want %q", df.Date, "2026-02-27")
	}
	if len(df.Entries) != 0 {
		t.Errorf("LoadDay entries = %d, want 0", len(df.Entries))
	}
}

func TestSaveDayAndLoadDay(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	df := model.DayFile{
		Date: "2026-02-27",
		Entries: []model.Entry{
			{
				ID:        "test-id-1",
				ProjectID: "ecm",
				TagIDs:    []string{},
				Start:     day,
				Source:    model.SourceManual,
			},
		},
	}

	if err := storage.SaveDay(base, day, df); err != nil {
		t.Fatalf("SaveDay: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "2026", "02", "27.json")); err != nil {
		t.Fatalf("day file not written: %v", err)
	}

	loaded, err := storage.LoadDay(base, day)
	if err != nil {
		t.Fatalf("LoadDay after save: %v", err)
	}
	if len(loaded.Entries) != 1 {
		t.Fatalf("LoadDay entries = %d, want 1", len(loaded.Entries))
	}
	if loaded.Entries[0].ProjectID != "ecm" {
		t.Errorf("LoadDay project = %q, want %q", loaded.Entries[0].ProjectID, "ecm")
	}
}

func TestSaveDayEmptyRemovesFile(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	df := model.DayFile{Date: "2026-02-27", Entries: []model.Entry{{ID: "x", Start: day}}}
	if err := storage.SaveDay(base, day, df); err != nil {
		t.Fatal(err)
	}
	df.Entries = nil
	if err := storage.SaveDay(base, day, df); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(base, "2026", "02", "27.json")); !os.IsNotExist(err) {
		t.Errorf("expected day file to be removed, stat err = %v", err)
	}
}

func TestLoadDayCorruptIsBackedUp(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	path := filepath.Join(base, "2026", "02", "27.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := storage.LoadDay(base, day)
	if err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}

	if _, err2 := os.Stat(path + ".corrupt"); os.IsNotExist(err2) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := storage.Open("csv", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
