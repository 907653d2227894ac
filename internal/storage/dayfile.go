package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Tiliavir/trackmytime/internal/model"
)

// dayFilePattern matches every day file below the entries directory.
const dayFilePattern = "[0-9][0-9][0-9][0-9]/[0-9][0-9]/[0-9][0-9].json"

// dayFilePath returns the path for the given date's JSON file.
func dayFilePath(base string, t time.Time) string {
	return filepath.Join(base, t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

// LoadDay loads the DayFile for the given date. Returns an empty DayFile if not found.
func LoadDay(base string, t time.Time) (model.DayFile, error) {
	return loadDayFile(dayFilePath(base, t), t.Format("2006-01-02"))
}

func loadDayFile(path, date string) (model.DayFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DayFile{Date: date, Entries: []model.Entry{}}, nil
	}
	if err != nil {
		return model.DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// SaveDay atomically writes a DayFile for the given date. An empty day
// removes the file.
func SaveDay(base string, t time.Time, df model.DayFile) error {
	path := dayFilePath(base, t)
	if len(df.Entries) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage error removing %s: %w", path, err)
		}
		return nil
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	return writeAtomic(path, data)
}

// dayFiles lists the day files below base in chronological order.
func dayFiles(base string) ([]string, error) {
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(base), dayFilePattern)
	if err != nil {
		return nil, fmt.Errorf("storage error scanning %s: %w", base, err)
	}
	sort.Strings(matches)
	for i, m := range matches {
		matches[i] = filepath.Join(base, filepath.FromSlash(m))
	}
	return matches, nil
}

// dayFileEntries stores each entry in the day file of its start date,
// interpreted in the start's own location.
type dayFileEntries struct {
	base string
}

func (d *dayFileEntries) List(ctx context.Context) ([]model.Entry, error) {
	files, err := dayFiles(d.base)
	if err != nil {
		return nil, err
	}
	entries := []model.Entry{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		df, err := loadDayFile(path, "")
		if err != nil {
			return nil, err
		}
		entries = append(entries, df.Entries...)
	}
	return entries, nil
}

// find locates the day holding id.
func (d *dayFileEntries) find(ctx context.Context, id string) (model.DayFile, time.Time, int, error) {
	files, err := dayFiles(d.base)
	if err != nil {
		return model.DayFile{}, time.Time{}, -1, err
	}
	for i := len(files) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return model.DayFile{}, time.Time{}, -1, err
		}
		df, err := loadDayFile(files[i], "")
		if err != nil {
			return model.DayFile{}, time.Time{}, -1, err
		}
		for j, e := range df.Entries {
			if e.ID == id {
				return df, e.Start, j, nil
			}
		}
	}
	return model.DayFile{}, time.Time{}, -1, fmt.Errorf("entry %s: %w", id, ErrNotFound)
}

func (d *dayFileEntries) Get(ctx context.Context, id string) (model.Entry, error) {
	df, _, i, err := d.find(ctx, id)
	if err != nil {
		return model.Entry{}, err
	}
	return df.Entries[i], nil
}

func (d *dayFileEntries) Insert(ctx context.Context, e model.Entry) error {
	_, _, _, err := d.find(ctx, e.ID)
	if err == nil {
		return fmt.Errorf("entry %s: %w", e.ID, ErrExists)
	}
	if !isNotFound(err) {
		return err
	}
	return d.put(e)
}

func (d *dayFileEntries) Update(ctx context.Context, e model.Entry) error {
	df, day, i, err := d.find(ctx, e.ID)
	if err != nil {
		return err
	}
	if dayFilePath(d.base, day) == dayFilePath(d.base, e.Start) {
		df.Entries[i] = e
		return SaveDay(d.base, day, df)
	}
	// Start moved to another day. Write the new copy before dropping the old
	// one so a failed write never loses the entry.
	if err := d.put(e); err != nil {
		return err
	}
	df.Entries = append(df.Entries[:i], df.Entries[i+1:]...)
	return SaveDay(d.base, day, df)
}

func (d *dayFileEntries) Delete(ctx context.Context, id string) error {
	df, day, i, err := d.find(ctx, id)
	if err != nil {
		return err
	}
	df.Entries = append(df.Entries[:i], df.Entries[i+1:]...)
	return SaveDay(d.base, day, df)
}

// put replaces or appends e in the day file of its start.
func (d *dayFileEntries) put(e model.Entry) error {
	df, err := LoadDay(d.base, e.Start)
	if err != nil {
		return err
	}
	if df.Date == "" {
		df.Date = e.Start.Format("2006-01-02")
	}
	for i, existing := range df.Entries {
		if existing.ID == e.ID {
			df.Entries[i] = e
			return SaveDay(d.base, e.Start, df)
		}
	}
	df.Entries = append(df.Entries, e)
	return SaveDay(d.base, e.Start, df)
}
