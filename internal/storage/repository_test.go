package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/storage"
)

// backends runs fn against a fresh repository of every backend.
func backends(t *testing.T, fn func(t *testing.T, repo storage.Repository)) {
	for _, backend := range []string{storage.BackendJSON, storage.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			repo, err := storage.Open(backend, t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() { _ = repo.Close() })
			fn(t, repo)
		})
	}
}

func ids[T model.Record](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.RecordID())
	}
	return out
}

func TestProjectsCRUD(t *testing.T) {
	backends(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		projects := repo.Projects()

		list, err := projects.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		require.NoError(t, projects.Insert(ctx, model.Project{ID: "p1", Name: "Work", Details: "Client projects"}))
		require.NoError(t, projects.Insert(ctx, model.Project{ID: "p2", Name: "Personal"}))
		assert.ErrorIs(t, projects.Insert(ctx, model.Project{ID: "p1", Name: "Dup"}), storage.ErrExists)

		got, err := projects.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, model.Project{ID: "p1", Name: "Work", Details: "Client projects"}, got)

		require.NoError(t, projects.Update(ctx, model.Project{ID: "p1", Name: "Work (renamed)"}))
		got, err = projects.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Work (renamed)", got.Name)
		assert.Empty(t, got.Details)

		assert.ErrorIs(t, projects.Update(ctx, model.Project{ID: "nope"}), storage.ErrNotFound)

		list, err = projects.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2"}, ids(list))

		require.NoError(t, projects.Delete(ctx, "p1"))
		assert.ErrorIs(t, projects.Delete(ctx, "p1"), storage.ErrNotFound)
		_, err = projects.Get(ctx, "p1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestTagsCRUD(t *testing.T) {
	backends(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		tags := repo.Tags()

		require.NoError(t, tags.Insert(ctx, model.Tag{ID: "t1", Name: "Urgent", ColorHex: "#FF3B30"}))
		require.NoError(t, tags.Update(ctx, model.Tag{ID: "t1", Name: "Urgent!", ColorHex: "#00FF00"}))

		got, err := tags.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, model.Tag{ID: "t1", Name: "Urgent!", ColorHex: "#00FF00"}, got)

		require.NoError(t, tags.Delete(ctx, "t1"))
		list, err := tags.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestEntriesCRUD(t *testing.T) {
	backends(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		entries := repo.Entries()

		start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
		end := start.Add(90 * time.Minute)
		closed := model.Entry{
			ID:        "e1",
			ProjectID: "p1",
			TagIDs:    []string{"t2", "t1"},
			Notes:     "Sprint planning, part 1",
			Start:     start,
			End:       &end,
			Source:    model.SourceManual,
		}
		running := model.Entry{
			ID:        "e2",
			ProjectID: "p1",
			TagIDs:    []string{},
			Start:     start.Add(-26 * time.Hour),
			Source:    model.SourceManual,
		}

		require.NoError(t, entries.Insert(ctx, closed))
		require.NoError(t, entries.Insert(ctx, running))
		assert.ErrorIs(t, entries.Insert(ctx, closed), storage.ErrExists)

		got, err := entries.Get(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, closed.Notes, got.Notes)
		assert.Equal(t, []string{"t2", "t1"}, got.TagIDs)
		assert.True(t, got.Start.Equal(start))
		require.NotNil(t, got.End)
		assert.True(t, got.End.Equal(end))

		got, err = entries.Get(ctx, "e2")
		require.NoError(t, err)
		assert.True(t, got.Running())

		list, err := entries.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"e1", "e2"}, ids(list))

		_, err = entries.Get(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestEntryUpdateAcrossDays(t *testing.T) {
	backends(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		entries := repo.Entries()

		start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
		e := model.Entry{ID: "e1", ProjectID: "p1", TagIDs: []string{"t1"}, Start: start}
		require.NoError(t, entries.Insert(ctx, e))

		stop := start.Add(3 * 24 * time.Hour)
		e.Start = start.Add(48 * time.Hour)
		e.End = &stop
		e.TagIDs = []string{}
		require.NoError(t, entries.Update(ctx, e))

		got, err := entries.Get(ctx, "e1")
		require.NoError(t, err)
		assert.True(t, got.Start.Equal(e.Start))
		require.NotNil(t, got.End)
		assert.True(t, got.End.Equal(stop))
		assert.Empty(t, got.TagIDs)

		list, err := entries.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, entries.Delete(ctx, "e1"))
		assert.ErrorIs(t, entries.Delete(ctx, "e1"), storage.ErrNotFound)
		assert.ErrorIs(t, entries.Update(ctx, e), storage.ErrNotFound)
	})
}

func TestEntryUpdateAcrossDaysKeepsEntryOnFailure(t *testing.T) {
	base := t.TempDir()
	repo := storage.NewFileStore(base)
	ctx := context.Background()

	start := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)
	e := model.Entry{ID: "e1", ProjectID: "p1", Start: start}
	require.NoError(t, repo.Entries().Insert(ctx, e))

	target := filepath.Join(base, "entries", "2024", "06", "03.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("{bad"), 0o644))

	e.Start = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	require.Error(t, repo.Entries().Update(ctx, e))

	got, err := repo.Entries().Get(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, got.Start.Equal(start))
}

func TestFileStoreDayLayout(t *testing.T) {
	base := t.TempDir()
	repo := storage.NewFileStore(base)
	ctx := context.Background()

	start := time.Date(2026, 2, 27, 23, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Entries().Insert(ctx, model.Entry{ID: "late", Start: start}))

	df, err := storage.LoadDay(filepath.Join(base, "entries"), start)
	require.NoError(t, err)
	require.Len(t, df.Entries, 1)
	assert.Equal(t, "late", df.Entries[0].ID)
	assert.Equal(t, "2026-02-27", df.Date)
}
