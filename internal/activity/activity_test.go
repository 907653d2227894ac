package activity_test

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trackmytime/internal/activity"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileIndicatorLifecycle(t *testing.T) {
	ind := activity.NewFileIndicator(t.TempDir(), quiet())
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

	ind.Start("e1", start)
	active, err := ind.Active()
	require.NoError(t, err)
	require.Contains(t, active, "e1")
	assert.True(t, active["e1"].Start.Equal(start))
	assert.Equal(t, activity.DeepLink, active["e1"].DeepLink)

	// A second start for the same entry keeps the original state.
	ind.Start("e1", start.Add(time.Hour))
	active, err = ind.Active()
	require.NoError(t, err)
	assert.True(t, active["e1"].Start.Equal(start))

	moved := start.Add(-15 * time.Minute)
	ind.Update("e1", moved)
	active, err = ind.Active()
	require.NoError(t, err)
	assert.True(t, active["e1"].Start.Equal(moved))

	ind.End("e1")
	active, err = ind.Active()
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = os.Stat(ind.Path)
	assert.True(t, os.IsNotExist(err), "indicator file should be removed when nothing runs")
}

func TestFileIndicatorUnknownEntry(t *testing.T) {
	ind := activity.NewFileIndicator(t.TempDir(), quiet())

	ind.Update("ghost", time.Now())
	ind.End("ghost")

	active, err := ind.Active()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestFileIndicatorRecoversFromCorruptFile(t *testing.T) {
	ind := activity.NewFileIndicator(t.TempDir(), quiet())
	require.NoError(t, os.WriteFile(ind.Path, []byte("{nope"), 0o600))

	ind.Start("e1", time.Now())

	active, err := ind.Active()
	require.NoError(t, err)
	assert.Contains(t, active, "e1")
}
