package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trackmytime/internal/aggregate"
	"github.com/Tiliavir/trackmytime/internal/model"
)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func closed(id string, start, end time.Time) model.Entry {
	return model.Entry{ID: id, ProjectID: "P1", Start: start, End: &end}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseWindow(t *testing.T) {
	for _, w := range []aggregate.Window{aggregate.Week, aggregate.Month, aggregate.ThreeMonths, aggregate.All} {
		got, err := aggregate.ParseWindow(w.String())
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	got, err := aggregate.ParseWindow(" Month ")
	require.NoError(t, err)
	assert.Equal(t, aggregate.Month, got)

	_, err = aggregate.ParseWindow("year")
	assert.Error(t, err)
}

func TestWeekWithoutEntries(t *testing.T) {
	now := at(2024, 6, 10, 12, 0)

	series := aggregate.Aggregate(nil, aggregate.Week, now)

	require.Len(t, series, 7)
	assert.Equal(t, day(2024, 6, 4), series[0].Day)
	assert.Equal(t, day(2024, 6, 10), series[6].Day)
	for _, d := range series {
		assert.Zero(t, d.Seconds)
	}
	assert.Zero(t, aggregate.Total(series))
}

func TestEntryAcrossMidnightIsSplit(t *testing.T) {
	now := at(2024, 6, 10, 12, 0)
	e := closed("e", at(2024, 6, 7, 23, 0), at(2024, 6, 8, 1, 0))

	series := aggregate.Aggregate([]model.Entry{e}, aggregate.Week, now)

	byDay := map[time.Time]float64{}
	for _, d := range series {
		byDay[d.Day] = d.Seconds
	}
	assert.Equal(t, 3600.0, byDay[day(2024, 6, 7)])
	assert.Equal(t, 3600.0, byDay[day(2024, 6, 8)])
	assert.Equal(t, 7200.0, aggregate.Total(series))
}

func TestAllWindowSpansEarliestEntry(t *testing.T) {
	now := at(2024, 3, 5, 10, 0)
	entries := []model.Entry{
		closed("b", at(2024, 3, 1, 9, 0), at(2024, 3, 1, 10, 0)),
		closed("a", at(2024, 1, 1, 9, 0), at(2024, 1, 1, 9, 30)),
	}

	series := aggregate.Aggregate(entries, aggregate.All, now)

	require.NotEmpty(t, series)
	assert.Equal(t, day(2024, 1, 1), series[0].Day)
	assert.Equal(t, day(2024, 3, 5), series[len(series)-1].Day)
	// 31 days in January, 29 in February 2024, 5 in March.
	assert.Len(t, series, 31+29+5)
	assert.Equal(t, 5400.0, aggregate.Total(series))
}

func TestAllWindowWithoutEntriesIsToday(t *testing.T) {
	now := at(2024, 3, 5, 10, 0)

	series := aggregate.Aggregate(nil, aggregate.All, now)

	require.Len(t, series, 1)
	assert.Equal(t, day(2024, 3, 5), series[0].Day)
	assert.Zero(t, series[0].Seconds)
}

func TestMonthWindows(t *testing.T) {
	now := at(2024, 3, 31, 8, 0)

	start, end := aggregate.Bounds(nil, aggregate.Month, now)
	assert.Equal(t, day(2024, 2, 29), start)
	assert.Equal(t, now, end)

	start, _ = aggregate.Bounds(nil, aggregate.ThreeMonths, now)
	assert.Equal(t, day(2023, 12, 31), start)

	series := aggregate.Aggregate(nil, aggregate.Month, now)
	assert.Len(t, series, 32)
}

func TestBucketsAreContiguous(t *testing.T) {
	now := at(2024, 6, 10, 12, 0)
	for _, w := range []aggregate.Window{aggregate.Week, aggregate.Month, aggregate.ThreeMonths} {
		series := aggregate.Aggregate(nil, w, now)
		start, end := aggregate.Bounds(nil, w, now)

		require.NotEmpty(t, series, w.String())
		assert.Equal(t, start, series[0].Day, w.String())
		assert.Equal(t, day(end.Year(), end.Month(), end.Day()), series[len(series)-1].Day, w.String())
		for i := 1; i < len(series); i++ {
			assert.Equal(t, series[i-1].Day.AddDate(0, 0, 1), series[i].Day, w.String())
		}
	}
}

func TestEntryClippedToWindow(t *testing.T) {
	now := at(2024, 6, 10, 12, 0)
	// Starts two days before the week window opens on June 4.
	e := closed("e", at(2024, 6, 2, 0, 0), at(2024, 6, 4, 6, 0))

	series := aggregate.Aggregate([]model.Entry{e}, aggregate.Week, now)

	assert.Equal(t, 6*3600.0, series[0].Seconds)
	assert.Equal(t, 6*3600.0, aggregate.Total(series))
}

func TestMultiDayEntryConservesSeconds(t *testing.T) {
	now := at(2024, 6, 10, 12, 0)
	start := at(2024, 6, 5, 17, 45)
	end := at(2024, 6, 8, 3, 15)
	e := closed("e", start, end)

	series := aggregate.Aggregate([]model.Entry{e}, aggregate.Week, now)

	assert.Equal(t, end.Sub(start).Seconds(), aggregate.Total(series))
	nonZero := 0
	for _, d := range series {
		assert.LessOrEqual(t, d.Seconds, 86400.0)
		if d.Seconds > 0 {
			nonZero++
		}
	}
	assert.Equal(t, 4, nonZero)
}

func TestRunningEntryCreditedUntilNow(t *testing.T) {
	now := at(2024, 6, 10, 12, 0)
	e := model.Entry{ID: "run", Start: at(2024, 6, 10, 9, 30)}

	series := aggregate.Aggregate([]model.Entry{e}, aggregate.Week, now)

	assert.Equal(t, 2.5*3600, series[len(series)-1].Seconds)
	assert.Equal(t, 2.5*3600, aggregate.Total(series))
}

func TestEntriesOutsideWindowIgnored(t *testing.T) {
	now := at(2024, 6, 10, 12, 0)
	entries := []model.Entry{
		closed("old", at(2024, 5, 1, 9, 0), at(2024, 5, 1, 10, 0)),
		closed("future", at(2024, 6, 10, 13, 0), at(2024, 6, 10, 14, 0)),
		{ID: "future-running", Start: at(2024, 6, 11, 8, 0)},
	}

	series := aggregate.Aggregate(entries, aggregate.Week, now)

	assert.Zero(t, aggregate.Total(series))
}

func TestEntryEndingBeforeStartContributesNothing(t *testing.T) {
	now := at(2024, 6, 10, 12, 0)
	e := closed("bad", at(2024, 6, 9, 10, 0), at(2024, 6, 9, 8, 0))

	series := aggregate.Aggregate([]model.Entry{e}, aggregate.Week, now)

	for _, d := range series {
		assert.GreaterOrEqual(t, d.Seconds, 0.0)
	}
	assert.Zero(t, aggregate.Total(series))
}

func TestDaysFollowNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, loc)
	// 22:30 UTC on June 8 is 00:30 on June 9 in UTC+2.
	start := time.Date(2024, 6, 8, 22, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	e := model.Entry{ID: "e", Start: start, End: &end}

	series := aggregate.Aggregate([]model.Entry{e}, aggregate.Week, now)

	for _, d := range series {
		if d.Day.Day() == 9 {
			assert.Equal(t, 3600.0, d.Seconds)
		} else {
			assert.Zero(t, d.Seconds, d.Day.String())
		}
	}
}

func TestByProject(t *testing.T) {
	now := at(2024, 6, 10, 12, 0)
	entries := []model.Entry{
		{ID: "a", ProjectID: "P1", Start: at(2024, 6, 9, 9, 0), End: ptr(at(2024, 6, 9, 10, 0))},
		{ID: "b", ProjectID: "P2", Start: at(2024, 6, 9, 9, 0), End: ptr(at(2024, 6, 9, 12, 0))},
		{ID: "c", ProjectID: "P1", Start: at(2024, 6, 10, 9, 0), End: ptr(at(2024, 6, 10, 9, 30))},
		{ID: "d", Start: at(2024, 6, 10, 11, 0)},
	}

	totals := aggregate.ByProject(entries, aggregate.Week, now)

	require.Len(t, totals, 3)
	assert.Equal(t, aggregate.ProjectTotal{ProjectID: "P2", Seconds: 3 * 3600}, totals[0])
	assert.Equal(t, aggregate.ProjectTotal{ProjectID: "P1", Seconds: 1.5 * 3600}, totals[1])
	assert.Equal(t, aggregate.ProjectTotal{ProjectID: "", Seconds: 3600}, totals[2])
}

func ptr(t time.Time) *time.Time { return &t }
