// Package aggregate buckets tracked time into calendar days for charts.
//
// Days are taken from the location of the reference instant passed as now,
// so callers control the calendar by choosing now.Location().
package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/timecalc"
)

// Window selects the date range covered by Aggregate.
type Window int

const (
	Week Window = iota
	Month
	ThreeMonths
	All
)

var windowNames = map[Window]string{
	Week:        "week",
	Month:       "month",
	ThreeMonths: "3months",
	All:         "all",
}

func (w Window) String() string {
	if s, ok := windowNames[w]; ok {
		return s
	}
	return fmt.Sprintf("Window(%d)", int(w))
}

// ParseWindow parses "week", "month", "3months" or "all" (case-insensitive).
func ParseWindow(s string) (Window, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for w, n := range windowNames {
		if n == name {
			return w, nil
		}
	}
	return Week, fmt.Errorf("unknown window %q (want week, month, 3months or all)", s)
}

// DayTotal is the tracked time credited to one calendar day.
type DayTotal struct {
	Day     time.Time
	Seconds float64
}

// Bounds resolves w into the instants [start, end] relative to now.
func Bounds(entries []model.Entry, w Window, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	switch w {
	case Month:
		return timecalc.StartOfDay(timecalc.AddMonths(now, -1)), now
	case ThreeMonths:
		return timecalc.StartOfDay(timecalc.AddMonths(now, -3)), now
	case All:
		if len(entries) == 0 {
			return timecalc.StartOfDay(now), now
		}
		first := entries[0].Start
		for _, e := range entries[1:] {
			if e.Start.Before(first) {
				first = e.Start
			}
		}
		return timecalc.StartOfDay(first.In(loc)), now
	default:
		return timecalc.StartOfDay(now.AddDate(0, 0, -6)), now
	}
}

// Aggregate credits every entry's overlap with the window to the calendar
// days it touches. The result holds one DayTotal per day from the window's
// first day through now's day, ascending and without gaps. Running entries
// count up to now; entries ending before they start contribute nothing.
func Aggregate(entries []model.Entry, w Window, now time.Time) []DayTotal {
	start, end := Bounds(entries, w, now)
	loc := now.Location()

	var days []DayTotal
	index := make(map[dayKey]int)
	last := timecalc.StartOfDay(end.In(loc))
	for d := timecalc.StartOfDay(start.In(loc)); !d.After(last); d = timecalc.NextDay(d) {
		index[keyOf(d)] = len(days)
		days = append(days, DayTotal{Day: d})
	}

	for _, e := range entries {
		entryEnd := now
		if e.End != nil {
			entryEnd = *e.End
		}
		if entryEnd.Before(start) || e.Start.After(end) {
			continue
		}

		from := latest(e.Start, start).In(loc)
		to := earliest(entryEnd, end).In(loc)
		if !from.Before(to) {
			continue
		}

		for d := timecalc.StartOfDay(from); d.Before(to); d = timecalc.NextDay(d) {
			overlap := earliest(to, timecalc.NextDay(d)).Sub(latest(from, d))
			if overlap <= 0 {
				continue
			}
			if i, ok := index[keyOf(d)]; ok {
				days[i].Seconds += overlap.Seconds()
			}
		}
	}
	return days
}

// Total sums the seconds of a series.
func Total(series []DayTotal) float64 {
	var sum float64
	for _, d := range series {
		sum += d.Seconds
	}
	return sum
}

// ProjectTotal is the window total of one project.
type ProjectTotal struct {
	ProjectID string
	Seconds   float64
}

// ByProject totals each project's entries over w. Entries without a project
// are reported under the empty id. Results are ordered by descending total,
// then by id.
func ByProject(entries []model.Entry, w Window, now time.Time) []ProjectTotal {
	grouped := make(map[string][]model.Entry)
	for _, e := range entries {
		grouped[e.ProjectID] = append(grouped[e.ProjectID], e)
	}

	totals := make([]ProjectTotal, 0, len(grouped))
	for id, group := range grouped {
		totals = append(totals, ProjectTotal{ProjectID: id, Seconds: Total(Aggregate(group, w, now))})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Seconds != totals[j].Seconds {
			return totals[i].Seconds > totals[j].Seconds
		}
		return totals[i].ProjectID < totals[j].ProjectID
	})
	return totals
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
