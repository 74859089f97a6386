// Package graph computes the layout of a task progress graph: coordinate
// mapping, forward-filled daily values, pointer selections and labels. It
// returns draw commands and never draws anything itself.
package graph

import (
	"math"
	"time"
)

// Task is the part of a task the graph needs
type Task struct {
	Title       string
	StartValue  float64
	TargetValue *float64
}

// HasTarget reports whether the task has a target value
func (t Task) HasTarget() bool {
	return t.TargetValue != nil
}

// TargetReached reports whether last has reached the target. A task without
// a target never reaches it.
func (t Task) TargetReached(last float64) bool {
	if t.TargetValue == nil {
		return false
	}
	target := *t.TargetValue
	switch {
	case target > t.StartValue:
		return last >= target
	case target < t.StartValue:
		return last <= target
	default:
		return true
	}
}

// Report is a single dated value
type Report struct {
	Date  time.Time
	Value float64
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Min time.Time
	Max time.Time
}

// NewDateRange builds a range from two days in any order
func NewDateRange(a, b time.Time) DateRange {
	a, b = Day(a), Day(b)
	if b.Before(a) {
		a, b = b, a
	}
	return DateRange{Min: a, Max: b}
}

// Days returns the number of days in the range, at least 1
func (r DateRange) Days() int {
	n := 1 + daysBetween(r.Min, r.Max)
	if n < 1 {
		return 1
	}
	return n
}

// Day returns the calendar day at offset n from Min
func (r DateRange) Day(n int) time.Time {
	return Day(r.Min).AddDate(0, 0, n)
}

// Offset returns the number of days between Min and day
func (r DateRange) Offset(day time.Time) int {
	return daysBetween(r.Min, day)
}

// ValueRange is the span of values shown on the vertical axis
type ValueRange struct {
	Min float64
	Max float64
}

// include widens the range so it contains v
func (r ValueRange) include(v float64) ValueRange {
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
	return r
}

// Day truncates t to its calendar day. Days are normalized to UTC midnight
// so that day arithmetic is not affected by daylight saving changes.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(math.Round(Day(b).Sub(Day(a)).Hours() / 24))
}

// latest returns the report with the latest date
func latest(reports []Report) (Report, bool) {
	if len(reports) == 0 {
		return Report{}, false
	}
	last := reports[0]
	for _, r := range reports[1:] {
		if r.Date.After(last.Date) {
			last = r
		}
	}
	return last, true
}

// LastValue returns the value of the latest report, or the start value when
// there are no reports.
func LastValue(task Task, reports []Report) float64 {
	if last, ok := latest(reports); ok {
		return last.Value
	}
	return task.StartValue
}

// DeriveDateRange spans the earliest to the latest report. When the task has
// a target it has not reached yet, the range is extended to today. It
// returns false when there are no reports.
func DeriveDateRange(task Task, reports []Report, today time.Time) (DateRange, bool) {
	if len(reports) == 0 {
		return DateRange{}, false
	}

	r := DateRange{Min: Day(reports[0].Date), Max: Day(reports[0].Date)}
	for _, report := range reports[1:] {
		day := Day(report.Date)
		if day.Before(r.Min) {
			r.Min = day
		}
		if day.After(r.Max) {
			r.Max = day
		}
	}

	if task.HasTarget() && !task.TargetReached(LastValue(task, reports)) {
		if t := Day(today); t.After(r.Max) {
			r.Max = t
		}
	}

	return r, true
}

// DeriveValueRange spans the start value and every reported value, plus the
// target while it has not been reached.
func DeriveValueRange(task Task, reports []Report) ValueRange {
	r := ValueRange{Min: task.StartValue, Max: task.StartValue}
	for _, report := range reports {
		r = r.include(report.Value)
	}

	if task.HasTarget() && !task.TargetReached(LastValue(task, reports)) {
		r = r.include(*task.TargetValue)
	}

	return r
}
