package graph

import "math"

// Direction is the sign of a selection's value change
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

// Pointer is the state of the two touch points over the canvas
type Pointer struct {
	Touched bool
	X1      float64
	Y1      float64
	X2      float64
	Y2      float64
}

// Selection is the day range under the pointer and the values it covers.
// Days are 1-based columns: column n is day offset n-1 and spans the
// boundaries n-1 and n.
type Selection struct {
	StartDay    int
	FinishDay   int
	StartValue  float64
	FinishValue float64
	ValueDiff   float64
	Direction   Direction

	HasPercentage    bool
	StartPercentage  float64
	FinishPercentage float64
	PercentageDiff   float64
}

// SingleDay reports whether the selection covers one day column
func (s Selection) SingleDay() bool {
	return s.StartDay == s.FinishDay
}

// Reduce derives the selection under the pointer positions x1 and x2. It
// returns false when the selection starts outside the plotted days.
func Reduce(m Mapper, series Series, task Task, x1, x2 float64) (Selection, bool) {
	startDay := m.XToDay(x1)
	finishDay := m.XToDay(x2)
	if finishDay < startDay {
		startDay, finishDay = finishDay, startDay
	}

	if startDay <= 0 || startDay > m.Days() {
		return Selection{}, false
	}
	if finishDay > m.Days() {
		finishDay = m.Days()
	}

	sel := Selection{
		StartDay:    startDay,
		FinishDay:   finishDay,
		StartValue:  series.Boundary(startDay - 1),
		FinishValue: series.Boundary(finishDay),
	}
	sel.ValueDiff = sel.FinishValue - sel.StartValue

	switch {
	case sel.ValueDiff > 0:
		sel.Direction = Up
	case sel.ValueDiff < 0:
		sel.Direction = Down
	default:
		sel.Direction = Flat
	}

	if task.HasTarget() && *task.TargetValue != task.StartValue {
		sel.HasPercentage = true
		sel.StartPercentage = percentOfTarget(task, sel.StartValue)
		sel.FinishPercentage = percentOfTarget(task, sel.FinishValue)
		sel.PercentageDiff = roundTenth(sel.FinishPercentage - sel.StartPercentage)
	}

	return sel, true
}

// percentOfTarget returns how far v is from the start value toward the
// target, in percent rounded to one decimal.
func percentOfTarget(task Task, v float64) float64 {
	return roundTenth(100 * (v - task.StartValue) / (*task.TargetValue - task.StartValue))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
