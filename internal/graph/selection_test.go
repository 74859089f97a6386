package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioSeries is the six day range derived from reports on days 1, 3
// and 5 and a today of day 6
func scenarioSeries() (Mapper, Series, Task) {
	task := Task{Title: "Pages", StartValue: 0, TargetValue: target(100)}
	reports := []Report{
		{Date: day(1), Value: 10},
		{Date: day(3), Value: 40},
		{Date: day(5), Value: 90},
	}
	dates, _ := DeriveDateRange(task, reports, day(6))
	m := NewMapper(Canvas{XMin: 0, YMin: 0, XMax: 300, YMax: 127}, dates.Days(), ValueRange{Min: 0, Max: 100})
	return m, Materialize(task.StartValue, reports, dates), task
}

func TestReduceSelection(t *testing.T) {
	m, series, task := scenarioSeries()

	sel, ok := Reduce(m, series, task, 175, 75)
	require.True(t, ok)

	assert.Equal(t, 2, sel.StartDay)
	assert.Equal(t, 4, sel.FinishDay)
	assert.Equal(t, 10.0, sel.StartValue)
	assert.Equal(t, 40.0, sel.FinishValue)
	assert.Equal(t, 30.0, sel.ValueDiff)
	assert.Equal(t, Up, sel.Direction)
	assert.True(t, sel.HasPercentage)
	assert.Equal(t, 10.0, sel.StartPercentage)
	assert.Equal(t, 40.0, sel.FinishPercentage)
	assert.Equal(t, 30.0, sel.PercentageDiff)
	assert.False(t, sel.SingleDay())
}

func TestReduceOrdersDays(t *testing.T) {
	m, series, task := scenarioSeries()

	positions := []float64{-30, 0, 1, 49, 50, 51, 120, 199, 250, 299, 300, 301, 500}
	for _, x1 := range positions {
		for _, x2 := range positions {
			sel, ok := Reduce(m, series, task, x1, x2)
			if !ok {
				continue
			}
			assert.LessOrEqual(t, sel.StartDay, sel.FinishDay, "x1=%v x2=%v", x1, x2)
			assert.GreaterOrEqual(t, sel.StartDay, 1)
			assert.LessOrEqual(t, sel.FinishDay, m.Days())
		}
	}
}

func TestReduceOutsidePlot(t *testing.T) {
	m, series, task := scenarioSeries()

	_, ok := Reduce(m, series, task, -10, 120)
	assert.False(t, ok, "left of the first day")

	_, ok = Reduce(m, series, task, 0, 0)
	assert.False(t, ok, "on the left edge")

	_, ok = Reduce(m, series, task, 400, 500)
	assert.False(t, ok, "past the last day")
}

func TestReduceClampsFinishDay(t *testing.T) {
	m, series, task := scenarioSeries()

	sel, ok := Reduce(m, series, task, 75, 1000)
	require.True(t, ok)

	assert.Equal(t, 2, sel.StartDay)
	assert.Equal(t, 6, sel.FinishDay)
	assert.Equal(t, 90.0, sel.FinishValue)
}

func TestReduceFirstColumnStartsAtStartValue(t *testing.T) {
	m, series, task := scenarioSeries()

	sel, ok := Reduce(m, series, task, 1, 50)
	require.True(t, ok)

	assert.True(t, sel.SingleDay())
	assert.Equal(t, 1, sel.StartDay)
	assert.Equal(t, 0.0, sel.StartValue)
	assert.Equal(t, 10.0, sel.FinishValue)
	assert.Equal(t, Up, sel.Direction)
}

func TestReduceSingleDay(t *testing.T) {
	m, series, task := scenarioSeries()

	sel, ok := Reduce(m, series, task, 60, 60)
	require.True(t, ok)

	assert.True(t, sel.SingleDay())
	assert.Equal(t, 2, sel.StartDay)
	assert.Equal(t, 10.0, sel.StartValue)
	assert.Equal(t, 10.0, sel.FinishValue)
	assert.Equal(t, Flat, sel.Direction)
}

func TestReduceDownward(t *testing.T) {
	task := Task{StartValue: 0, TargetValue: target(100)}
	dates := DateRange{Min: day(1), Max: day(6)}
	series := Materialize(0, []Report{{Date: day(1), Value: 50}, {Date: day(3), Value: 20}}, dates)
	m := NewMapper(Canvas{XMin: 0, YMin: 0, XMax: 300, YMax: 127}, dates.Days(), ValueRange{Min: 0, Max: 100})

	sel, ok := Reduce(m, series, task, 75, 175)
	require.True(t, ok)

	assert.Equal(t, Down, sel.Direction)
	assert.Equal(t, -30.0, sel.ValueDiff)
	assert.Equal(t, 50.0, sel.StartPercentage)
	assert.Equal(t, 20.0, sel.FinishPercentage)
	assert.Equal(t, -30.0, sel.PercentageDiff)
}

func TestReducePercentageRequiresDistinctTarget(t *testing.T) {
	m, series, _ := scenarioSeries()

	sel, ok := Reduce(m, series, Task{StartValue: 0}, 75, 175)
	require.True(t, ok)
	assert.False(t, sel.HasPercentage)

	sel, ok = Reduce(m, series, Task{StartValue: 0, TargetValue: target(0)}, 75, 175)
	require.True(t, ok)
	assert.False(t, sel.HasPercentage)
}

func TestReducePercentageRounding(t *testing.T) {
	task := Task{StartValue: 0, TargetValue: target(3)}
	dates := DateRange{Min: day(0), Max: day(1)}
	series := Materialize(0, []Report{{Date: day(1), Value: 1}}, dates)
	m := NewMapper(Canvas{XMin: 0, YMin: 0, XMax: 100, YMax: 100}, dates.Days(), ValueRange{Min: 0, Max: 3})

	sel, ok := Reduce(m, series, task, 10, 60)
	require.True(t, ok)

	assert.Equal(t, 0.0, sel.StartPercentage)
	assert.Equal(t, 33.3, sel.FinishPercentage)
	assert.Equal(t, 33.3, sel.PercentageDiff)
}

func TestReduceIsIdempotent(t *testing.T) {
	m, series, task := scenarioSeries()

	first, _ := Reduce(m, series, task, 30, 260)
	second, _ := Reduce(m, series, task, 30, 260)
	assert.Equal(t, first, second)
}
