package graph

import "math"

// Canvas is a rectangle in device pixels
type Canvas struct {
	XMin int
	YMin int
	XMax int
	YMax int
}

// Width returns XMax - XMin
func (c Canvas) Width() int {
	return c.XMax - c.XMin
}

// Height returns YMax - YMin
func (c Canvas) Height() int {
	return c.YMax - c.YMin
}

// Mapper converts between day offsets/values and plot pixels
type Mapper struct {
	plot   Canvas
	days   int
	values ValueRange
}

// NewMapper creates a mapper for a plot area showing days days and the given
// value range.
func NewMapper(plot Canvas, days int, values ValueRange) Mapper {
	if days < 1 {
		days = 1
	}
	return Mapper{plot: plot, days: days, values: values}
}

// Plot returns the plot area
func (m Mapper) Plot() Canvas {
	return m.plot
}

// Days returns the number of days mapped onto the plot width
func (m Mapper) Days() int {
	return m.days
}

// DayToX returns the X coordinate of the boundary at day offset n
func (m Mapper) DayToX(n int) int {
	return m.plot.XMin + m.plot.Width()*n/m.days
}

// ValueToY returns the Y coordinate of value v. Y grows downward. When the
// value range is empty every value maps to the vertical middle of the plot.
func (m Mapper) ValueToY(v float64) int {
	span := m.values.Max - m.values.Min
	if span == 0 {
		return (m.plot.YMin + m.plot.YMax) / 2
	}
	return m.plot.YMax - int(math.Round(float64(m.plot.Height())*(v-m.values.Min)/span))
}

// XToDay returns the day column under pixel x, rounding up so that a pointer
// on a boundary selects the later day.
func (m Mapper) XToDay(x float64) int {
	width := m.plot.Width()
	if width == 0 {
		return 0
	}
	return int(math.Ceil((math.Round(x) - float64(m.plot.XMin)) * float64(m.days) / float64(width)))
}
