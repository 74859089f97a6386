package graph

import (
	"math"
	"time"

	"github.com/christophergentle/goaltracker/internal/formatter"
)

// ComposerConfig holds the fixed sizes and styles of a graph
type ComposerConfig struct {
	LabelMargin float64
	TickSize    int
	Palette     Palette
}

// DefaultConfig returns the default graph configuration
func DefaultConfig() *ComposerConfig {
	return &ComposerConfig{
		LabelMargin: 5,
		TickSize:    4,
		Palette:     DefaultPalette(),
	}
}

// Input is everything a frame is composed from. Visible overrides the date
// range derived from the reports. Today is only used for date labels and for
// extending the range of tasks with an unreached target.
type Input struct {
	Task    Task
	Reports []Report
	Canvas  Canvas
	Pointer Pointer
	Today   time.Time
	Visible *DateRange
}

// Frame is a composed graph
type Frame struct {
	Commands  []Command
	Selection *Selection
	Dates     DateRange
	Values    ValueRange
	Plot      Canvas
}

// Empty reports whether the frame has nothing to draw
func (f Frame) Empty() bool {
	return len(f.Commands) == 0
}

// SelectionDates returns the calendar days of the selection's first and last
// column
func (f Frame) SelectionDates() (time.Time, time.Time, bool) {
	if f.Selection == nil {
		return time.Time{}, time.Time{}, false
	}
	return columnDate(f.Dates, f.Selection.StartDay), columnDate(f.Dates, f.Selection.FinishDay), true
}

// Composer turns graph inputs into draw commands
type Composer struct {
	config  *ComposerConfig
	measure Measurer
}

// NewComposer creates a composer. Nil arguments select the defaults.
func NewComposer(config *ComposerConfig, measure Measurer) *Composer {
	if config == nil {
		config = DefaultConfig()
	}
	if measure == nil {
		measure = DefaultMeasurer()
	}
	return &Composer{config: config, measure: measure}
}

// Compose builds the draw commands of one frame. Without reports the frame
// is empty. With a touched pointer inside the plot the frame shows the
// selection and its labels instead of the idle labels.
func (c *Composer) Compose(in Input) Frame {
	if len(in.Reports) == 0 {
		return Frame{}
	}

	dates, _ := DeriveDateRange(in.Task, in.Reports, in.Today)
	if in.Visible != nil {
		dates = NewDateRange(in.Visible.Min, in.Visible.Max)
	}
	values := DeriveValueRange(in.Task, in.Reports)
	plot := c.plotArea(in.Canvas)

	m := NewMapper(plot, dates.Days(), values)
	series := Materialize(in.Task.StartValue, in.Reports, dates)
	p := c.config.Palette
	layout := NewLayout(Decorated(c.measure, p.Labels), c.config.LabelMargin, in.Canvas)

	frame := Frame{Dates: dates, Values: values, Plot: plot}
	if in.Pointer.Touched {
		if sel, ok := Reduce(m, series, in.Task, in.Pointer.X1, in.Pointer.X2); ok {
			frame.Selection = &sel
		}
	}

	cmds := []Command{rectCommand(in.Canvas.XMin, in.Canvas.YMin, in.Canvas.XMax+1, in.Canvas.YMax+1, p.Background)}
	cmds = c.drawGrid(cmds, m)
	cmds = append(cmds, c.horizontalLine(m, series.Last(), p.CurrentValue))
	if frame.Selection != nil {
		cmds = c.drawSelection(cmds, m, *frame.Selection)
	}
	cmds = c.drawAxes(cmds, m, in.Task)
	cmds = c.drawProgress(cmds, m, series)

	var ticks []Command
	var labels []Label
	if frame.Selection != nil {
		ticks, labels = c.selectionLabels(layout, m, dates, in, *frame.Selection)
	} else {
		ticks, labels = c.idleLabels(layout, m, dates, values, series, in)
	}

	cmds = append(cmds, ticks...)
	for _, label := range layout.Resolve(labels) {
		cmds = append(cmds, textCommand(label, p.Labels))
	}

	frame.Commands = cmds
	return frame
}

// plotArea is the canvas without the strip below it reserved for date labels
func (c *Composer) plotArea(canvas Canvas) Canvas {
	_, h := c.measure.Measure("0")
	plot := canvas
	plot.YMax -= int(math.Ceil(h + 2*c.config.LabelMargin))
	if plot.YMax < plot.YMin {
		plot.YMax = plot.YMin
	}
	return plot
}

// drawGrid draws one vertical line per day boundary
func (c *Composer) drawGrid(cmds []Command, m Mapper) []Command {
	plot := m.Plot()
	lastX := math.MinInt
	for n := 0; n <= m.Days(); n++ {
		x := m.DayToX(n)
		if x == lastX {
			continue
		}
		cmds = append(cmds, lineCommand(x, plot.YMin, x, plot.YMax+1, c.config.Palette.Grid))
		lastX = x
	}
	return cmds
}

// drawAxes draws the start value line, the target line and the left axis
func (c *Composer) drawAxes(cmds []Command, m Mapper, task Task) []Command {
	p := c.config.Palette
	plot := m.Plot()

	cmds = append(cmds, c.horizontalLine(m, task.StartValue, p.Axes))
	if task.HasTarget() {
		cmds = append(cmds, c.horizontalLine(m, *task.TargetValue, p.Axes))
	}
	return append(cmds, lineCommand(plot.XMin, plot.YMin, plot.XMin, plot.YMax+1, p.Axes))
}

// drawProgress draws the forward-filled values as a polyline through the day
// boundaries, starting from the value entering the first day. Boundaries
// that fall on the same pixel column produce no segment; the line continues
// from the latest of them.
func (c *Composer) drawProgress(cmds []Command, m Mapper, series Series) []Command {
	style := c.config.Palette.Progress
	x0, y0 := m.DayToX(0), m.ValueToY(series.Boundary(0))

	for n := 1; n <= m.Days(); n++ {
		x, y := m.DayToX(n), m.ValueToY(series.Boundary(n))
		if x == x0 {
			y0 = y
			continue
		}
		cmds = append(cmds, lineCommand(x0, y0, x, y, style))
		x0, y0 = x, y
	}
	return cmds
}

// drawSelection shades the selected days and the value band between the
// selection's start and finish values.
func (c *Composer) drawSelection(cmds []Command, m Mapper, sel Selection) []Command {
	p := c.config.Palette
	plot := m.Plot()

	x1, x2 := m.DayToX(sel.StartDay-1), m.DayToX(sel.FinishDay)
	cmds = append(cmds, rectCommand(x1, plot.YMin, x2+1, plot.YMax+1, p.SelectedDate))

	high, low := math.Max(sel.StartValue, sel.FinishValue), math.Min(sel.StartValue, sel.FinishValue)
	style := p.SelectedValue
	if sel.Direction == Down {
		style = p.SelectedValueNegative
	}
	return append(cmds, rectCommand(plot.XMin, m.ValueToY(high), plot.XMax+1, m.ValueToY(low)+1, style))
}

func (c *Composer) horizontalLine(m Mapper, value float64, style Style) Command {
	plot := m.Plot()
	y := m.ValueToY(value)
	return lineCommand(plot.XMin, y, plot.XMax+1, y, style)
}

func (c *Composer) valueTick(m Mapper, value float64) Command {
	plot := m.Plot()
	y := m.ValueToY(value)
	return lineCommand(plot.XMin, y, plot.XMin+c.config.TickSize, y, c.config.Palette.Axes)
}

func (c *Composer) dayTick(m Mapper, n int) Command {
	plot := m.Plot()
	x := m.DayToX(n)
	return lineCommand(x, plot.YMax, x, plot.YMax+c.config.TickSize, c.config.Palette.Axes)
}

// dateLabelTop is the top edge of the date labels under the plot
func (c *Composer) dateLabelTop(m Mapper) float64 {
	return float64(m.Plot().YMax+c.config.TickSize) + c.config.LabelMargin
}

// idleLabels labels the value extremes (start and target when the task has
// a target), the first and last date, and the current value.
func (c *Composer) idleLabels(layout Layout, m Mapper, dates DateRange, values ValueRange, series Series, in Input) ([]Command, []Label) {
	plot := m.Plot()
	margin := c.config.LabelMargin

	low, high := values.Min, values.Max
	if in.Task.HasTarget() {
		low = math.Min(in.Task.StartValue, *in.Task.TargetValue)
		high = math.Max(in.Task.StartValue, *in.Task.TargetValue)
	}

	ticks := []Command{c.valueTick(m, high)}
	var labels []Label

	valueX := float64(plot.XMin+c.config.TickSize) + margin
	if high == low {
		labels = append(labels, layout.Single(formatter.FormatNumber(high, false), valueX, float64(m.ValueToY(high)), AlignLeft))
	} else {
		ticks = append(ticks, c.valueTick(m, low))
		labels = append(labels,
			layout.Clamp(layout.Below(formatter.FormatNumber(high, false), valueX, float64(m.ValueToY(high)), AlignLeft)),
			layout.Clamp(layout.Above(formatter.FormatNumber(low, false), valueX, float64(m.ValueToY(low)), AlignLeft)),
		)
	}

	last := series.Last()
	labels = append(labels, layout.Single(formatter.FormatNumber(last, false), float64(plot.XMax)-margin, float64(m.ValueToY(last)), AlignRight))

	top := c.dateLabelTop(m)
	days := m.Days()
	ticks = append(ticks, c.dayTick(m, 0), c.dayTick(m, days))
	if days == 1 {
		center := float64(m.DayToX(0)+m.DayToX(1)) / 2
		labels = append(labels, layout.Clamp(layout.Place(formatter.FormatDate(dates.Min, in.Today), center, top, AlignCenter)))
	} else {
		labels = append(labels,
			layout.Clamp(layout.Place(formatter.FormatDate(dates.Min, in.Today), float64(m.DayToX(0)), top, AlignLeft)),
			layout.Clamp(layout.Place(formatter.FormatDate(dates.Max, in.Today), float64(m.DayToX(days)), top, AlignRight)),
		)
	}

	return ticks, labels
}

// selectionLabels labels the selection's values, its progress toward the
// target and its dates.
func (c *Composer) selectionLabels(layout Layout, m Mapper, dates DateRange, in Input, sel Selection) ([]Command, []Label) {
	plot := m.Plot()
	margin := c.config.LabelMargin

	top, bottom := selectionTexts(sel)
	topValue, bottomValue := sel.FinishValue, sel.StartValue
	if sel.Direction == Down {
		topValue, bottomValue = sel.StartValue, sel.FinishValue
	}
	topY, bottomY := float64(m.ValueToY(topValue)), float64(m.ValueToY(bottomValue))

	labels := layout.Stack(top, bottom, topY, bottomY, float64(plot.XMin+c.config.TickSize)+margin, AlignLeft)
	if sel.HasPercentage {
		top, bottom := percentageTexts(sel)
		labels = append(labels, layout.Stack(top, bottom, topY, bottomY, float64(plot.XMax)-margin, AlignRight)...)
	}

	left, right := m.DayToX(sel.StartDay-1), m.DayToX(sel.FinishDay)
	ticks := []Command{
		c.valueTick(m, topValue),
		c.valueTick(m, bottomValue),
		c.dayTick(m, sel.StartDay-1),
		c.dayTick(m, sel.FinishDay),
	}

	dateTop := c.dateLabelTop(m)
	startDate := formatter.FormatDate(columnDate(dates, sel.StartDay), in.Today)
	if sel.SingleDay() {
		labels = append(labels, layout.Clamp(layout.Place(startDate, float64(left+right)/2, dateTop, AlignCenter)))
	} else {
		finishDate := formatter.FormatDate(columnDate(dates, sel.FinishDay), in.Today)
		labels = append(labels, layout.Span(startDate, finishDate, float64(left), float64(right), dateTop)...)
	}

	return ticks, labels
}

// columnDate returns the calendar day of a selection column, limited to the
// days of the range.
func columnDate(dates DateRange, column int) time.Time {
	if column < 1 {
		column = 1
	}
	if last := dates.Days(); column > last {
		column = last
	}
	return dates.Day(column - 1)
}

// selectionTexts returns the upper and lower value label of a selection. The
// changed value carries the difference. A flat selection has one label.
func selectionTexts(sel Selection) (string, string) {
	diff := " (" + formatter.FormatNumber(sel.ValueDiff, true) + ")"
	switch sel.Direction {
	case Up:
		return formatter.FormatNumber(sel.FinishValue, false) + diff, formatter.FormatNumber(sel.StartValue, false)
	case Down:
		return formatter.FormatNumber(sel.StartValue, false), formatter.FormatNumber(sel.FinishValue, false) + diff
	default:
		return formatter.FormatNumber(sel.StartValue, false), ""
	}
}

// percentageTexts mirrors selectionTexts for the progress toward the target
func percentageTexts(sel Selection) (string, string) {
	diff := " (" + formatter.FormatNumber(sel.PercentageDiff, true) + ")"
	switch sel.Direction {
	case Up:
		return formatter.FormatPercent(sel.FinishPercentage) + diff, formatter.FormatPercent(sel.StartPercentage)
	case Down:
		return formatter.FormatPercent(sel.StartPercentage), formatter.FormatPercent(sel.FinishPercentage) + diff
	default:
		return formatter.FormatPercent(sel.StartPercentage), ""
	}
}
