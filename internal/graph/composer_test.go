package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioInput is a task from 0 to 100 with reports on days 1, 3 and 5,
// drawn on a 300x150 canvas. The target is unreached so the range runs from
// the first report to today, six days.
func scenarioInput() Input {
	return Input{
		Task: Task{Title: "Pages", StartValue: 0, TargetValue: target(100)},
		Reports: []Report{
			{Date: day(1), Value: 10},
			{Date: day(3), Value: 40},
			{Date: day(5), Value: 90},
		},
		Canvas: Canvas{XMin: 0, YMin: 0, XMax: 300, YMax: 150},
		Today:  day(6),
	}
}

func texts(frame Frame) []string {
	var out []string
	for _, cmd := range frame.Commands {
		if cmd.Kind == Text {
			out = append(out, cmd.Text)
		}
	}
	return out
}

func commandsWithStyle(frame Frame, kind Kind, style Style) []Command {
	var out []Command
	for _, cmd := range frame.Commands {
		if cmd.Kind == kind && cmd.Style == style {
			out = append(out, cmd)
		}
	}
	return out
}

func line(x1, y1, x2, y2 float64, style Style) Command {
	return Command{Kind: Line, X1: x1, Y1: y1, X2: x2, Y2: y2, Style: style}
}

func TestComposeIdleScenario(t *testing.T) {
	p := DefaultPalette()
	frame := NewComposer(nil, nil).Compose(scenarioInput())

	require.False(t, frame.Empty())
	assert.Equal(t, DateRange{Min: day(1), Max: day(6)}, frame.Dates)
	assert.Equal(t, 6, frame.Dates.Days())
	assert.Equal(t, ValueRange{Min: 0, Max: 100}, frame.Values)
	assert.Equal(t, Canvas{XMin: 0, YMin: 0, XMax: 300, YMax: 127}, frame.Plot)
	assert.Nil(t, frame.Selection)

	assert.Equal(t, []Command{
		line(0, 127, 50, 114, p.Progress),
		line(50, 114, 100, 114, p.Progress),
		line(100, 114, 150, 76, p.Progress),
		line(150, 76, 200, 76, p.Progress),
		line(200, 76, 250, 13, p.Progress),
		line(250, 13, 300, 13, p.Progress),
	}, commandsWithStyle(frame, Line, p.Progress))

	axes := commandsWithStyle(frame, Line, p.Axes)
	assert.Contains(t, axes, line(0, 127, 301, 127, p.Axes), "start value line")
	assert.Contains(t, axes, line(0, 0, 301, 0, p.Axes), "target line")
	assert.Contains(t, axes, line(0, 0, 0, 128, p.Axes), "left axis")

	assert.Equal(t, []Command{line(0, 13, 301, 13, p.CurrentValue)}, commandsWithStyle(frame, Line, p.CurrentValue))
	assert.Len(t, commandsWithStyle(frame, Line, p.Grid), 7)

	assert.Equal(t, []string{"100", "0", "90", "Mar 2", "Today"}, texts(frame))
}

func TestComposeSelectionScenario(t *testing.T) {
	p := DefaultPalette()
	in := scenarioInput()
	in.Pointer = Pointer{Touched: true, X1: 75, Y1: 40, X2: 175, Y2: 60}

	frame := NewComposer(nil, nil).Compose(in)

	require.NotNil(t, frame.Selection)
	assert.Equal(t, 2, frame.Selection.StartDay)
	assert.Equal(t, 4, frame.Selection.FinishDay)

	assert.Equal(t, []Command{{Kind: Rect, X1: 50, Y1: 0, X2: 201, Y2: 128, Style: p.SelectedDate}},
		commandsWithStyle(frame, Rect, p.SelectedDate))
	assert.Equal(t, []Command{{Kind: Rect, X1: 0, Y1: 76, X2: 301, Y2: 115, Style: p.SelectedValue}},
		commandsWithStyle(frame, Rect, p.SelectedValue))

	assert.Equal(t, []string{"40 (+30)", "10", "40% (+30)", "10%", "Mar 3", "Mar 5"}, texts(frame))
}

func TestComposeSelectionMergesCloseDates(t *testing.T) {
	in := scenarioInput()
	in.Canvas = Canvas{XMin: 0, YMin: 0, XMax: 120, YMax: 150}
	in.Pointer = Pointer{Touched: true, X1: 30, X2: 70}

	frame := NewComposer(nil, nil).Compose(in)

	assert.Contains(t, texts(frame), "Mar 3 — Mar 5")
	assertNoOverlappingText(t, frame)
}

func TestComposeSelectionSingleDay(t *testing.T) {
	in := scenarioInput()
	in.Pointer = Pointer{Touched: true, X1: 60, X2: 60}

	frame := NewComposer(nil, nil).Compose(in)

	require.NotNil(t, frame.Selection)
	assert.True(t, frame.Selection.SingleDay())
	assert.Equal(t, Flat, frame.Selection.Direction)
	assert.Equal(t, []string{"10", "10%", "Mar 3"}, texts(frame))
}

func TestComposeSelectionDownward(t *testing.T) {
	p := DefaultPalette()
	visible := DateRange{Min: day(0), Max: day(2)}
	in := Input{
		Task:    Task{Title: "Weight", StartValue: 80, TargetValue: target(70)},
		Reports: []Report{{Date: day(0), Value: 78}, {Date: day(2), Value: 75}},
		Canvas:  Canvas{XMin: 0, YMin: 0, XMax: 300, YMax: 150},
		Pointer: Pointer{Touched: true, X1: 150, X2: 250},
		Today:   day(30),
		Visible: &visible,
	}

	frame := NewComposer(nil, nil).Compose(in)

	require.NotNil(t, frame.Selection)
	assert.Equal(t, Down, frame.Selection.Direction)
	assert.Len(t, commandsWithStyle(frame, Rect, p.SelectedValueNegative), 1)
	assert.Empty(t, commandsWithStyle(frame, Rect, p.SelectedValue))
	assert.Equal(t, []string{"78", "75 (−3)", "20%", "50% (+30)", "Mar 2", "Mar 3"}, texts(frame))
}

func TestComposePointerOutsideFallsBackToIdle(t *testing.T) {
	in := scenarioInput()
	in.Pointer = Pointer{Touched: true, X1: -40, X2: 100}

	frame := NewComposer(nil, nil).Compose(in)

	assert.Nil(t, frame.Selection)
	assert.Equal(t, []string{"100", "0", "90", "Mar 2", "Today"}, texts(frame))
}

func TestComposeTodayLabel(t *testing.T) {
	in := scenarioInput()
	in.Today = day(5)

	frame := NewComposer(nil, nil).Compose(in)

	assert.Contains(t, texts(frame), "Today")
}

func TestComposeEmptyReports(t *testing.T) {
	in := scenarioInput()
	in.Reports = nil

	frame := NewComposer(nil, nil).Compose(in)

	assert.True(t, frame.Empty())
	assert.Nil(t, frame.Selection)
}

func TestComposeDegenerateValueRange(t *testing.T) {
	p := DefaultPalette()
	in := Input{
		Task:    Task{Title: "Flat", StartValue: 5},
		Reports: []Report{{Date: day(0), Value: 5}},
		Canvas:  Canvas{XMin: 0, YMin: 0, XMax: 300, YMax: 150},
		Today:   day(0),
	}

	frame := NewComposer(nil, nil).Compose(in)

	assert.Equal(t, 1, frame.Dates.Days())
	assert.Equal(t, []Command{line(0, 63, 300, 63, p.Progress)}, commandsWithStyle(frame, Line, p.Progress))
	assert.Equal(t, []string{"5", "5", "Today"}, texts(frame))
	assertNoOverlappingText(t, frame)
}

func TestComposeDerivesRangeFromReports(t *testing.T) {
	in := scenarioInput()
	in.Today = day(9)

	frame := NewComposer(nil, nil).Compose(in)

	assert.Equal(t, day(1), frame.Dates.Min)
	assert.Equal(t, day(9), frame.Dates.Max, "unreached target extends the range to today")
}

func TestComposeNarrowCanvasSkipsDuplicateColumns(t *testing.T) {
	p := DefaultPalette()
	in := scenarioInput()
	visible := DateRange{Min: day(0), Max: day(99)}
	in.Visible = &visible
	in.Canvas = Canvas{XMin: 0, YMin: 0, XMax: 40, YMax: 150}

	frame := NewComposer(nil, nil).Compose(in)

	for _, cmd := range commandsWithStyle(frame, Line, p.Progress) {
		assert.NotEqual(t, cmd.X1, cmd.X2, "zero length segment")
	}
	assert.Len(t, commandsWithStyle(frame, Line, p.Grid), 41)
	assertNoOverlappingText(t, frame)
}

func TestComposeIsIdempotent(t *testing.T) {
	in := scenarioInput()
	in.Pointer = Pointer{Touched: true, X1: 20, X2: 280}
	composer := NewComposer(nil, nil)

	assert.Equal(t, composer.Compose(in), composer.Compose(in))
}

func TestComposeNeverOverlapsText(t *testing.T) {
	composer := NewComposer(nil, nil)
	for width := 20; width <= 320; width += 25 {
		for x := 0; x <= width; x += 7 {
			in := scenarioInput()
			in.Canvas = Canvas{XMin: 0, YMin: 0, XMax: width, YMax: 90}
			in.Pointer = Pointer{Touched: true, X1: float64(x), X2: float64(width - x/2)}
			assertNoOverlappingText(t, composer.Compose(in))
		}
	}
}

func assertNoOverlappingText(t *testing.T, frame Frame) {
	t.Helper()
	var boxes []Command
	for _, cmd := range frame.Commands {
		if cmd.Kind == Text {
			boxes = append(boxes, cmd)
		}
	}
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			a := Box{Left: boxes[i].X1, Top: boxes[i].Y1, Right: boxes[i].X2, Bottom: boxes[i].Y2}
			b := Box{Left: boxes[j].X1, Top: boxes[j].Y1, Right: boxes[j].X2, Bottom: boxes[j].Y2}
			assert.False(t, a.Overlaps(b), "%q overlaps %q", boxes[i].Text, boxes[j].Text)
		}
	}
}

func TestFrameSelectionDates(t *testing.T) {
	in := scenarioInput()

	_, _, ok := NewComposer(nil, nil).Compose(in).SelectionDates()
	assert.False(t, ok)

	in.Pointer = Pointer{Touched: true, X1: 75, X2: 175}
	first, last, ok := NewComposer(nil, nil).Compose(in).SelectionDates()
	require.True(t, ok)
	assert.Equal(t, day(2), first)
	assert.Equal(t, day(4), last)
}

func TestComposeSelectionFirstColumn(t *testing.T) {
	in := scenarioInput()
	in.Pointer = Pointer{Touched: true, X1: 10, X2: 10}

	frame := NewComposer(nil, nil).Compose(in)

	require.NotNil(t, frame.Selection)
	assert.Equal(t, 1, frame.Selection.StartDay)
	assert.Equal(t, 0.0, frame.Selection.StartValue, "value entering the first day")
	assert.Equal(t, 10.0, frame.Selection.FinishValue)
	assert.Contains(t, texts(frame), "Mar 2")
}

func TestComposeSelectionLastColumns(t *testing.T) {
	in := scenarioInput()

	in.Pointer = Pointer{Touched: true, X1: 225, X2: 225}
	first, _, ok := NewComposer(nil, nil).Compose(in).SelectionDates()
	require.True(t, ok)
	assert.Equal(t, day(5), first)

	in.Pointer = Pointer{Touched: true, X1: 275, X2: 275}
	frame := NewComposer(nil, nil).Compose(in)
	first, _, ok = frame.SelectionDates()
	require.True(t, ok)
	assert.Equal(t, day(6), first)
	assert.Contains(t, texts(frame), "Today")
}

func TestComposeVisibleWindowCarriesEarlierReport(t *testing.T) {
	p := DefaultPalette()
	visible := DateRange{Min: day(2), Max: day(5)}
	in := scenarioInput()
	in.Visible = &visible

	frame := NewComposer(nil, nil).Compose(in)

	progress := commandsWithStyle(frame, Line, p.Progress)
	require.NotEmpty(t, progress)
	assert.Equal(t, line(0, 114, 75, 114, p.Progress), progress[0], "starts at the report before the window")
}
