package graph

import "time"

// Engine keeps the inputs of one graph between frames and recomposes only
// after they change. It is not safe for concurrent use: a single render loop
// owns it and other goroutines hand their updates to that loop.
type Engine struct {
	composer *Composer
	input    Input
	frame    Frame
	dirty    bool
}

// NewEngine creates an engine. A nil composer uses the defaults.
func NewEngine(composer *Composer) *Engine {
	if composer == nil {
		composer = NewComposer(nil, nil)
	}
	return &Engine{composer: composer, dirty: true}
}

// SetData replaces the task and its reports
func (e *Engine) SetData(task Task, reports []Report, today time.Time) {
	e.input.Task = task
	e.input.Reports = append([]Report(nil), reports...)
	e.input.Today = today
	e.dirty = true
}

// SetVisibleRange fixes the date range shown; nil derives it from the data
func (e *Engine) SetVisibleRange(dates *DateRange) {
	if dates != nil {
		r := *dates
		dates = &r
	}
	e.input.Visible = dates
	e.dirty = true
}

// SetCanvas sets the drawing surface geometry
func (e *Engine) SetCanvas(canvas Canvas) {
	if canvas == e.input.Canvas {
		return
	}
	e.input.Canvas = canvas
	e.dirty = true
}

// SetPointer sets the pointer state
func (e *Engine) SetPointer(pointer Pointer) {
	if pointer == e.input.Pointer {
		return
	}
	e.input.Pointer = pointer
	e.dirty = true
}

// NeedsUpdate reports whether the inputs changed since the last frame
func (e *Engine) NeedsUpdate() bool {
	return e.dirty
}

// Frame returns the current frame, composing it first if needed
func (e *Engine) Frame() Frame {
	if e.dirty {
		e.frame = e.composer.Compose(e.input)
		e.dirty = false
	}
	return e.frame
}
