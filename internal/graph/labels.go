package graph

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	// mergeSeparator joins the texts of two merged labels
	mergeSeparator = " / "
	// rangeSeparator joins the two ends of a date range label
	rangeSeparator = " — "
)

// Box is a label rectangle in canvas pixels
type Box struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Width returns the horizontal size of the box
func (b Box) Width() float64 {
	return b.Right - b.Left
}

// Height returns the vertical size of the box
func (b Box) Height() float64 {
	return b.Bottom - b.Top
}

// Overlaps reports whether the interiors of b and o intersect. Boxes that
// only share an edge do not overlap.
func (b Box) Overlaps(o Box) bool {
	return b.Left < o.Right && o.Left < b.Right && b.Top < o.Bottom && o.Top < b.Bottom
}

func (b Box) shift(dx, dy float64) Box {
	return Box{Left: b.Left + dx, Top: b.Top + dy, Right: b.Right + dx, Bottom: b.Bottom + dy}
}

// Label is a placed piece of text
type Label struct {
	Text  string
	Align Align
	Box   Box
}

// anchor returns the x coordinate the label is aligned on
func (l Label) anchor() float64 {
	switch l.Align {
	case AlignCenter:
		return (l.Box.Left + l.Box.Right) / 2
	case AlignRight:
		return l.Box.Right
	default:
		return l.Box.Left
	}
}

// Measurer reports the pixel size of a single line of text
type Measurer interface {
	Measure(text string) (width, height float64)
}

// FaceMeasurer measures text drawn with a font face
type FaceMeasurer struct {
	Face font.Face
}

// Measure returns the advance width and the ascent plus descent of text
func (m FaceMeasurer) Measure(text string) (float64, float64) {
	advance := font.MeasureString(m.Face, text)
	metrics := m.Face.Metrics()
	return float64(advance) / 64, float64(metrics.Ascent+metrics.Descent) / 64
}

// DefaultMeasurer measures text in the 7x13 face used by the renderer
func DefaultMeasurer() Measurer {
	return FaceMeasurer{Face: basicfont.Face7x13}
}

// Decorated measures text drawn in style. The bold pass is drawn one pixel
// to the right of the glyphs and the shadow one pixel right and down, so
// both widen the box.
func Decorated(m Measurer, style Style) Measurer {
	return decorated{Measurer: m, style: style}
}

type decorated struct {
	Measurer
	style Style
}

func (d decorated) Measure(text string) (float64, float64) {
	w, h := d.Measurer.Measure(text)
	if d.style.Bold || d.style.Shadow {
		w++
	}
	if d.style.Shadow {
		h++
	}
	return w, h
}

// Layout places labels so that they stay inside bounds
type Layout struct {
	measure Measurer
	margin  float64
	bounds  Box
}

// NewLayout creates a layout for a canvas
func NewLayout(measure Measurer, margin float64, canvas Canvas) Layout {
	return Layout{
		measure: measure,
		margin:  margin,
		bounds: Box{
			Left:   float64(canvas.XMin),
			Top:    float64(canvas.YMin),
			Right:  float64(canvas.XMax),
			Bottom: float64(canvas.YMax),
		},
	}
}

// Place returns text aligned on x with its top edge at top
func (l Layout) Place(text string, x, top float64, align Align) Label {
	w, h := l.measure.Measure(text)

	left := x
	switch align {
	case AlignCenter:
		left = x - w/2
	case AlignRight:
		left = x - w
	}

	return Label{
		Text:  text,
		Align: align,
		Box:   Box{Left: left, Top: top, Right: left + w, Bottom: top + h},
	}
}

// Above places text so that its bottom edge is one margin above y
func (l Layout) Above(text string, x, y float64, align Align) Label {
	_, h := l.measure.Measure(text)
	return l.Place(text, x, y-l.margin-h, align)
}

// Below places text so that its top edge is one margin below y
func (l Layout) Below(text string, x, y float64, align Align) Label {
	return l.Place(text, x, y+l.margin, align)
}

// Clamp shifts a label back inside the bounds without resizing it. A label
// larger than the bounds keeps its left and top edges on the bounds.
func (l Layout) Clamp(label Label) Label {
	b := label.Box

	dx := 0.0
	if b.Right > l.bounds.Right {
		dx = l.bounds.Right - b.Right
	}
	if b.Left+dx < l.bounds.Left {
		dx = l.bounds.Left - b.Left
	}

	dy := 0.0
	if b.Bottom > l.bounds.Bottom {
		dy = l.bounds.Bottom - b.Bottom
	}
	if b.Top+dy < l.bounds.Top {
		dy = l.bounds.Top - b.Top
	}

	label.Box = b.shift(dx, dy)
	return label
}

// Single places text above y, or below it when there is no room above
func (l Layout) Single(text string, x, y float64, align Align) Label {
	label := l.Above(text, x, y, align)
	if label.Box.Top < l.bounds.Top {
		label = l.Below(text, x, y, align)
	}
	return l.Clamp(label)
}

// Stack places the labels of two horizontal lines: top above topY and bottom
// below bottomY. A top label leaving the bounds through the top edge is
// merged into the bottom label, and a bottom label leaving through the
// bottom edge is merged into the top one. When both leave, the bottom label
// absorbs the top one. An empty text yields a single label.
func (l Layout) Stack(top, bottom string, topY, bottomY, x float64, align Align) []Label {
	switch {
	case top == "" && bottom == "":
		return nil
	case bottom == "":
		return []Label{l.Single(top, x, topY, align)}
	case top == "":
		return []Label{l.Single(bottom, x, bottomY, align)}
	}

	upper := l.Above(top, x, topY, align)
	lower := l.Below(bottom, x, bottomY, align)
	merged := top + mergeSeparator + bottom

	if upper.Box.Top < l.bounds.Top {
		return []Label{l.Clamp(l.Below(merged, x, bottomY, align))}
	}
	if lower.Box.Bottom > l.bounds.Bottom {
		return []Label{l.Clamp(l.Above(merged, x, topY, align))}
	}

	return []Label{upper, lower}
}

// Span places the labels of a date range between the pixels left and right:
// the start label left-aligned at left and the finish label right-aligned at
// right. When the two would come closer than twice the margin they are
// replaced by one centered label joining both dates.
func (l Layout) Span(start, finish string, left, right, top float64) []Label {
	first := l.Clamp(l.Place(start, left, top, AlignLeft))
	second := l.Clamp(l.Place(finish, right, top, AlignRight))

	if second.Box.Left < first.Box.Right+2*l.margin {
		return []Label{l.Clamp(l.Place(start+rangeSeparator+finish, (left+right)/2, top, AlignCenter))}
	}

	return []Label{first, second}
}

// Resolve merges overlapping labels until no two overlap. The merged label
// keeps the alignment and position of the earlier one and joins both texts
// in their original order.
func (l Layout) Resolve(labels []Label) []Label {
	out := append([]Label(nil), labels...)

	for {
		i, j, found := firstOverlap(out)
		if !found {
			return out
		}

		merged := l.Place(out[i].Text+mergeSeparator+out[j].Text, out[i].anchor(), out[i].Box.Top, out[i].Align)
		out[i] = l.Clamp(merged)
		out = append(out[:j], out[j+1:]...)
	}
}

func firstOverlap(labels []Label) (int, int, bool) {
	for i := range labels {
		for j := i + 1; j < len(labels); j++ {
			if labels[i].Box.Overlaps(labels[j].Box) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
