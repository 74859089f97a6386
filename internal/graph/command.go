package graph

import "image/color"

// Kind is the drawing primitive of a command
type Kind int

const (
	Line Kind = iota
	Rect
	Text
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Rect:
		return "rect"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Align is the horizontal anchor of a label
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Style describes how a command is painted
type Style struct {
	Color     color.NRGBA
	Width     float64
	Bold      bool
	Shadow    bool
	AntiAlias bool
}

// Palette holds the styles of every graph element
type Palette struct {
	Background            Style
	Grid                  Style
	Axes                  Style
	CurrentValue          Style
	Progress              Style
	SelectedDate          Style
	SelectedValue         Style
	SelectedValueNegative Style
	Labels                Style
}

// DefaultPalette returns the dark graph palette
func DefaultPalette() Palette {
	return Palette{
		Background:            Style{Color: color.NRGBA{0, 0, 0, 255}},                                   // Black
		Grid:                  Style{Color: color.NRGBA{32, 32, 32, 255}, Width: 1},                      // Dark gray
		Axes:                  Style{Color: color.NRGBA{255, 255, 255, 255}, Width: 1},                   // White
		CurrentValue:          Style{Color: color.NRGBA{0, 64, 0, 255}, Width: 1},                        // Dark green
		Progress:              Style{Color: color.NRGBA{64, 255, 64, 255}, Width: 1.5, AntiAlias: true}, // Bright green
		SelectedDate:          Style{Color: color.NRGBA{128, 128, 128, 255}},                             // Gray
		SelectedValue:         Style{Color: color.NRGBA{64, 128, 64, 192}},                               // Translucent green
		SelectedValueNegative: Style{Color: color.NRGBA{192, 96, 96, 192}},                               // Translucent red
		Labels:                Style{Color: color.NRGBA{255, 255, 255, 255}, Bold: true, Shadow: true},  // White
	}
}

// Command is one draw instruction. Lines go from (X1, Y1) to (X2, Y2). Rects
// and text use (X1, Y1) as the top-left and (X2, Y2) as the bottom-right
// corner.
type Command struct {
	Kind  Kind
	X1    float64
	Y1    float64
	X2    float64
	Y2    float64
	Text  string
	Align Align
	Style Style
}

func lineCommand(x1, y1, x2, y2 int, style Style) Command {
	return Command{Kind: Line, X1: float64(x1), Y1: float64(y1), X2: float64(x2), Y2: float64(y2), Style: style}
}

func rectCommand(x1, y1, x2, y2 int, style Style) Command {
	return Command{Kind: Rect, X1: float64(x1), Y1: float64(y1), X2: float64(x2), Y2: float64(y2), Style: style}
}

func textCommand(l Label, style Style) Command {
	return Command{
		Kind:  Text,
		X1:    l.Box.Left,
		Y1:    l.Box.Top,
		X2:    l.Box.Right,
		Y2:    l.Box.Bottom,
		Text:  l.Text,
		Align: l.Align,
		Style: style,
	}
}
