// Package render rasterizes graph frames into images
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/christophergentle/goaltracker/internal/graph"
)

// ErrNoCommands is returned for a frame without draw commands
var ErrNoCommands = errors.New("frame has no draw commands")

// Renderer draws frames with gg
type Renderer struct {
	face   font.Face
	shadow color.NRGBA
}

// NewRenderer creates a renderer using the same face as graph.DefaultMeasurer
func NewRenderer() *Renderer {
	return &Renderer{
		face:   basicfont.Face7x13,
		shadow: color.NRGBA{0, 0, 0, 160},
	}
}

// Render draws a frame onto an image covering the canvas. Canvas bounds are
// inclusive, so the image is one pixel larger than XMax and YMax.
func (r *Renderer) Render(frame graph.Frame, canvas graph.Canvas) (image.Image, error) {
	dc, err := r.draw(frame, canvas)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// RenderPNG draws a frame and encodes it as PNG
func (r *Renderer) RenderPNG(frame graph.Frame, canvas graph.Canvas) ([]byte, error) {
	dc, err := r.draw(frame, canvas)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) draw(frame graph.Frame, canvas graph.Canvas) (*gg.Context, error) {
	if len(frame.Commands) == 0 {
		return nil, ErrNoCommands
	}

	width, height := canvas.XMax+1, canvas.YMax+1
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetFontFace(r.face)

	for _, cmd := range frame.Commands {
		switch cmd.Kind {
		case graph.Line:
			r.drawLine(dc, cmd)
		case graph.Rect:
			r.drawRect(dc, cmd)
		case graph.Text:
			r.drawText(dc, cmd)
		}
	}

	return dc, nil
}

func (r *Renderer) drawLine(dc *gg.Context, cmd graph.Command) {
	width := cmd.Style.Width
	if width <= 0 {
		width = 1
	}

	x1, y1, x2, y2 := cmd.X1, cmd.Y1, cmd.X2, cmd.Y2
	if !cmd.Style.AntiAlias {
		// Centre straight lines on pixel rows and columns
		switch {
		case x1 == x2:
			x1, x2 = x1+0.5, x2+0.5
		case y1 == y2:
			y1, y2 = y1+0.5, y2+0.5
		default:
			x1, y1, x2, y2 = x1+0.5, y1+0.5, x2+0.5, y2+0.5
		}
	}

	dc.SetColor(cmd.Style.Color)
	dc.SetLineWidth(width)
	dc.SetLineCapButt()
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
}

func (r *Renderer) drawRect(dc *gg.Context, cmd graph.Command) {
	dc.SetColor(cmd.Style.Color)
	dc.DrawRectangle(cmd.X1, cmd.Y1, cmd.X2-cmd.X1, cmd.Y2-cmd.Y1)
	dc.Fill()
}

// drawText draws text inside the box of cmd, which is measured with
// graph.Decorated and so leaves room for the shadow and bold passes
func (r *Renderer) drawText(dc *gg.Context, cmd graph.Command) {
	baseline := cmd.Y2 - float64(r.face.Metrics().Descent.Ceil())

	if cmd.Style.Shadow {
		baseline--
		dc.SetColor(r.shadow)
		dc.DrawString(cmd.Text, cmd.X1+1, baseline+1)
	}

	dc.SetColor(cmd.Style.Color)
	dc.DrawString(cmd.Text, cmd.X1, baseline)
	if cmd.Style.Bold {
		dc.DrawString(cmd.Text, cmd.X1+1, baseline)
	}
}
