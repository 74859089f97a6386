// Package lambda serves rendered progress graphs from AWS Lambda
package lambda

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/config"
	"github.com/christophergentle/goaltracker/internal/formatter"
	"github.com/christophergentle/goaltracker/internal/graph"
	"github.com/christophergentle/goaltracker/internal/render"
	"github.com/christophergentle/goaltracker/internal/store"
)

// GraphRequest asks for the graph of one task
type GraphRequest struct {
	TaskID  int64           `json:"taskId"`
	Width   int             `json:"width,omitempty"`
	Height  int             `json:"height,omitempty"`
	Pointer *PointerRequest `json:"pointer,omitempty"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	Today   string          `json:"today,omitempty"`
}

// PointerRequest is a horizontal pointer drag in canvas pixels
type PointerRequest struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
}

// GraphResponse carries the PNG as base64 and the selection under the pointer
type GraphResponse struct {
	StatusCode   int               `json:"statusCode"`
	Image        string            `json:"image,omitempty"`
	Width        int               `json:"width,omitempty"`
	Height       int               `json:"height,omitempty"`
	Selection    *SelectionSummary `json:"selection,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
}

// SelectionSummary describes a pointer selection
type SelectionSummary struct {
	StartDate        string   `json:"startDate"`
	FinishDate       string   `json:"finishDate"`
	StartValue       float64  `json:"startValue"`
	FinishValue      float64  `json:"finishValue"`
	ValueDiff        float64  `json:"valueDiff"`
	Direction        string   `json:"direction"`
	StartPercentage  *float64 `json:"startPercentage,omitempty"`
	FinishPercentage *float64 `json:"finishPercentage,omitempty"`
}

// PNG decodes the image of a successful response
func (r GraphResponse) PNG() ([]byte, error) {
	if r.StatusCode != 200 {
		return nil, fmt.Errorf("graph request failed with status %d: %s", r.StatusCode, r.ErrorMessage)
	}
	return base64.StdEncoding.DecodeString(r.Image)
}

// GraphSource loads a task and its resolved samples
type GraphSource interface {
	GraphData(ctx context.Context, taskID int64) (graph.Task, []graph.Report, error)
}

// GraphHandler renders graphs for Lambda requests
type GraphHandler struct {
	source   GraphSource
	composer *graph.Composer
	renderer *render.Renderer
	config   *config.Config
	now      func() time.Time
}

// NewGraphHandler creates a handler drawing with the configured palette
func NewGraphHandler(cfg *config.Config, source GraphSource) (*GraphHandler, error) {
	composerConfig, err := cfg.ComposerConfig()
	if err != nil {
		return nil, err
	}

	return &GraphHandler{
		source:   source,
		composer: graph.NewComposer(composerConfig, graph.DefaultMeasurer()),
		renderer: render.NewRenderer(),
		config:   cfg,
		now:      time.Now,
	}, nil
}

// HandleRequest renders the requested graph. Failures are reported in the
// response status rather than as invocation errors.
func (h *GraphHandler) HandleRequest(ctx context.Context, req GraphRequest) (GraphResponse, error) {
	log.WithFields(log.Fields{"taskId": req.TaskID, "width": req.Width, "height": req.Height}).Info("Rendering graph")

	input, err := h.input(ctx, req)
	if err != nil {
		status := 500
		switch {
		case errors.Is(err, store.ErrNotFound):
			status = 404
		case errors.Is(err, errBadRequest):
			status = 400
		}
		log.WithError(err).WithField("taskId", req.TaskID).Warn("Graph request failed")
		return GraphResponse{StatusCode: status, ErrorMessage: err.Error()}, nil
	}

	frame := h.composer.Compose(input)
	if frame.Empty() {
		return GraphResponse{StatusCode: 404, ErrorMessage: fmt.Sprintf("task %d has no reports", req.TaskID)}, nil
	}

	png, err := h.renderer.RenderPNG(frame, input.Canvas)
	if err != nil {
		log.WithError(err).Error("Failed to render graph")
		return GraphResponse{StatusCode: 500, ErrorMessage: "failed to render graph: " + err.Error()}, nil
	}

	return GraphResponse{
		StatusCode: 200,
		Image:      base64.StdEncoding.EncodeToString(png),
		Width:      input.Canvas.XMax + 1,
		Height:     input.Canvas.YMax + 1,
		Selection:  summarize(frame),
	}, nil
}

var errBadRequest = errors.New("bad request")

func (h *GraphHandler) input(ctx context.Context, req GraphRequest) (graph.Input, error) {
	width, height := req.Width, req.Height
	if width == 0 {
		width = h.config.Graph.Width
	}
	if height == 0 {
		height = h.config.Graph.Height
	}
	if width <= 0 || height <= 0 || width > 4096 || height > 4096 {
		return graph.Input{}, fmt.Errorf("%w: invalid size %dx%d", errBadRequest, width, height)
	}

	today := h.now()
	if req.Today != "" {
		parsed, err := time.Parse(formatter.SQLDateLayout, req.Today)
		if err != nil {
			return graph.Input{}, fmt.Errorf("%w: invalid today %q", errBadRequest, req.Today)
		}
		today = parsed
	}

	var visible *graph.DateRange
	if req.From != "" || req.To != "" {
		from, errFrom := time.Parse(formatter.SQLDateLayout, req.From)
		to, errTo := time.Parse(formatter.SQLDateLayout, req.To)
		if errFrom != nil || errTo != nil {
			return graph.Input{}, fmt.Errorf("%w: from and to must both be dates", errBadRequest)
		}
		dates := graph.NewDateRange(from, to)
		visible = &dates
	}

	task, reports, err := h.source.GraphData(ctx, req.TaskID)
	if err != nil {
		return graph.Input{}, err
	}

	input := graph.Input{
		Task:    task,
		Reports: reports,
		Canvas:  graph.Canvas{XMax: width - 1, YMax: height - 1},
		Today:   graph.Day(today),
		Visible: visible,
	}
	if req.Pointer != nil {
		input.Pointer = graph.Pointer{Touched: true, X1: req.Pointer.X1, X2: req.Pointer.X2}
	}
	return input, nil
}

func summarize(frame graph.Frame) *SelectionSummary {
	first, last, ok := frame.SelectionDates()
	if !ok {
		return nil
	}

	sel := frame.Selection
	summary := &SelectionSummary{
		StartDate:   first.Format(formatter.SQLDateLayout),
		FinishDate:  last.Format(formatter.SQLDateLayout),
		StartValue:  sel.StartValue,
		FinishValue: sel.FinishValue,
		ValueDiff:   sel.ValueDiff,
		Direction:   sel.Direction.String(),
	}
	if sel.HasPercentage {
		start, finish := sel.StartPercentage, sel.FinishPercentage
		summary.StartPercentage = &start
		summary.FinishPercentage = &finish
	}
	return summary
}
