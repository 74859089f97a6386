package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/formatter"
	"github.com/christophergentle/goaltracker/internal/lambda"
)

func (a *app) runGraph(ctx context.Context, args []string) error {
	fs := newFlagSet("graph")
	taskID := fs.Int64("task", 0, "Task id (required)")
	out := fs.String("out", "", "Output PNG file (required)")
	pointer := fs.String("pointer", "", "Selection as x1,x2 in pixels")
	width := fs.Int("width", a.cfg.Graph.Width, "Image width")
	height := fs.Int("height", a.cfg.Graph.Height, "Image height")
	from := fs.String("from", "", "First visible date (YYYY-MM-DD)")
	to := fs.String("to", "", "Last visible date (YYYY-MM-DD)")
	remote := fs.String("remote", "", "Render with this Lambda function instead of locally")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("-out is required")
	}

	req := lambda.GraphRequest{
		TaskID: *taskID,
		Width:  *width,
		Height: *height,
		From:   *from,
		To:     *to,
		Today:  a.today.Format(formatter.SQLDateLayout),
	}
	if *pointer != "" {
		x1, x2, err := parsePointer(*pointer)
		if err != nil {
			return err
		}
		req.Pointer = &lambda.PointerRequest{X1: x1, X2: x2}
	}

	resp, err := a.renderGraph(ctx, req, *remote)
	if err != nil {
		return err
	}

	data, err := resp.PNG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}

	fmt.Fprintf(a.out, "Wrote %s (%dx%d)\n", *out, resp.Width, resp.Height)
	if sel := resp.Selection; sel != nil {
		fmt.Fprintf(a.out, "Selection %s to %s: %s -> %s (%s)\n",
			sel.StartDate, sel.FinishDate,
			formatter.FormatNumber(sel.StartValue, false),
			formatter.FormatNumber(sel.FinishValue, false),
			formatter.FormatNumber(sel.ValueDiff, true))
	}
	return nil
}

func (a *app) renderGraph(ctx context.Context, req lambda.GraphRequest, function string) (lambda.GraphResponse, error) {
	if function != "" {
		log.Debugf("Rendering task %d with %s", req.TaskID, function)
		remote, err := lambda.NewRemoteRenderer(ctx, function)
		if err != nil {
			return lambda.GraphResponse{}, err
		}
		return remote.Render(ctx, req)
	}

	handler, err := lambda.NewGraphHandler(a.cfg, a.store)
	if err != nil {
		return lambda.GraphResponse{}, err
	}
	return handler.HandleRequest(ctx, req)
}
