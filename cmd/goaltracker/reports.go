package main

import (
	"context"
	"fmt"

	"github.com/christophergentle/goaltracker/internal/formatter"
	"github.com/christophergentle/goaltracker/internal/store"
)

func (a *app) runReport(ctx context.Context, args []string) error {
	action, args, err := requireAction("report", args)
	if err != nil {
		return err
	}

	switch action {
	case "add":
		return a.addReport(ctx, args)
	case "list":
		return a.listReports(ctx, args)
	case "edit":
		return a.editReport(ctx, args)
	case "rm":
		return a.removeReport(ctx, args)
	default:
		return fmt.Errorf("unknown report action %q", action)
	}
}

func (a *app) addReport(ctx context.Context, args []string) error {
	fs := newFlagSet("report add")
	taskID := fs.Int64("task", 0, "Task id (required)")
	date := fs.String("date", a.today.Format(formatter.SQLDateLayout), "Report date (YYYY-MM-DD)")
	relative := fs.Bool("relative", false, "Value is a change since the previous report")
	var value optionalFloat
	fs.Var(&value, "value", "Reported value (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !value.set {
		return fmt.Errorf("-value is required")
	}

	report, err := a.store.CreateReport(ctx, store.Report{
		TaskID:   *taskID,
		Date:     *date,
		Value:    value.value,
		Relative: *relative,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created report #%d\n", report.ID)
	return nil
}

func (a *app) listReports(ctx context.Context, args []string) error {
	fs := newFlagSet("report list")
	taskID := fs.Int64("task", 0, "Task id (required)")
	oldestFirst := fs.Bool("oldest-first", false, "List the oldest report first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	task, err := a.store.GetTask(ctx, *taskID)
	if err != nil {
		return err
	}

	reports, err := a.store.ListReports(ctx, task.ID, !*oldestFirst)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n", task.Title)
	if len(reports) == 0 {
		fmt.Fprintln(a.out, "No reports")
		return nil
	}
	for _, r := range reports {
		fmt.Fprintln(a.out, formatter.FormatReportLine(r.ID, r.Date, r.Value, r.Relative, a.today))
	}
	return nil
}

func (a *app) editReport(ctx context.Context, args []string) error {
	fs := newFlagSet("report edit")
	taskID := fs.Int64("task", 0, "Task id (required)")
	id := fs.Int64("id", 0, "Report id (required)")
	date := fs.String("date", "", "New date (YYYY-MM-DD)")
	relative := fs.String("relative", "", "true or false")
	var value optionalFloat
	fs.Var(&value, "value", "New value")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := a.store.GetReport(ctx, *taskID, *id)
	if err != nil {
		return err
	}

	if *date != "" {
		report.Date = *date
	}
	if value.set {
		report.Value = value.value
	}
	switch *relative {
	case "":
	case "true":
		report.Relative = true
	case "false":
		report.Relative = false
	default:
		return fmt.Errorf("-relative must be true or false, got %q", *relative)
	}

	if _, err := a.store.UpdateReport(ctx, report); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Updated report #%d\n", report.ID)
	return nil
}

func (a *app) removeReport(ctx context.Context, args []string) error {
	fs := newFlagSet("report rm")
	taskID := fs.Int64("task", 0, "Task id (required)")
	id := fs.Int64("id", 0, "Report id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.store.DeleteReport(ctx, *taskID, *id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Deleted report #%d\n", *id)
	return nil
}
