package main

import (
	"context"
	"fmt"

	"github.com/christophergentle/goaltracker/internal/formatter"
	"github.com/christophergentle/goaltracker/internal/store"
)

func (a *app) runTask(ctx context.Context, args []string) error {
	action, args, err := requireAction("task", args)
	if err != nil {
		return err
	}

	switch action {
	case "add":
		return a.addTask(ctx, args)
	case "list":
		return a.listTasks(ctx)
	case "edit":
		return a.editTask(ctx, args)
	case "rm":
		return a.removeTask(ctx, args)
	default:
		return fmt.Errorf("unknown task action %q", action)
	}
}

func (a *app) addTask(ctx context.Context, args []string) error {
	fs := newFlagSet("task add")
	title := fs.String("title", "", "Task title (required)")
	start := fs.Float64("start", 0, "Start value")
	var target optionalFloat
	fs.Var(&target, "target", "Target value (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	task, err := a.store.CreateTask(ctx, store.Task{Title: *title, StartValue: *start, TargetValue: target.ptr()})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created task #%d\n", task.ID)
	return nil
}

func (a *app) listTasks(ctx context.Context) error {
	tasks, err := a.store.ListTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return nil
	}

	for _, task := range tasks {
		last, date, err := a.store.LastValue(ctx, task.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, formatter.FormatTaskLine(formatter.TaskLine{
			ID:          task.ID,
			Title:       task.Title,
			StartValue:  task.StartValue,
			TargetValue: task.TargetValue,
			LastValue:   last,
			LastDate:    date,
		}, a.today))
	}
	return nil
}

func (a *app) editTask(ctx context.Context, args []string) error {
	fs := newFlagSet("task edit")
	id := fs.Int64("id", 0, "Task id (required)")
	title := fs.String("title", "", "New title")
	var start, target optionalFloat
	fs.Var(&start, "start", "New start value")
	fs.Var(&target, "target", "New target value")
	noTarget := fs.Bool("no-target", false, "Remove the target value")
	if err := fs.Parse(args); err != nil {
		return err
	}

	task, err := a.store.GetTask(ctx, *id)
	if err != nil {
		return err
	}

	if *title != "" {
		task.Title = *title
	}
	if start.set {
		task.StartValue = start.value
	}
	if target.set {
		task.TargetValue = target.ptr()
	}
	if *noTarget {
		task.TargetValue = nil
	}

	if _, err := a.store.UpdateTask(ctx, task); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Updated task #%d\n", task.ID)
	return nil
}

func (a *app) removeTask(ctx context.Context, args []string) error {
	fs := newFlagSet("task rm")
	id := fs.Int64("id", 0, "Task id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.store.DeleteTask(ctx, *id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Deleted task #%d\n", *id)
	return nil
}
