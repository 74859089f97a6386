package store

import (
	"context"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/formatter"
	"github.com/christophergentle/goaltracker/internal/graph"
)

// GraphTask converts a stored task to its graph form
func GraphTask(task Task) graph.Task {
	return graph.Task{
		Title:       task.Title,
		StartValue:  task.StartValue,
		TargetValue: task.TargetValue,
	}
}

// Samples resolves reports into absolute dated values for the graph.
// Reports are applied in date order starting from the task's start value;
// relative reports add to the running value. Reports whose date does not
// parse are skipped with a warning.
func Samples(task Task, reports []Report) []graph.Report {
	type dated struct {
		day    time.Time
		report Report
	}

	parsed := make([]dated, 0, len(reports))
	for _, r := range reports {
		day, err := time.Parse(formatter.SQLDateLayout, r.Date)
		if err != nil {
			log.WithFields(log.Fields{
				"taskId":   task.ID,
				"reportId": r.ID,
				"date":     r.Date,
			}).Warn("Skipping report with invalid date")
			continue
		}
		parsed = append(parsed, dated{day: day, report: r})
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].day.Before(parsed[j].day)
	})

	samples := make([]graph.Report, 0, len(parsed))
	running := task.StartValue
	for _, d := range parsed {
		if d.report.Relative {
			running += d.report.Value
		} else {
			running = d.report.Value
		}
		samples = append(samples, graph.Report{Date: d.day, Value: running})
	}

	return samples
}

// GraphData loads a task and its resolved samples
func (s *Store) GraphData(ctx context.Context, taskID int64) (graph.Task, []graph.Report, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return graph.Task{}, nil, err
	}

	reports, err := s.ListReports(ctx, taskID, false)
	if err != nil {
		return graph.Task{}, nil, err
	}

	return GraphTask(task), Samples(task, reports), nil
}

// LastValue returns the latest resolved value of a task and the date it was
// reported on. A task without reports returns its start value and "".
func (s *Store) LastValue(ctx context.Context, taskID int64) (float64, string, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return 0, "", err
	}

	reports, err := s.ListReports(ctx, taskID, false)
	if err != nil {
		return 0, "", err
	}

	samples := Samples(task, reports)
	if len(samples) == 0 {
		return task.StartValue, "", nil
	}

	last := samples[len(samples)-1]
	return last.Value, last.Date.Format(formatter.SQLDateLayout), nil
}
