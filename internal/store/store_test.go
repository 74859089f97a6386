package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestCreateAndGetTask(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	first, err := s.CreateTask(ctx, Task{Title: "Push-ups", StartValue: 0, TargetValue: floatPtr(100)})
	require.NoError(t, err)
	second, err := s.CreateTask(ctx, Task{Title: "Weight", StartValue: 80})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	got, err := s.GetTask(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Push-ups", got.Title)
	require.NotNil(t, got.TargetValue)
	assert.Equal(t, 100.0, *got.TargetValue)

	got, err = s.GetTask(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TargetValue)
	assert.Equal(t, 80.0, got.StartValue)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	s, fake := newTestStore()

	_, err := s.CreateTask(context.Background(), Task{Title: "  "})
	assert.Error(t, err)
	assert.Zero(t, fake.calls["PutItem"])
}

func TestGetTaskNotFound(t *testing.T) {
	s, _ := newTestStore()

	_, err := s.GetTask(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTasksSortedByTitle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	for _, title := range []string{"running", "Books", "Savings", "books"} {
		_, err := s.CreateTask(ctx, Task{Title: title})
		require.NoError(t, err)
	}

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)

	var titles []string
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"Books", "books", "running", "Savings"}, titles)
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	task, err := s.CreateTask(ctx, Task{Title: "Push-ups"})
	require.NoError(t, err)

	task.Title = "Pull-ups"
	task.TargetValue = floatPtr(20)
	updated, err := s.UpdateTask(ctx, task)
	require.NoError(t, err)
	assert.True(t, task.CreatedAt.Equal(updated.CreatedAt))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pull-ups", got.Title)
	assert.Equal(t, 20.0, *got.TargetValue)

	_, err = s.UpdateTask(ctx, Task{ID: 99, Title: "Missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReportRejectsDuplicateDate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	task, err := s.CreateTask(ctx, Task{Title: "Push-ups"})
	require.NoError(t, err)

	_, err = s.CreateReport(ctx, Report{TaskID: task.ID, Date: "2024-03-02", Value: 10})
	require.NoError(t, err)

	_, err = s.CreateReport(ctx, Report{TaskID: task.ID, Date: "2024-03-02", Value: 12})
	assert.ErrorIs(t, err, ErrDuplicateReport)
}

func TestCreateReportValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	_, err := s.CreateReport(ctx, Report{TaskID: 1, Date: "2024-03-02", Value: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	task, err := s.CreateTask(ctx, Task{Title: "Push-ups"})
	require.NoError(t, err)

	_, err = s.CreateReport(ctx, Report{TaskID: task.ID, Date: "March 2nd", Value: 1})
	assert.Error(t, err)
}

func TestListReportsOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	task, err := s.CreateTask(ctx, Task{Title: "Push-ups"})
	require.NoError(t, err)

	for _, date := range []string{"2024-03-05", "2024-03-01", "2024-03-03"} {
		_, err := s.CreateReport(ctx, Report{TaskID: task.ID, Date: date, Value: 1})
		require.NoError(t, err)
	}

	ascending, err := s.ListReports(ctx, task.ID, false)
	require.NoError(t, err)
	require.Len(t, ascending, 3)
	assert.Equal(t, "2024-03-01", ascending[0].Date)
	assert.Equal(t, "2024-03-05", ascending[2].Date)

	descending, err := s.ListReports(ctx, task.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", descending[0].Date)
}

func TestUpdateReportMovesDate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	task, err := s.CreateTask(ctx, Task{Title: "Push-ups"})
	require.NoError(t, err)
	first, err := s.CreateReport(ctx, Report{TaskID: task.ID, Date: "2024-03-01", Value: 5})
	require.NoError(t, err)
	_, err = s.CreateReport(ctx, Report{TaskID: task.ID, Date: "2024-03-04", Value: 9})
	require.NoError(t, err)

	first.Value = 6
	_, err = s.UpdateReport(ctx, first)
	require.NoError(t, err)

	first.Date = "2024-03-04"
	_, err = s.UpdateReport(ctx, first)
	assert.ErrorIs(t, err, ErrDuplicateReport)

	first.Date = "2024-03-02"
	_, err = s.UpdateReport(ctx, first)
	require.NoError(t, err)

	reports, err := s.ListReports(ctx, task.ID, false)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "2024-03-02", reports[0].Date)
	assert.Equal(t, 6.0, reports[0].Value)
	assert.Equal(t, first.ID, reports[0].ID)
}

func TestDeleteReport(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	task, err := s.CreateTask(ctx, Task{Title: "Push-ups"})
	require.NoError(t, err)
	report, err := s.CreateReport(ctx, Report{TaskID: task.ID, Date: "2024-03-01", Value: 5})
	require.NoError(t, err)

	require.NoError(t, s.DeleteReport(ctx, task.ID, report.ID))
	assert.ErrorIs(t, s.DeleteReport(ctx, task.ID, report.ID), ErrNotFound)
}

func TestDeleteTaskCascades(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestStore()

	task, err := s.CreateTask(ctx, Task{Title: "Push-ups"})
	require.NoError(t, err)
	other, err := s.CreateTask(ctx, Task{Title: "Reading"})
	require.NoError(t, err)

	for i := 1; i <= 30; i++ {
		_, err := s.CreateReport(ctx, Report{TaskID: task.ID, Date: fmt.Sprintf("2024-01-%02d", i), Value: float64(i)})
		require.NoError(t, err)
	}
	_, err = s.CreateReport(ctx, Report{TaskID: other.ID, Date: "2024-01-01", Value: 1})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	assert.Equal(t, 2, fake.calls["BatchWriteItem"])

	_, err = s.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	remaining, err := s.ListReports(ctx, task.ID, false)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	kept, err := s.ListReports(ctx, other.ID, false)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
