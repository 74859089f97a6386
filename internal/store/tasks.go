package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

// Task is a goal with a start value and an optional target value
type Task struct {
	ID          int64     `json:"id" dynamodbav:"id"`
	Title       string    `json:"title" dynamodbav:"title"`
	StartValue  float64   `json:"startValue" dynamodbav:"startValue"`
	TargetValue *float64  `json:"targetValue,omitempty" dynamodbav:"targetValue,omitempty"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

func (t Task) validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title is required")
	}
	return nil
}

// CreateTask stores a new task and returns it with its assigned id
func (s *Store) CreateTask(ctx context.Context, task Task) (Task, error) {
	if err := task.validate(); err != nil {
		return Task{}, err
	}

	id, err := s.nextID(ctx, "tasks")
	if err != nil {
		return Task{}, err
	}

	task.ID = id
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt

	if err := s.putTask(ctx, task, "attribute_not_exists(id)"); err != nil {
		return Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	log.Printf("Created task %d %q", task.ID, task.Title)
	return task, nil
}

// GetTask returns the task with the given id
func (s *Store) GetTask(ctx context.Context, id int64) (Task, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tables.Tasks),
		Key:       map[string]types.AttributeValue{"id": numberKey(id)},
	})
	if err != nil {
		return Task{}, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	if result.Item == nil {
		return Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}

	var task Task
	if err := attributevalue.UnmarshalMap(result.Item, &task); err != nil {
		return Task{}, fmt.Errorf("failed to unmarshal task %d: %w", id, err)
	}
	return task, nil
}

// ListTasks returns all tasks ordered by title
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tables.Tasks),
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan tasks: %w", err)
		}

		for _, item := range result.Items {
			var task Task
			if err := attributevalue.UnmarshalMap(item, &task); err != nil {
				log.WithError(err).Warn("Skipping task that failed to unmarshal")
				continue
			}
			tasks = append(tasks, task)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}

	sort.Slice(tasks, func(i, j int) bool {
		a, b := strings.ToLower(tasks[i].Title), strings.ToLower(tasks[j].Title)
		if a != b {
			return a < b
		}
		return tasks[i].ID < tasks[j].ID
	})

	return tasks, nil
}

// UpdateTask replaces the title, start value and target value of a task
func (s *Store) UpdateTask(ctx context.Context, task Task) (Task, error) {
	if err := task.validate(); err != nil {
		return Task{}, err
	}

	existing, err := s.GetTask(ctx, task.ID)
	if err != nil {
		return Task{}, err
	}

	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()

	if err := s.putTask(ctx, task, "attribute_exists(id)"); err != nil {
		if isConditionFailure(err) {
			return Task{}, fmt.Errorf("task %d: %w", task.ID, ErrNotFound)
		}
		return Task{}, fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}

	return task, nil
}

// DeleteTask removes a task together with all of its reports
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	if _, err := s.GetTask(ctx, id); err != nil {
		return err
	}

	reports, err := s.ListReports(ctx, id, false)
	if err != nil {
		return err
	}

	keys := make([]map[string]types.AttributeValue, 0, len(reports))
	for _, r := range reports {
		keys = append(keys, r.key())
	}
	if err := s.batchDelete(ctx, s.tables.Reports, keys); err != nil {
		return fmt.Errorf("failed to delete reports of task %d: %w", id, err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tables.Tasks),
		Key:       map[string]types.AttributeValue{"id": numberKey(id)},
	})
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	log.Printf("Deleted task %d and %d reports", id, len(reports))
	return nil
}

// PutTask writes a task as is, keeping its id. Used when restoring backups.
func (s *Store) PutTask(ctx context.Context, task Task) error {
	return s.putTask(ctx, task, "")
}

func (s *Store) putTask(ctx context.Context, task Task, condition string) error {
	item, err := attributevalue.MarshalMap(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.Tasks),
		Item:      item,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	_, err = s.client.PutItem(ctx, input)
	return err
}
