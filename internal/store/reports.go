package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"

	"github.com/christophergentle/goaltracker/internal/formatter"
)

// Report is a dated value of a task. A relative report holds the change
// since the previous report instead of an absolute value.
type Report struct {
	TaskID   int64   `json:"taskId" dynamodbav:"taskId"`
	Date     string  `json:"date" dynamodbav:"date"` // "2025-01-05"
	ID       int64   `json:"id" dynamodbav:"id"`
	Value    float64 `json:"value" dynamodbav:"value"`
	Relative bool    `json:"relative" dynamodbav:"relative"`
}

func (r Report) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"taskId": numberKey(r.TaskID),
		"date":   &types.AttributeValueMemberS{Value: r.Date},
	}
}

func (r Report) validate() error {
	if _, err := time.Parse(formatter.SQLDateLayout, r.Date); err != nil {
		return fmt.Errorf("invalid report date %q: %w", r.Date, err)
	}
	return nil
}

// CreateReport stores a new report. A task has at most one report per date.
func (s *Store) CreateReport(ctx context.Context, report Report) (Report, error) {
	if err := report.validate(); err != nil {
		return Report{}, err
	}
	if _, err := s.GetTask(ctx, report.TaskID); err != nil {
		return Report{}, err
	}

	id, err := s.nextID(ctx, "reports")
	if err != nil {
		return Report{}, err
	}
	report.ID = id

	if err := s.putReport(ctx, report, "attribute_not_exists(taskId)"); err != nil {
		if isConditionFailure(err) {
			return Report{}, fmt.Errorf("task %d on %s: %w", report.TaskID, report.Date, ErrDuplicateReport)
		}
		return Report{}, fmt.Errorf("failed to create report: %w", err)
	}

	return report, nil
}

// GetReport returns a report of a task by id
func (s *Store) GetReport(ctx context.Context, taskID, id int64) (Report, error) {
	reports, err := s.ListReports(ctx, taskID, false)
	if err != nil {
		return Report{}, err
	}

	for _, r := range reports {
		if r.ID == id {
			return r, nil
		}
	}
	return Report{}, fmt.Errorf("report %d of task %d: %w", id, taskID, ErrNotFound)
}

// ListReports returns the reports of a task ordered by date
func (s *Store) ListReports(ctx context.Context, taskID int64, descending bool) ([]Report, error) {
	var reports []Report
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tables.Reports),
			KeyConditionExpression: aws.String("taskId = :taskId"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":taskId": numberKey(taskID),
			},
			ScanIndexForward:  aws.Bool(!descending),
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query reports of task %d: %w", taskID, err)
		}

		for _, item := range result.Items {
			var report Report
			if err := attributevalue.UnmarshalMap(item, &report); err != nil {
				log.WithError(err).WithField("taskId", taskID).Warn("Skipping report that failed to unmarshal")
				continue
			}
			reports = append(reports, report)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}

	return reports, nil
}

// UpdateReport changes the date, value or relative flag of a report. Moving a
// report onto a date that already has one fails with ErrDuplicateReport.
func (s *Store) UpdateReport(ctx context.Context, report Report) (Report, error) {
	if err := report.validate(); err != nil {
		return Report{}, err
	}

	existing, err := s.GetReport(ctx, report.TaskID, report.ID)
	if err != nil {
		return Report{}, err
	}

	if existing.Date == report.Date {
		if err := s.putReport(ctx, report, "attribute_exists(taskId)"); err != nil {
			return Report{}, fmt.Errorf("failed to update report %d: %w", report.ID, err)
		}
		return report, nil
	}

	if err := s.putReport(ctx, report, "attribute_not_exists(taskId)"); err != nil {
		if isConditionFailure(err) {
			return Report{}, fmt.Errorf("task %d on %s: %w", report.TaskID, report.Date, ErrDuplicateReport)
		}
		return Report{}, fmt.Errorf("failed to update report %d: %w", report.ID, err)
	}

	if err := s.deleteReportKey(ctx, existing); err != nil {
		return Report{}, err
	}

	return report, nil
}

// DeleteReport removes a report of a task
func (s *Store) DeleteReport(ctx context.Context, taskID, id int64) error {
	existing, err := s.GetReport(ctx, taskID, id)
	if err != nil {
		return err
	}
	return s.deleteReportKey(ctx, existing)
}

// PutReport writes a report as is, keeping its id. Used when restoring backups.
func (s *Store) PutReport(ctx context.Context, report Report) error {
	return s.putReport(ctx, report, "")
}

func (s *Store) putReport(ctx context.Context, report Report, condition string) error {
	item, err := attributevalue.MarshalMap(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.Reports),
		Item:      item,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	_, err = s.client.PutItem(ctx, input)
	return err
}

func (s *Store) deleteReportKey(ctx context.Context, report Report) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tables.Reports),
		Key:       report.key(),
	})
	if err != nil {
		return fmt.Errorf("failed to delete report %d: %w", report.ID, err)
	}
	return nil
}
