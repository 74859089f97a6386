package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrNotFound is returned when a task or report does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateReport is returned when a task already has a report for a date
	ErrDuplicateReport = errors.New("report already exists for this date")
)

// DynamoAPI is the part of the DynamoDB client the store uses
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Tables names the DynamoDB tables of the store.
//
// Tasks is keyed by "id" (N), Reports by "taskId" (N) and "date" (S), and
// Counters by "name" (S).
type Tables struct {
	Tasks    string
	Reports  string
	Counters string
}

// DefaultTables returns the default table names
func DefaultTables() Tables {
	return Tables{
		Tasks:    "goaltracker-tasks",
		Reports:  "goaltracker-reports",
		Counters: "goaltracker-counters",
	}
}

// Store persists tasks and their reports in DynamoDB
type Store struct {
	client DynamoAPI
	tables Tables
}

// NewStore creates a store using the default AWS configuration
func NewStore(ctx context.Context, tables Tables, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewStoreWithClient(dynamodb.NewFromConfig(cfg), tables), nil
}

// NewStoreWithClient creates a store on top of an existing client
func NewStoreWithClient(client DynamoAPI, tables Tables) *Store {
	return &Store{client: client, tables: tables}
}

// Tables returns the table names used by the store
func (s *Store) Tables() Tables {
	return s.tables
}

// nextID increments the named counter and returns its new value
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tables.Counters),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: name},
		},
		UpdateExpression: aws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}

	seq, ok := result.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("counter %s returned no sequence", name)
	}

	id, err := strconv.ParseInt(seq.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s id: %w", name, err)
	}
	return id, nil
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func numberKey(id int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)}
}
