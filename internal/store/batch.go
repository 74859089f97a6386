package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

// DynamoDB accepts at most 25 requests per batch write
const batchSize = 25

const maxBatchRetries = 5

// retryBackoff is the base delay between batch retries
var retryBackoff = 500 * time.Millisecond

// BatchPutReports writes reports as is, keeping their ids. Existing reports
// for the same task and date are overwritten.
func (s *Store) BatchPutReports(ctx context.Context, reports []Report, progressFunc func(int)) error {
	requests := make([]types.WriteRequest, 0, len(reports))
	for _, r := range reports {
		item, err := attributevalue.MarshalMap(r)
		if err != nil {
			return fmt.Errorf("failed to marshal report %d: %w", r.ID, err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	return s.batchWrite(ctx, s.tables.Reports, requests, progressFunc)
}

// batchDelete removes keys from a table
func (s *Store) batchDelete(ctx context.Context, table string, keys []map[string]types.AttributeValue) error {
	requests := make([]types.WriteRequest, 0, len(keys))
	for _, key := range keys {
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
	}
	return s.batchWrite(ctx, table, requests, nil)
}

// batchWrite sends requests in batches, retrying errors and unprocessed
// items with a linear backoff
func (s *Store) batchWrite(ctx context.Context, table string, requests []types.WriteRequest, progressFunc func(int)) error {
	totalBatches := (len(requests) + batchSize - 1) / batchSize

	for i := 0; i < len(requests); i += batchSize {
		end := i + batchSize
		if end > len(requests) {
			end = len(requests)
		}
		batchNum := i/batchSize + 1

		pending := map[string][]types.WriteRequest{table: requests[i:end]}
		for retry := 0; len(pending) > 0; retry++ {
			if retry == maxBatchRetries {
				return fmt.Errorf("failed to write %d items to %s after %d retries (batch %d/%d)", len(pending[table]), table, maxBatchRetries, batchNum, totalBatches)
			}
			if retry > 0 {
				backoff := time.Duration(retry) * retryBackoff
				log.Printf("Retrying batch %d/%d on %s in %v", batchNum, totalBatches, table, backoff)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}
			}

			result, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				if retry < maxBatchRetries-1 {
					log.WithError(err).Warnf("Batch %d/%d on %s failed", batchNum, totalBatches, table)
					continue
				}
				return fmt.Errorf("failed to batch write to %s (batch %d/%d): %w", table, batchNum, totalBatches, err)
			}
			pending = result.UnprocessedItems
		}

		if progressFunc != nil {
			progressFunc(end - i)
		}
	}

	return nil
}

// AdvanceCounter raises a counter to at least value, so ids allocated after a
// restore do not collide with restored ones
func (s *Store) AdvanceCounter(ctx context.Context, name string, value int64) error {
	seq := &types.AttributeValueMemberN{Value: strconv.FormatInt(value, 10)}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tables.Counters),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: name},
		},
		UpdateExpression:          aws.String("SET seq = :seq"),
		ConditionExpression:       aws.String("attribute_not_exists(seq) OR seq < :seq"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":seq": seq},
	})
	if err != nil && !isConditionFailure(err) {
		return fmt.Errorf("failed to advance %s counter: %w", name, err)
	}
	return nil
}
