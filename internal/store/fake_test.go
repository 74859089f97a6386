package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo keeps items in memory and understands only the expressions the
// store sends.
type fakeDynamo struct {
	keys   map[string][]string
	tables map[string]map[string]map[string]types.AttributeValue
	calls  map[string]int

	// unprocessed batch writes are returned unprocessed once, one item per call
	unprocessed int
}

func newFakeDynamo(tables Tables) *fakeDynamo {
	return &fakeDynamo{
		keys: map[string][]string{
			tables.Tasks:    {"id"},
			tables.Reports:  {"taskId", "date"},
			tables.Counters: {"name"},
		},
		tables: map[string]map[string]map[string]types.AttributeValue{
			tables.Tasks:    {},
			tables.Reports:  {},
			tables.Counters: {},
		},
		calls: map[string]int{},
	}
}

func newTestStore() (*Store, *fakeDynamo) {
	tables := DefaultTables()
	fake := newFakeDynamo(tables)
	return NewStoreWithClient(fake, tables), fake
}

func attrString(v types.AttributeValue) string {
	switch av := v.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + av.Value
	case *types.AttributeValueMemberN:
		return "N:" + av.Value
	default:
		return fmt.Sprintf("%T", v)
	}
}

func (f *fakeDynamo) keyOf(table string, item map[string]types.AttributeValue) string {
	parts := make([]string, 0, 2)
	for _, name := range f.keys[table] {
		parts = append(parts, attrString(item[name]))
	}
	return strings.Join(parts, "|")
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.calls["GetItem"]++
	table := aws.ToString(params.TableName)
	return &dynamodb.GetItemOutput{Item: f.tables[table][f.keyOf(table, params.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.calls["PutItem"]++
	table := aws.ToString(params.TableName)
	key := f.keyOf(table, params.Item)
	_, exists := f.tables[table][key]

	condition := aws.ToString(params.ConditionExpression)
	switch {
	case strings.HasPrefix(condition, "attribute_not_exists") && exists,
		strings.HasPrefix(condition, "attribute_exists") && !exists:
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}

	f.tables[table][key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.calls["UpdateItem"]++
	table := aws.ToString(params.TableName)

	switch aws.ToString(params.UpdateExpression) {
	case "ADD seq :one":
	case "SET seq = :seq":
		return f.setCounter(table, params)
	default:
		return nil, fmt.Errorf("unsupported update %q", aws.ToString(params.UpdateExpression))
	}

	key := f.keyOf(table, params.Key)
	item, ok := f.tables[table][key]
	if !ok {
		item = map[string]types.AttributeValue{}
		for k, v := range params.Key {
			item[k] = v
		}
	}

	seq := int64(0)
	if n, ok := item["seq"].(*types.AttributeValueMemberN); ok {
		seq, _ = strconv.ParseInt(n.Value, 10, 64)
	}
	seq++
	item["seq"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(seq, 10)}
	f.tables[table][key] = item

	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{"seq": item["seq"]}}, nil
}

func (f *fakeDynamo) setCounter(table string, params *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
	key := f.keyOf(table, params.Key)
	value := params.ExpressionAttributeValues[":seq"].(*types.AttributeValueMemberN)
	want, _ := strconv.ParseInt(value.Value, 10, 64)

	if item, ok := f.tables[table][key]; ok {
		if n, ok := item["seq"].(*types.AttributeValueMemberN); ok {
			current, _ := strconv.ParseInt(n.Value, 10, 64)
			if current >= want {
				return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
			}
		}
	}

	item := map[string]types.AttributeValue{"seq": value}
	for k, v := range params.Key {
		item[k] = v
	}
	f.tables[table][key] = item
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.calls["DeleteItem"]++
	table := aws.ToString(params.TableName)
	delete(f.tables[table], f.keyOf(table, params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.calls["Query"]++
	if aws.ToString(params.KeyConditionExpression) != "taskId = :taskId" {
		return nil, fmt.Errorf("unsupported key condition %q", aws.ToString(params.KeyConditionExpression))
	}

	table := aws.ToString(params.TableName)
	want := attrString(params.ExpressionAttributeValues[":taskId"])

	var items []map[string]types.AttributeValue
	for _, item := range f.tables[table] {
		if attrString(item["taskId"]) == want {
			items = append(items, item)
		}
	}

	forward := params.ScanIndexForward == nil || *params.ScanIndexForward
	sort.Slice(items, func(i, j int) bool {
		a, b := attrString(items[i]["date"]), attrString(items[j]["date"])
		if forward {
			return a < b
		}
		return a > b
	})

	return &dynamodb.QueryOutput{Items: items, Count: int32(len(items))}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.calls["Scan"]++
	table := aws.ToString(params.TableName)

	items := make([]map[string]types.AttributeValue, 0, len(f.tables[table]))
	for _, item := range f.tables[table] {
		items = append(items, item)
	}
	return &dynamodb.ScanOutput{Items: items, Count: int32(len(items))}, nil
}

func (f *fakeDynamo) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.calls["BatchWriteItem"]++
	out := &dynamodb.BatchWriteItemOutput{}
	for table, requests := range params.RequestItems {
		if len(requests) > 25 {
			return nil, fmt.Errorf("batch of %d exceeds 25 items", len(requests))
		}
		if f.unprocessed > 0 && len(requests) > 0 {
			f.unprocessed--
			out.UnprocessedItems = map[string][]types.WriteRequest{table: requests[len(requests)-1:]}
			requests = requests[:len(requests)-1]
		}
		for _, r := range requests {
			switch {
			case r.DeleteRequest != nil:
				delete(f.tables[table], f.keyOf(table, r.DeleteRequest.Key))
			case r.PutRequest != nil:
				f.tables[table][f.keyOf(table, r.PutRequest.Item)] = r.PutRequest.Item
			}
		}
	}
	return out, nil
}
