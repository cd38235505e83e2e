package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"eventfriend_server/storage"
)

// DynamoAPI is the subset of *dynamodb.Client the service uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoService wraps the DynamoDB client with the table-level helpers the
// store is written against.
type DynamoService struct {
	Client DynamoAPI
}

// InitializeDynamoDBClient initializes the DynamoDB client. A non-empty
// endpoint points the client at DynamoDB Local.
func InitializeDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// isConditionFailed reports whether err is a failed ConditionExpression.
func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// PutItem marshals item and writes it, replacing any existing item.
func (ds *DynamoService) PutItem(ctx context.Context, tableName string, item interface{}) error {
	return ds.putItem(ctx, tableName, item, "")
}

// PutItemIfAbsent writes item only when no item with the same partition key
// exists. It returns storage.ErrAlreadyExists otherwise.
func (ds *DynamoService) PutItemIfAbsent(ctx context.Context, tableName, keyAttr string, item interface{}) error {
	return ds.putItem(ctx, tableName, item, fmt.Sprintf("attribute_not_exists(%s)", keyAttr))
}

func (ds *DynamoService) putItem(ctx context.Context, tableName string, item interface{}, condition string) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      marshaledItem,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	slog.Debug("📥 Inserting item", "table", tableName, "conditional", condition != "")
	if _, err := ds.Client.PutItem(ctx, input); err != nil {
		if condition != "" && isConditionFailed(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

// GetItem retrieves an item and unmarshals it into out. It returns
// storage.ErrNotFound when the key is absent.
func (ds *DynamoService) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue, out interface{}) error {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(tableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}
	if output.Item == nil {
		return storage.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(output.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item from table '%s': %w", tableName, err)
	}
	return nil
}

// UpdateItem runs an update expression. A non-empty condition that fails is
// reported as storage.ErrNotFound, since every condition used here is an
// existence check.
func (ds *DynamoService) UpdateItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpression string,
	expressionAttributeNames map[string]string,
	expressionAttributeValues map[string]types.AttributeValue,
	condition string,
) error {
	if len(key) == 0 {
		return errors.New("update failed: key cannot be empty")
	}
	if updateExpression == "" {
		return errors.New("update failed: updateExpression cannot be empty")
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpression),
		ExpressionAttributeNames:  expressionAttributeNames,
		ExpressionAttributeValues: expressionAttributeValues,
	}
	if len(expressionAttributeNames) == 0 {
		input.ExpressionAttributeNames = nil
	}
	if len(expressionAttributeValues) == 0 {
		input.ExpressionAttributeValues = nil
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	slog.Debug("🔄 Updating item", "table", tableName, "update", updateExpression)
	if _, err := ds.Client.UpdateItem(ctx, input); err != nil {
		if condition != "" && isConditionFailed(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to update item in table '%s': %w", tableName, err)
	}
	return nil
}

// IncrementCounter atomically adds one to a numeric attribute and returns
// the new value. A failed condition is reported as storage.ErrNotFound.
func (ds *DynamoService) IncrementCounter(ctx context.Context, tableName string, key map[string]types.AttributeValue, attr, condition string) (int, error) {
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       key,
		UpdateExpression:          aws.String("ADD #count :one"),
		ExpressionAttributeNames:  map[string]string{"#count": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
		ReturnValues:              types.ReturnValueUpdatedNew,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	output, err := ds.Client.UpdateItem(ctx, input)
	if err != nil {
		if condition != "" && isConditionFailed(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment %s in table '%s': %w", attr, tableName, err)
	}
	var count int
	if err := attributevalue.Unmarshal(output.Attributes[attr], &count); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", attr, err)
	}
	return count, nil
}

// DeleteItem removes an item from DynamoDB
func (ds *DynamoService) DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error {
	_, err := ds.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from table '%s': %w", tableName, err)
	}
	return nil
}

// QueryAll runs input to completion, following LastEvaluatedKey.
func (ds *DynamoService) QueryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		output, err := ds.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query table '%s': %w", aws.ToString(input.TableName), err)
		}
		items = append(items, output.Items...)
		if len(output.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

// QueryItemsWithIndex queries a Global Secondary Index for attr = value.
func (ds *DynamoService) QueryItemsWithIndex(ctx context.Context, tableName, indexName, attr, value string) ([]map[string]types.AttributeValue, error) {
	slog.Debug("🔍 Querying GSI", "index", indexName, "table", tableName)
	items, err := ds.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query GSI '%s': %w", indexName, err)
	}
	return items, nil
}

// QueryItemsWithOptions queries a partition with sorting and a limit.
// latestFirst=true reads the sort key descending.
func (ds *DynamoService) QueryItemsWithOptions(ctx context.Context, tableName, attr, value string, limit int32, latestFirst bool) ([]map[string]types.AttributeValue, error) {
	output, err := ds.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
		Limit:            aws.Int32(limit),
		ScanIndexForward: aws.Bool(!latestFirst),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query table '%s': %w", tableName, err)
	}
	return output.Items, nil
}

// ScanAll reads a whole table. Only used for small tables.
func (ds *DynamoService) ScanAll(ctx context.Context, tableName string) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(tableName)}
	var items []map[string]types.AttributeValue
	for {
		output, err := ds.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", tableName, err)
		}
		items = append(items, output.Items...)
		if len(output.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

// BatchWriteItems writes multiple requests in batches of 25
func (ds *DynamoService) BatchWriteItems(ctx context.Context, tableName string, writeRequests []types.WriteRequest) error {
	const maxBatchSize = 25

	for i := 0; i < len(writeRequests); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		pending := map[string][]types.WriteRequest{tableName: writeRequests[i:end]}
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > 0 {
				if err := sleepCtx(ctx, batchBackoff(attempt)); err != nil {
					return fmt.Errorf("batch write to table '%s' interrupted: %w", tableName, err)
				}
				slog.Debug("🔁 Retrying unprocessed items", "table", tableName, "attempt", attempt)
			}
			output, err := ds.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("failed to batch write items to table '%s': %w", tableName, err)
			}
			pending = output.UnprocessedItems
		}
	}
	return nil
}

const (
	batchRetryBase = 50 * time.Millisecond
	batchRetryMax  = 2 * time.Second
)

// batchBackoff doubles from batchRetryBase up to batchRetryMax.
func batchBackoff(attempt int) time.Duration {
	d := batchRetryBase
	for i := 1; i < attempt && d < batchRetryMax; i++ {
		d *= 2
	}
	if d > batchRetryMax {
		d = batchRetryMax
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
