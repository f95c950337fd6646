// Package dynamo stores key-value entries in a DynamoDB table whose partition
// key is the string attribute "key". Writes are conditional on the stored
// version so that several instances can share one table.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/vbonduro/wastenot/internal/store"
)

// API is the subset of *dynamodb.Client used by KV.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type item struct {
	Key     string `dynamodbav:"key"`
	Value   string `dynamodbav:"value"`
	Version int64  `dynamodbav:"version"`
}

type KV struct {
	client    API
	tableName string
}

func New(client API, tableName string) *KV {
	return &KV{client: client, tableName: tableName}
}

// Connect builds a KV from the default AWS credential chain.
func Connect(ctx context.Context, region, tableName string) (*KV, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(dynamodb.NewFromConfig(cfg), tableName), nil
}

func (k *KV) Get(ctx context.Context, key string) (*store.Entry, error) {
	result, err := k.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(k.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"key": &dynamodbtypes.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, store.ErrKeyNotFound
	}

	var it item
	if err := attributevalue.UnmarshalMap(result.Item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return &store.Entry{Key: key, Value: []byte(it.Value), Version: it.Version}, nil
}

func (k *KV) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	next := expectedVersion + 1
	av, err := attributevalue.MarshalMap(item{Key: key, Value: string(value), Version: next})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(k.tableName),
		Item:      av,
	}
	if expectedVersion == 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(#k)")
		input.ExpressionAttributeNames = map[string]string{"#k": "key"}
	} else {
		input.ConditionExpression = aws.String("#v = :expected")
		input.ExpressionAttributeNames = map[string]string{"#v": "version"}
		input.ExpressionAttributeValues = map[string]dynamodbtypes.AttributeValue{
			":expected": &dynamodbtypes.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
		}
	}

	if _, err := k.client.PutItem(ctx, input); err != nil {
		var conflict *dynamodbtypes.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return 0, store.ErrVersionConflict
		}
		return 0, fmt.Errorf("failed to put item: %w", err)
	}

	return next, nil
}
