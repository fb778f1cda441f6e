package dynamodb

import (
	"context"
	"errors"
	"time"

	"dispatch/application/ports"
	apperrors "dispatch/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// API is the subset of the DynamoDB client used by the store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// itemRecord is the table layout of an item.
type itemRecord struct {
	PK        string `dynamodbav:"PK"` // ITEM#<key>
	SK        string `dynamodbav:"SK"` // METADATA
	Key       string `dynamodbav:"Key"`
	Value     string `dynamodbav:"Value"`
	Owner     string `dynamodbav:"Owner,omitempty"`
	UpdatedAt string `dynamodbav:"UpdatedAt"` // RFC3339 timestamp
}

const itemSortKey = "METADATA"

// ItemStore persists items in a single DynamoDB table.
type ItemStore struct {
	client    API
	tableName string
	logger    *zap.Logger
}

var _ ports.ItemStore = (*ItemStore)(nil)

// NewItemStore creates a store on tableName.
func NewItemStore(client API, tableName string, logger *zap.Logger) *ItemStore {
	return &ItemStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "ITEM#" + key},
		"SK": &types.AttributeValueMemberS{Value: itemSortKey},
	}
}

// Get implements ports.ItemStore
func (s *ItemStore) Get(ctx context.Context, key string) (*ports.Item, error) {
	// Key and Value are reserved words, so the projection goes through
	// the builder's attribute name placeholders.
	expr, err := expression.NewBuilder().WithProjection(expression.NamesList(
		expression.Name("Key"),
		expression.Name("Value"),
		expression.Name("Owner"),
		expression.Name("UpdatedAt"),
	)).Build()
	if err != nil {
		return nil, apperrors.NewDatabaseError("BuildProjection", err)
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(s.tableName),
		Key:                      itemKey(key),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		s.logger.Error("Failed to get item", zap.String("key", key), zap.Error(err))
		return nil, storeError("GetItem", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var record itemRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, apperrors.NewDatabaseError("UnmarshalItem", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, record.UpdatedAt)
	if err != nil {
		return nil, apperrors.NewDatabaseError("UnmarshalItem", err)
	}
	return &ports.Item{
		Key:       record.Key,
		Value:     record.Value,
		Owner:     record.Owner,
		UpdatedAt: updatedAt,
	}, nil
}

// Put implements ports.ItemStore
func (s *ItemStore) Put(ctx context.Context, item *ports.Item) error {
	record := itemRecord{
		PK:        "ITEM#" + item.Key,
		SK:        itemSortKey,
		Key:       item.Key,
		Value:     item.Value,
		Owner:     item.Owner,
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return apperrors.NewDatabaseError("MarshalItem", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		s.logger.Error("Failed to put item", zap.String("key", item.Key), zap.Error(err))
		return storeError("PutItem", err)
	}
	return nil
}

// Delete implements ports.ItemStore
func (s *ItemStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(key),
	}); err != nil {
		s.logger.Error("Failed to delete item", zap.String("key", key), zap.Error(err))
		return storeError("DeleteItem", err)
	}
	return nil
}

// storeError reports a rejected call of an open breaker as unavailability
// and any other client failure as a database error.
func storeError(operation string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.NewUnavailableError("dynamodb").WithCause(err)
	}
	return apperrors.NewDatabaseError(operation, err)
}
