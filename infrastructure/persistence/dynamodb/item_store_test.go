package dynamodb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/application/ports"
	store "dispatch/infrastructure/persistence/dynamodb"
	apperrors "dispatch/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient keeps items keyed by PK.
type fakeClient struct {
	items map[string]map[string]types.AttributeValue
	err   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue)}
}

func pk(key map[string]types.AttributeValue) string {
	return key["PK"].(*types.AttributeValueMemberS).Value
}

func (f *fakeClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[pk(in.Key)]}, nil
}

func (f *fakeClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items[pk(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, pk(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestItemStoreRoundTrip(t *testing.T) {
	client := newFakeClient()
	s := store.NewItemStore(client, "items", zap.NewNop())
	ctx := context.Background()

	missing, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, &ports.Item{Key: "k", Value: "v", Owner: "u-1", UpdatedAt: updated}))

	stored := client.items["ITEM#k"]
	require.NotNil(t, stored)
	assert.Equal(t, "METADATA", stored["SK"].(*types.AttributeValueMemberS).Value)

	item, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, &ports.Item{Key: "k", Value: "v", Owner: "u-1", UpdatedAt: updated}, item)

	require.NoError(t, s.Delete(ctx, "k"))
	item, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestItemStoreWrapsClientErrors(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("throttled")
	s := store.NewItemStore(client, "items", zap.NewNop())

	_, err := s.Get(context.Background(), "k")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabase))
	assert.ErrorIs(t, err, client.err)

	err = s.Put(context.Background(), &ports.Item{Key: "k"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabase))
}

func TestItemStoreRejectsMalformedTimestamp(t *testing.T) {
	client := newFakeClient()
	s := store.NewItemStore(client, "items", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &ports.Item{Key: "k", Value: "v", UpdatedAt: time.Now()}))
	client.items["ITEM#k"]["UpdatedAt"] = &types.AttributeValueMemberS{Value: "not-a-time"}

	item, err := s.Get(ctx, "k")
	require.Error(t, err)
	assert.Nil(t, item)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabase))
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("throttled")
	cfg := store.DefaultBreakerConfig("items")
	cfg.MinRequests = 2
	cfg.FailureThreshold = 0.5
	s := store.NewItemStore(store.WithCircuitBreaker(client, cfg, zap.NewNop()), "items", zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.Get(ctx, "k")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabase))
	}

	client.err = nil
	_, err := s.Get(ctx, "k")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}

func TestCircuitBreakerPassesResults(t *testing.T) {
	client := newFakeClient()
	s := store.NewItemStore(store.WithCircuitBreaker(client, store.DefaultBreakerConfig("items"), zap.NewNop()), "items", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &ports.Item{Key: "k", Value: "v"}))
	item, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", item.Value)
}
