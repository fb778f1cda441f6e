package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig configures the circuit breaker guarding the DynamoDB client.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used by the service.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// breakerClient runs every call of the wrapped client through a circuit
// breaker. While the breaker is open calls fail with gobreaker.ErrOpenState
// without reaching DynamoDB.
type breakerClient struct {
	client API
	cb     *gobreaker.CircuitBreaker
}

// WithCircuitBreaker wraps client in a circuit breaker.
func WithCircuitBreaker(client API, config BreakerConfig, logger *zap.Logger) API {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &breakerClient{client: client, cb: cb}
}

func execute[T any](cb *gobreaker.CircuitBreaker, call func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (any, error) {
		return call()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

func (b *breakerClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return execute(b.cb, func() (*dynamodb.GetItemOutput, error) {
		return b.client.GetItem(ctx, params, optFns...)
	})
}

func (b *breakerClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return execute(b.cb, func() (*dynamodb.PutItemOutput, error) {
		return b.client.PutItem(ctx, params, optFns...)
	})
}

func (b *breakerClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return execute(b.cb, func() (*dynamodb.DeleteItemOutput, error) {
		return b.client.DeleteItem(ctx, params, optFns...)
	})
}
