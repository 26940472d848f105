package observability

import (
	"context"

	"github.com/google/uuid"
)

type correlationKey struct{}

// NewCorrelationID returns a fresh id for one invocation.
func NewCorrelationID() string {
	return uuid.New().String()
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored in ctx, or "".
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok {
		return id
	}
	return ""
}
