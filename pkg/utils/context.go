package utils

import (
	"context"
)

// GetContextValSafe returns the value of type T stored under key in ctx,
// or fallback if there is none.
func GetContextValSafe[T any](ctx context.Context, key any, fallback T) T {
	if v, ok := ctx.Value(key).(T); ok {
		return v
	}
	return fallback
}
