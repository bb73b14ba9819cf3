package api

import (
	"context"
	"time"
)

// Timeouts for storage work started by a request and by a background sweep
const (
	QueryTimeout = 10 * time.Second
	SweepTimeout = 5 * time.Minute
)

// WithQueryTimeout bounds the storage work of one request
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(parent, QueryTimeout)
}

// WithSweepTimeout bounds one run of a scheduled job
func WithSweepTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(parent, SweepTimeout)
}

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}
