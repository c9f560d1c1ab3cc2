// Package storage implements the storage stage: a Dispatch that drains
// StorageRequest values by Kind to an Executor, deferring shutdown until
// its receive channel is empty so in-flight rollbacks can still be
// delivered during cancellation.
package storage

import "context"

// Request is implemented by every storage-stage request variant.
type Request interface {
	Kind() string
}

// Executor is the body of one storage request variant.
type Executor[S Request] func(ctx context.Context, req S) error
