package storage

import (
	"context"
	"log/slog"
)

// Dispatch consumes StorageRequest values from a channel and routes each to
// the Executor registered for its Kind. Cancellation is only honored once
// the receive channel is empty, so requests already enqueued before
// shutdown (including rollback compensations) are always delivered.
type Dispatch[S Request] struct {
	receiver  <-chan S
	executors map[string]Executor[S]
	logger    *slog.Logger
	metrics   Metrics
}

// Metrics is the narrow observability port the storage dispatch reports
// through; telemetry.StageMetrics satisfies it.
type Metrics interface {
	ObserveExecuted(kind string)
	ObserveFailed(kind string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveExecuted(string) {}
func (noopMetrics) ObserveFailed(string)   {}

// NewDispatch builds a storage Dispatch.
func NewDispatch[S Request](receiver <-chan S, executors map[string]Executor[S], logger *slog.Logger) *Dispatch[S] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatch[S]{receiver: receiver, executors: executors, logger: logger, metrics: noopMetrics{}}
}

// WithMetrics attaches a Metrics sink, returning the same Dispatch for
// chaining.
func (d *Dispatch[S]) WithMetrics(m Metrics) *Dispatch[S] {
	d.metrics = m
	return d
}

// Run drains the storage request channel. When ctx is canceled, Run keeps
// consuming until the channel is observed empty before returning.
func (d *Dispatch[S]) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil && len(d.receiver) == 0 {
			d.logger.Info("cancellation observed and storage request receiver is empty, storage dispatch stopping")
			return
		}

		select {
		case storageRequest, ok := <-d.receiver:
			if !ok {
				return
			}
			d.dispatch(ctx, storageRequest)
		case <-ctx.Done():
		}
	}
}

func (d *Dispatch[S]) dispatch(ctx context.Context, storageRequest S) {
	executor, found := d.executors[storageRequest.Kind()]
	if !found {
		d.logger.Info("failed to find executor for storage request kind", slog.String("kind", storageRequest.Kind()))
		return
	}

	if err := executor(ctx, storageRequest); err != nil {
		d.metrics.ObserveFailed(storageRequest.Kind())
		d.logger.Info("storage executor returned error", slog.Any("error", err))
		return
	}

	d.metrics.ObserveExecuted(storageRequest.Kind())
}
