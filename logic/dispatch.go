package logic

import (
	"context"
	"log/slog"
)

// Dispatch consumes LogicRequest values from a channel and routes each to
// the Executor registered for its Kind. Cancellation is only observed
// between deliveries, so an in-flight executor always runs to completion.
type Dispatch[L Request, S any] struct {
	receiver      <-chan L
	executors     map[string]Executor[L, S]
	storageSender chan<- S
	logger        *slog.Logger
	metrics       Metrics
}

// Metrics is the narrow observability port the logic dispatch reports
// through; telemetry.StageMetrics satisfies it.
type Metrics interface {
	ObserveExecuted(kind string)
	ObserveFailed(kind string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveExecuted(string) {}
func (noopMetrics) ObserveFailed(string)   {}

// NewDispatch builds a logic Dispatch.
func NewDispatch[L Request, S any](receiver <-chan L, executors map[string]Executor[L, S], storageSender chan<- S, logger *slog.Logger) *Dispatch[L, S] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatch[L, S]{
		receiver:      receiver,
		executors:     executors,
		storageSender: storageSender,
		logger:        logger,
		metrics:       noopMetrics{},
	}
}

// WithMetrics attaches a Metrics sink, returning the same Dispatch for
// chaining.
func (d *Dispatch[L, S]) WithMetrics(m Metrics) *Dispatch[L, S] {
	d.metrics = m
	return d
}

// Run consumes logic requests until ctx is canceled. Cancellation is
// observed only between deliveries: a request already picked up from the
// channel always runs its executor to completion.
func (d *Dispatch[L, S]) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			d.logger.Info("cancellation observed, logic dispatch stopping")
			return
		}

		select {
		case logicRequest, ok := <-d.receiver:
			if !ok {
				return
			}
			d.dispatch(ctx, logicRequest)
		case <-ctx.Done():
		}
	}
}

func (d *Dispatch[L, S]) dispatch(ctx context.Context, logicRequest L) {
	executor, found := d.executors[logicRequest.Kind()]
	if !found {
		d.logger.Info("failed to find executor for logic request kind", slog.String("kind", logicRequest.Kind()))
		return
	}

	if err := executor(ctx, logicRequest, d.storageSender); err != nil {
		d.metrics.ObserveFailed(logicRequest.Kind())
		d.logger.Info("executor returned error", slog.Any("error", err))
		return
	}

	d.metrics.ObserveExecuted(logicRequest.Kind())
}
