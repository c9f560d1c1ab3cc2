package api

import (
	"context"
	"log/slog"
	"sync"

	"github.com/timour/amqprpc/core"
	"github.com/timour/amqprpc/request"
)

// Dispatch owns every Input the API stage serves, the action registry, and
// the ordered plugin chain. One goroutine runs per Input; cancellation is
// checked between deliveries only, so an in-flight handler always runs to
// completion.
type Dispatch[L any] struct {
	inputs      []Input
	actions     Registry[L]
	plugins     []Plugin
	logicSender chan<- L
	logger      *slog.Logger
	metrics     Metrics
}

// Metrics is the narrow observability port the API dispatch reports
// through; telemetry.DispatchMetrics satisfies it.
type Metrics interface {
	ObserveActionInvoked(action string)
	ObserveUnknownAction(action string)
	ObservePluginFailure(pluginID string, kind core.ErrorKind)
}

type noopMetrics struct{}

func (noopMetrics) ObserveActionInvoked(string)                 {}
func (noopMetrics) ObserveUnknownAction(string)                 {}
func (noopMetrics) ObservePluginFailure(string, core.ErrorKind) {}

// NewDispatch builds an API Dispatch. Plugins run in the order given.
func NewDispatch[L any](inputs []Input, actions Registry[L], plugins []Plugin, logicSender chan<- L, logger *slog.Logger) *Dispatch[L] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatch[L]{
		inputs:      inputs,
		actions:     actions,
		plugins:     plugins,
		logicSender: logicSender,
		logger:      logger,
		metrics:     noopMetrics{},
	}
}

// WithMetrics attaches a Metrics sink, returning the same Dispatch for
// chaining.
func (d *Dispatch[L]) WithMetrics(m Metrics) *Dispatch[L] {
	d.metrics = m
	return d
}

// Run spawns one worker goroutine per Input and returns a WaitGroup the
// caller can wait on for a fully drained shutdown.
func (d *Dispatch[L]) Run(ctx context.Context) *sync.WaitGroup {
	var wg sync.WaitGroup

	for _, input := range d.inputs {
		wg.Add(1)
		go func(input Input) {
			defer wg.Done()
			d.runWorker(ctx, input)
		}(input)
	}

	return &wg
}

func (d *Dispatch[L]) runWorker(ctx context.Context, input Input) {
	filteredByInput := toSet(input.FilterOutPlugins())

	for {
		if ctx.Err() != nil {
			d.logger.Info("cancellation observed, api worker stopping")
			return
		}

		data, err := input.Receive(ctx)
		if err != nil {
			d.logger.Warn("failed to receive input", slog.Any("error", err))
			continue
		}

		d.process(ctx, data, filteredByInput)
	}
}

func (d *Dispatch[L]) process(ctx context.Context, data InputData, filteredByInput map[string]struct{}) {
	filtered := unionFilterSets(filteredByInput, d.filterOutForAction(data.Request.Header.Action))

	for _, plugin := range d.plugins {
		if _, skip := filtered[plugin.ID()]; skip {
			continue
		}

		var pluginErr *core.Error
		data, pluginErr = plugin.Handle(ctx, data)
		if pluginErr != nil {
			d.metrics.ObservePluginFailure(plugin.ID(), pluginErr.Kind)
			d.replyWithError(ctx, data, plugin.ID(), pluginErr)
			return
		}
	}

	d.invokeAction(ctx, data)
}

func (d *Dispatch[L]) replyWithError(ctx context.Context, data InputData, pluginID string, pluginErr *core.Error) {
	if err := data.Replier(ctx, request.ErrReply(pluginErr)); err != nil {
		d.logger.Warn("failed to reply when plugin failed", slog.Any("error", err))
	}

	d.logger.Warn("plugin failed to handle input data", slog.String("plugin", pluginID), slog.Any("error", pluginErr))
}

func (d *Dispatch[L]) invokeAction(ctx context.Context, data InputData) {
	action, found := d.actions[data.Request.Header.Action]
	if !found {
		d.metrics.ObserveUnknownAction(data.Request.Header.Action)
		d.logger.Info("unknown action received", slog.String("action", data.Request.Header.Action))
		return
	}

	d.metrics.ObserveActionInvoked(action.ID())

	result, err := action.Executor()(data.Request, d.logicSender)

	var reply request.Reply
	if err != nil {
		if asError, ok := err.(*core.Error); ok {
			reply = request.ErrReply(asError)
		} else {
			reply = request.ErrReply(core.New(core.ErrorKindInternal, err.Error()))
		}
	} else {
		reply = request.OkReply(result)
	}

	if replyErr := data.Replier(ctx, reply); replyErr != nil {
		d.logger.Warn("failed to reply with action result", slog.Any("error", replyErr))
	}
}

func (d *Dispatch[L]) filterOutForAction(action string) []string {
	if a, ok := d.actions[action]; ok {
		return a.FilterOutPlugins()
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func unionFilterSets(a map[string]struct{}, extra []string) map[string]struct{} {
	if len(extra) == 0 {
		return a
	}
	union := make(map[string]struct{}, len(a)+len(extra))
	for k := range a {
		union[k] = struct{}{}
	}
	for _, v := range extra {
		union[v] = struct{}{}
	}
	return union
}
