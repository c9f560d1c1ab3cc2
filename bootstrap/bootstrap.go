// Package bootstrap wires the API, Logic, and Storage dispatch stages
// together over bounded channels and the process-wide lifecycle context,
// the Go counterpart of the original implementation's
// try_initialize_microservice.
package bootstrap

import (
	"log/slog"
	"sync"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/logic"
	"github.com/timour/amqprpc/process"
	"github.com/timour/amqprpc/storage"
)

// channelCapacity bounds every inter-stage channel. A full channel makes a
// sender block, the pipeline's only backpressure mechanism.
const channelCapacity = 1024

// Microservice owns the three dispatch stages and the channels connecting
// them for one running service.
type Microservice[L logic.Request, S storage.Request] struct {
	api         *api.Dispatch[L]
	logic       *logic.Dispatch[L, S]
	storage     *storage.Dispatch[S]
	logicSender chan<- L
	logger      *slog.Logger
}

// New builds the API, Logic, and Storage dispatch stages and the bounded
// channels between them. logicExecutors and storageExecutors are keyed by
// the Kind each request type reports.
func New[L logic.Request, S storage.Request](
	inputs []api.Input,
	actions api.Registry[L],
	plugins []api.Plugin,
	logicExecutors map[string]logic.Executor[L, S],
	storageExecutors map[string]storage.Executor[S],
	logger *slog.Logger,
) *Microservice[L, S] {
	if logger == nil {
		logger = slog.Default()
	}

	logicChan := make(chan L, channelCapacity)
	storageChan := make(chan S, channelCapacity)

	return &Microservice[L, S]{
		api:         api.NewDispatch(inputs, actions, plugins, logicChan, logger),
		logic:       logic.NewDispatch(logicChan, logicExecutors, storageChan, logger),
		storage:     storage.NewDispatch(storageChan, storageExecutors, logger),
		logicSender: logicChan,
		logger:      logger,
	}
}

// WithAPIMetrics attaches an api.Metrics sink to the API stage.
func (m *Microservice[L, S]) WithAPIMetrics(metrics api.Metrics) *Microservice[L, S] {
	m.api.WithMetrics(metrics)
	return m
}

// WithLogicMetrics attaches a logic.Metrics sink to the Logic stage.
func (m *Microservice[L, S]) WithLogicMetrics(metrics logic.Metrics) *Microservice[L, S] {
	m.logic.WithMetrics(metrics)
	return m
}

// WithStorageMetrics attaches a storage.Metrics sink to the Storage stage.
func (m *Microservice[L, S]) WithStorageMetrics(metrics storage.Metrics) *Microservice[L, S] {
	m.storage.WithMetrics(metrics)
	return m
}

// LogicSender exposes the channel the API stage publishes onto, for callers
// (typically tests) that want to inject logic requests directly.
func (m *Microservice[L, S]) LogicSender() chan<- L {
	return m.logicSender
}

// Run starts every stage's worker goroutines under the process-wide
// lifecycle context and returns a WaitGroup the caller can wait on for a
// fully drained shutdown. Each stage registers itself as one active worker
// with process.Instance() so the supervisor's exit condition reflects
// reality.
func (m *Microservice[L, S]) Run() *sync.WaitGroup {
	ctx := process.Instance().Context()

	var wg sync.WaitGroup

	apiWorkers := m.api.Run(ctx)
	process.Instance().IncActiveWorkers()
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer process.Instance().DecActiveWorkers()
		apiWorkers.Wait()
	}()

	process.Instance().IncActiveWorkers()
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer process.Instance().DecActiveWorkers()
		m.logic.Run(ctx)
	}()

	process.Instance().IncActiveWorkers()
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer process.Instance().DecActiveWorkers()
		m.storage.Run(ctx)
	}()

	return &wg
}
