// Command exampleservice wires the bootstrap package together into a
// runnable AMQP RPC service: a single stock.reserve action, backed by an
// in-memory store, exercising the token manager, rollback stack, and
// telemetry stack end to end.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/api/tokenmanager"
	"github.com/timour/amqprpc/api/tokenmanager/jwt"
	"github.com/timour/amqprpc/bootstrap"
	"github.com/timour/amqprpc/config"
	"github.com/timour/amqprpc/core"
	"github.com/timour/amqprpc/discovery"
	"github.com/timour/amqprpc/discovery/consul"
	"github.com/timour/amqprpc/discovery/inmem"
	"github.com/timour/amqprpc/logic"
	"github.com/timour/amqprpc/process"
	"github.com/timour/amqprpc/storage"
	"github.com/timour/amqprpc/telemetry"
	"github.com/timour/amqprpc/transport/amqp"
)

const serviceName = "exampleservice"

func main() {
	_ = config.LoadDotEnv(".env")

	logger := newLogger(serviceName)
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer(serviceName)
	if err != nil {
		logger.Error("failed to initialize tracer", slog.Any("error", err))
		os.Exit(1)
	}
	defer shutdownTracer(context.Background())

	registry := newRegistry(logger)
	instanceID := discovery.GenerateInstanceID(serviceName)
	hostPort := config.GetEnv("EXAMPLESERVICE_ADDR", "localhost:8080")
	if err := registry.Register(context.Background(), instanceID, serviceName, hostPort); err != nil {
		logger.Warn("failed to register with service discovery", slog.Any("error", err))
	}
	defer registry.Deregister(context.Background(), instanceID, serviceName)

	channel, closeBroker, err := amqp.Connect(amqp.ConnectionConfig{
		User: config.GetEnv("RABBITMQ_USER", "guest"),
		Pass: config.GetEnv("RABBITMQ_PASS", "guest"),
		Host: config.GetEnv("RABBITMQ_HOST", "localhost"),
		Port: config.GetEnv("RABBITMQ_PORT", "5672"),
	})
	if err != nil {
		logger.Error("failed to connect to broker", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeBroker()

	if err := amqp.DeclareDeadLetterQueue(channel, "exampleservice.requests"); err != nil {
		logger.Error("failed to declare dead letter queue", slog.Any("error", err))
		os.Exit(1)
	}

	input, err := amqp.NewInput(channel, amqp.QueueConsumerConfig{
		Queue: amqp.QueueConfig{
			Name: "exampleservice.requests",
			Declare: amqp.QueueDeclareConfig{
				Durable: true,
				Arguments: map[string]any{
					"x-dead-letter-exchange": amqp.DeadLetterExchange,
				},
			},
		},
		Qos:     amqp.QosConfig{PrefetchCount: 16},
		Consume: amqp.ConsumeConfig{},
		Reject:  amqp.RejectConfig{Requeue: false},
		Retry:   &amqp.RetryPolicy{MaxRetries: 3},
	}, nil, logger)
	if err != nil {
		logger.Error("failed to start consuming requests", slog.Any("error", err))
		os.Exit(1)
	}

	wrapper := newTokenWrapper(logger)
	plugins := []api.Plugin{tokenmanager.New(wrapper)}

	actions := api.NewRegistry(reserveStockAction())

	logicExecutors := map[string]logic.Executor[LogicRequest, StorageRequest]{
		"reserve_stock": ReserveStockExecutor,
	}

	store := NewStore(map[string]int{
		"widget": 100,
		"gadget": 50,
	})
	storageExecutors := map[string]storage.Executor[StorageRequest]{
		"reserve_item": ReserveItemExecutor(store),
		"release_item": ReleaseItemExecutor(store),
	}

	apiMetrics := telemetry.NewDispatchMetrics(serviceName)
	logicMetrics := telemetry.NewStageMetrics(serviceName, "logic")
	storageMetrics := telemetry.NewStageMetrics(serviceName, "storage")

	startMetricsServer(logger)

	ms := bootstrap.New[LogicRequest, StorageRequest](
		[]api.Input{input},
		actions,
		plugins,
		logicExecutors,
		storageExecutors,
		logger,
	).WithAPIMetrics(apiMetrics).WithLogicMetrics(logicMetrics).WithStorageMetrics(storageMetrics)

	wg := ms.Run()

	<-process.Instance().Context().Done()
	logger.Info("shutdown requested, draining in-flight work")
	wg.Wait()
}

// newLogger selects the logging backend via LOG_BACKEND (default slog's own
// JSON handler; "zap" routes through a zap-backed slog.Handler for
// deployments that already ship zap-formatted log pipelines).
func newLogger(serviceName string) *slog.Logger {
	if config.GetEnv("LOG_BACKEND", "") != "zap" {
		return telemetry.NewLogger(serviceName)
	}

	logger, err := telemetry.NewZapLogger(serviceName)
	if err != nil {
		fallback := telemetry.NewLogger(serviceName)
		fallback.Error("failed to initialize zap logger, falling back to default", slog.Any("error", err))
		return fallback
	}
	return logger
}

// startMetricsServer exposes every registered Prometheus collector
// (here DispatchMetrics and StageMetrics) over HTTP on METRICS_ADDR.
func startMetricsServer(logger *slog.Logger) {
	addr := config.GetEnv("METRICS_ADDR", ":9100")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()

	logger.Info("metrics server listening", slog.String("addr", addr))
}

// newRegistry prefers Consul when CONSUL_ADDR is set, falling back to an
// in-process registry for local runs without a Consul agent.
func newRegistry(logger *slog.Logger) discovery.Registry {
	addr := config.GetEnv("CONSUL_ADDR", "")
	if addr == "" {
		logger.Info("CONSUL_ADDR not set, using in-memory service registry")
		return inmem.NewRegistry()
	}

	registry, err := consul.NewRegistry(addr)
	if err != nil {
		logger.Warn("failed to connect to consul, falling back to in-memory registry", slog.Any("error", err))
		return inmem.NewRegistry()
	}
	return registry
}

// unavailableTokenWrapper is used when no JWKS endpoint is configured; it
// fails every call rather than silently accepting unauthenticated requests.
type unavailableTokenWrapper struct{}

func (unavailableTokenWrapper) Wrap(string) (tokenmanager.Token, *core.Error) {
	return nil, core.New(core.ErrorKindInitialization, "no JWKS endpoint configured")
}

func newTokenWrapper(logger *slog.Logger) tokenmanager.TokenWrapper {
	jwksURI := config.GetEnv("JWKS_URI", "")
	if jwksURI == "" {
		logger.Warn("JWKS_URI not set, token manager will reject every call")
		return unavailableTokenWrapper{}
	}

	oidcConfig := jwt.NewOpenIDConnectConfig(
		jwksURI,
		[]string{config.GetEnv("JWT_ISSUER", "")},
		[]string{config.GetEnv("JWT_AUDIENCE", "")},
	)

	wrapper, err := jwt.NewWrapper(context.Background(), oidcConfig)
	if err != nil {
		logger.Error("failed to initialize jwt token wrapper", slog.Any("error", err))
		os.Exit(1)
	}
	return wrapper
}
