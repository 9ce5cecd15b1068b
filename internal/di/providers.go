package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"FxPulse/internal/domain/repository"
	"FxPulse/internal/handler/api"
	mid "FxPulse/internal/middleware"
	internalrepo "FxPulse/internal/repository"
	cyclemetrics "FxPulse/internal/service/metrics"
	"FxPulse/internal/service/ratelimit"
	"FxPulse/internal/services/normalize"
	"FxPulse/internal/services/power"
	"FxPulse/internal/services/sources"
	"FxPulse/internal/services/strength"
	"FxPulse/internal/usecase"
	pkgcache "FxPulse/pkg/cache"
	pkgch "FxPulse/pkg/clickhouse"
	"FxPulse/pkg/config"
	xhttp "FxPulse/pkg/http"
	pkgkafka "FxPulse/pkg/kafka"
	applogger "FxPulse/pkg/logger"
	"FxPulse/pkg/metrics"
	"FxPulse/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// Backend groups the storage and messaging collaborators selected by backend.type.
// Publisher and Consumer are set only for kafka; CH only when ClickHouse is used.
type Backend struct {
	Events    repository.EventStore
	Strength  repository.StrengthStore
	Publisher repository.Publisher
	Consumer  *pkgkafka.Consumer
	CH        *pkgch.Client
	Closers   []io.Closer
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&cfg.Log)
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	cyclemetrics.Register()
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideCache creates the result cache: memory LRU, layered over Redis when enabled.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (pkgcache.Service, error) {
	memOpts := []pkgcache.MemoryOption{
		pkgcache.WithMemoryMaxSize(cfg.Cache.MaxSize),
		pkgcache.WithMemoryTTL(cfg.Cache.TTL),
	}
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(memOpts...), nil
	}

	r := cfg.Cache.Redis
	l2, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(r.Host, r.Port),
		pkgcache.WithRedisAuth(r.Password, r.DB),
		pkgcache.WithRedisPrefix(r.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("cache: redis layer enabled", applogger.String("host", r.Host), applogger.Int("port", r.Port))
	return pkgcache.NewLayeredCache(l2, memOpts...), nil
}

// ProvideHTTPClient creates the shared upstream HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Collector.RequestTimeout),
		xhttp.WithRetry(cfg.Collector.MaxRetries, 500*time.Millisecond),
		xhttp.WithUserAgent(cfg.Collector.UserAgent),
	)
}

// ProvideLimiter creates the per-source rate limiter registry.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Collector.RateLimitRPM)
}

// ProvideSources builds the adapters for the configured mode.
func ProvideSources(cfg *config.Config, client *xhttp.Client, limiter *ratelimit.Limiter, l *applogger.Logger) []repository.Source {
	return sources.FromConfig(cfg, client, limiter, l.With("sources"))
}

// ProvideNormalizer creates the canonical normalizer.
func ProvideNormalizer() *normalize.Normalizer {
	return normalize.New()
}

// ProvideAggregator creates the strength aggregator. Simulated events only count in demo mode.
func ProvideAggregator(cfg *config.Config) *strength.Aggregator {
	opts := []strength.Option{strength.WithWindow(cfg.Collector.Window)}
	if cfg.Collector.Mode == "demo" {
		opts = append(opts, strength.AllowSimulated())
	}
	return strength.New(opts...)
}

// ProvidePowerEngine creates the power ranking engine.
func ProvidePowerEngine(cfg *config.Config) *power.Engine {
	if cfg.Collector.Mode == "demo" {
		return power.New(power.AllowSimulated())
	}
	return power.New()
}

// ProvideOrchestrator creates the collection orchestrator.
func ProvideOrchestrator(
	srcs []repository.Source,
	n *normalize.Normalizer,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.CollectionOrchestrator {
	return usecase.NewCollectionOrchestrator(srcs, n, m,
		usecase.WithMaxConcurrency(cfg.Collector.MaxConcurrency),
		usecase.WithOrchestratorLogger(l.With("collector")),
	)
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxOpenConns/2),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates the sink consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	c := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetLogger(l.With("kafka"))
	return consumer, nil
}

// ProvideBackend opens the stores for backend.type and initializes their schema.
// kafka publishes events and sinks them into ClickHouse, which also keeps strength history.
func ProvideBackend(cfg *config.Config, l *applogger.Logger) (*Backend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	b := &Backend{}
	switch cfg.Backend.Type {
	case usecase.BackendSQLite:
		store, err := internalrepo.NewSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := store.Init(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
		b.Events, b.Strength = store, store
		l.Info("sqlite: schema ready", applogger.String("path", cfg.SQLite.Path))

	case usecase.BackendClickHouse, usecase.BackendKafka:
		ch, err := ProvideClickHouseClient(cfg)
		if err != nil {
			return nil, err
		}
		store := internalrepo.NewCHEventStore(ch)
		store.SetLogger(l.With("clickhouse"))
		if err := store.Init(ctx); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		b.Events, b.Strength, b.CH = store, store, ch
		b.Closers = append(b.Closers, ch)
		l.Info("clickhouse: connected and schema ready", applogger.String("db", ch.Database()))

		if cfg.Backend.Type == usecase.BackendKafka {
			producer, err := ProvideKafkaProducer(cfg)
			if err != nil {
				_ = ch.Close()
				return nil, err
			}
			b.Publisher = internalrepo.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic, cfg.Kafka.StrengthTopic)
			if b.Consumer, err = ProvideKafkaConsumer(cfg, l); err != nil {
				_ = producer.Close()
				_ = ch.Close()
				return nil, err
			}
			l.Info("kafka: producer ready",
				applogger.Strings("brokers", cfg.Kafka.Brokers),
				applogger.String("topic", cfg.Kafka.EventsTopic),
			)
		}

	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend.Type)
	}
	return b, nil
}

// ProvideEventProcessor creates the backend router.
func ProvideEventProcessor(b *Backend, m repository.Metrics, cfg *config.Config) *usecase.EventProcessor {
	return usecase.NewEventProcessor(b.Publisher, b.Events, m, cfg.Backend.Type, cfg.Backend.BatchSize)
}

// ProvideEventPipeline builds the middleware between collection and the backend.
func ProvideEventPipeline(proc *usecase.EventProcessor, m repository.Metrics) *mid.EventPipeline {
	return mid.NewEventPipeline(proc, m,
		mid.WithBufferSize(64),
		mid.WithFlushBackoff(50*time.Millisecond, 2*time.Second),
	)
}

// ProvideSinkHandler returns the events-topic handler, or nil outside the kafka backend.
func ProvideSinkHandler(b *Backend, m repository.Metrics, cfg *config.Config) pkgkafka.MessageHandler {
	if b.Consumer == nil {
		return nil
	}
	return usecase.NewEventsSinkHandler(cfg.Kafka.EventsTopic, b.Events, m)
}

// ProvideCycle creates the cycle runner.
func ProvideCycle(
	cfg *config.Config,
	l *applogger.Logger,
	orch *usecase.CollectionOrchestrator,
	pipe *mid.EventPipeline,
	b *Backend,
	agg *strength.Aggregator,
	ranker *power.Engine,
	cache pkgcache.Service,
	m repository.Metrics,
) *usecase.Cycle {
	opts := []usecase.CycleOption{
		usecase.WithCacheTTL(cfg.Cache.TTL),
		usecase.WithCycleLogger(l.With("cycle")),
	}
	if b.Publisher != nil {
		opts = append(opts, usecase.WithStrengthPublisher(b.Publisher))
	}
	history := usecase.NewStrengthHistory(cache, b.Strength, cfg.Cache.TTL)
	return usecase.NewCycle(orch, pipe, b.Events, history, agg, ranker, cache, m,
		sources.Currencies(cfg.Collector.Currencies), opts...)
}

// ProvideHTTPServer creates the operations server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, cycle *usecase.Cycle, b *Backend) *xhttp.Server {
	var backend api.Pinger
	if b.Events != nil {
		backend = b.Events
	}
	return xhttp.NewServer(l.With("http"), api.NewOpsHandler(l, cycle, backend),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	cycle *usecase.Cycle,
	pipe *mid.EventPipeline,
	proc *usecase.EventProcessor,
	b *Backend,
	sink pkgkafka.MessageHandler,
	srv *xhttp.Server,
	cache pkgcache.Service,
) *server.App {
	closers := append([]io.Closer{cache}, b.Closers...)
	return server.New(cfg, l, cycle, pipe, proc, b.Consumer, sink, srv, closers...)
}
