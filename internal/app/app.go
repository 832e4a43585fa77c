// Package app assembles the service from configuration: stores, audit sinks,
// domain services, handlers and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"sbt/internal/audit"
	credentialhandler "sbt/internal/credential/handler"
	credentialmetrics "sbt/internal/credential/metrics"
	credentialmodels "sbt/internal/credential/models"
	credentialservice "sbt/internal/credential/service"
	credentialstore "sbt/internal/credential/store"
	gateadapters "sbt/internal/gate/adapters"
	gatehandler "sbt/internal/gate/handler"
	gatemetrics "sbt/internal/gate/metrics"
	gateservice "sbt/internal/gate/service"
	gatestore "sbt/internal/gate/store"
	jwttoken "sbt/internal/jwt_token"
	"sbt/internal/platform/config"
	"sbt/internal/platform/database"
	"sbt/internal/platform/health"
	"sbt/internal/platform/kafka"
	"sbt/internal/platform/kafka/producer"
	"sbt/internal/platform/redis"
	"sbt/internal/platform/tracer"
	httptransport "sbt/internal/transport/http"
	"sbt/migrations"
	"sbt/pkg/platform/middleware/request"
)

const auditBufferSize = 1024

// App is a fully wired service instance.
type App struct {
	Handler  http.Handler
	Registry *credentialservice.Registry
	Gate     *gateservice.Gate
	Tokens   *jwttoken.JWTService
	Redis    *redis.Client

	closers []func() error
}

type stores struct {
	credentials credentialservice.Store
	counter     gateservice.Counter
	audit       audit.Sink
}

// New builds an App. reg receives every collector and backs /metrics.
// Call Close to release connections once the HTTP server has stopped.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, reg *prometheus.Registry) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			_ = a.Close() //nolint:errcheck // original error is more useful
		}
	}()

	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	healthHandler := health.New(cfg.Environment)

	st, err := a.openStores(ctx, cfg, reg, healthHandler)
	if err != nil {
		return nil, err
	}

	sink := st.audit
	if cfg.KafkaEnabled() {
		kafkaSink, err := a.openKafka(ctx, cfg, logger, healthHandler)
		if err != nil {
			return nil, err
		}
		sink = audit.Fanout(sink, kafkaSink)
	}
	auditor := audit.NewPublisher(sink,
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithPublisherLogger(logger),
	)
	a.closers = append(a.closers, func() error { auditor.Close(); return nil })

	tr := tracer.NewOTel()
	registry, err := credentialservice.New(st.credentials, credentialmodels.Metadata{
		Name:     cfg.Registry.Name,
		Symbol:   cfg.Registry.Symbol,
		Issuer:   cfg.Registry.Issuer,
		BaseURI:  cfg.Registry.BaseURI,
		KYCLevel: cfg.Registry.KYCLevel,
	}, logger,
		credentialservice.WithAuditor(auditor),
		credentialservice.WithMetrics(credentialmetrics.New(reg)),
		credentialservice.WithTracer(tr),
	)
	if err != nil {
		return nil, fmt.Errorf("create registry: %w", err)
	}
	gate := gateservice.New(gateadapters.NewRegistryAdapter(registry), st.counter, logger,
		gateservice.WithAuditor(auditor),
		gateservice.WithMetrics(gatemetrics.New(reg)),
		gateservice.WithTracer(tr),
	)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience, cfg.TokenTTL)
	tokens.SetEnv(cfg.Environment)

	a.Registry = registry
	a.Gate = gate
	a.Tokens = tokens
	a.Handler = httptransport.NewRouter(httptransport.Deps{
		Logger:         logger,
		Credentials:    credentialhandler.New(registry, logger),
		Gate:           gatehandler.New(gate, logger),
		Health:         healthHandler,
		Validator:      jwttoken.NewJWTServiceAdapter(tokens),
		Metrics:        request.NewMetrics(reg),
		Gatherer:       reg,
		RequestTimeout: cfg.RequestTimeout,
	})
	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Server, reg prometheus.Registerer, h *health.Handler) (stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
		h.RegisterCheck("postgres", pool.Health)
		return stores{
			credentials: credentialstore.NewPostgres(pool.DB()),
			counter:     gatestore.NewPostgres(pool.DB()),
			audit:       audit.NewPostgresStore(pool.DB()),
		}, nil

	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis, redis.NewPoolMetrics(reg))
		if err != nil {
			return stores{}, fmt.Errorf("connect redis: %w", err)
		}
		a.Redis = client
		a.closers = append(a.closers, client.Close)
		h.RegisterCheck("redis", client.Health)
		return stores{
			credentials: credentialstore.NewRedis(client.Client),
			counter:     gatestore.NewRedis(client.Client),
			audit:       audit.NewInMemoryStore(),
		}, nil

	default:
		return stores{
			credentials: credentialstore.NewInMemory(),
			counter:     gatestore.NewInMemory(),
			audit:       audit.NewInMemoryStore(),
		}, nil
	}
}

func (a *App) openKafka(ctx context.Context, cfg config.Server, logger *slog.Logger, h *health.Handler) (*audit.KafkaSink, error) {
	p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), logger)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	a.closers = append(a.closers, p.Close)
	if err := kafka.EnsureTopic(ctx, p.Client(), cfg.Kafka.AuditTopic, cfg.Kafka.Partitions, 1); err != nil {
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	h.RegisterCheck("kafka", p.Health)
	return audit.NewKafkaSink(p, cfg.Kafka.AuditTopic), nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
