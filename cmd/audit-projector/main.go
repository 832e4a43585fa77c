// Command audit-projector consumes the audit topic and persists every event
// to the Postgres audit_events table. Replayed records are ignored.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sbt/internal/audit"
	"sbt/internal/platform/config"
	"sbt/internal/platform/database"
	"sbt/internal/platform/kafka/consumer"
	"sbt/internal/platform/logger"
	"sbt/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "audit-projector: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.KafkaEnabled() || cfg.DatabaseURL == "" {
		return fmt.Errorf("KAFKA_BROKERS and DATABASE_URL are required")
	}
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	cons, err := consumer.New(consumer.Config{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.ConsumerGroup,
	}, audit.NewProjector(audit.NewPostgresStore(pool.DB()), log), log)
	if err != nil {
		return err
	}
	if err := cons.Subscribe([]string{cfg.Kafka.AuditTopic}); err != nil {
		return err
	}

	log.Info("starting audit projector",
		"topic", cfg.Kafka.AuditTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	cons.Start()
	<-ctx.Done()

	log.Info("shutting down audit projector")
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return cons.Stop(stopCtx)
}
