//go:build integration

package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"sbt/internal/audit"
	"sbt/internal/platform/kafka"
	"sbt/internal/platform/kafka/consumer"
	"sbt/internal/platform/kafka/producer"
	"sbt/pkg/testutil/containers"
)

func TestKafkaSinkToProjector(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	broker := containers.GetManager().GetKafka(t)
	topic := "sbt-audit-projection"

	prod, err := producer.New(producer.DefaultConfig(broker.Brokers), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = prod.Close() })
	require.NoError(t, kafka.EnsureTopic(ctx, prod.Client(), topic, 1, -1))

	sink := audit.NewKafkaSink(prod, topic)
	issued := audit.Event{
		ID: uuid.New(), Timestamp: time.Now().UTC(), Action: audit.ActionCredentialIssued,
		Actor: "issuer", Subject: "alice", TokenID: audit.TokenRef(0), Outcome: audit.OutcomeSuccess,
	}
	require.NoError(t, sink.Append(ctx, issued))
	require.NoError(t, sink.Append(ctx, issued))

	store := audit.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cons, err := consumer.New(consumer.Config{Brokers: broker.Brokers, GroupID: "sbt-audit-projection"},
		audit.NewProjector(store, logger), logger)
	require.NoError(t, err)
	require.NoError(t, cons.Subscribe([]string{topic}))
	cons.Start()
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = cons.Stop(stopCtx)
	})

	require.Eventually(t, func() bool {
		events, _ := store.ListByToken(ctx, 0)
		return len(events) == 1
	}, 15*time.Second, 100*time.Millisecond)
	require.Len(t, store.All(), 1)
}
