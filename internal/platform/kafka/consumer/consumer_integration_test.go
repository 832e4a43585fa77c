//go:build integration

package consumer_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sbt/internal/platform/kafka"
	"sbt/internal/platform/kafka/consumer"
	"sbt/internal/platform/kafka/producer"
	"sbt/pkg/testutil/containers"
)

type ConsumerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestConsumerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ConsumerIntegrationSuite))
}

func (s *ConsumerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	cfg := producer.DefaultConfig(s.kafka.Brokers)
	cfg.DeliveryTimeout = 10 * time.Second
	prod, err := producer.New(cfg, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ConsumerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

type recordingHandler struct {
	mu       sync.Mutex
	messages []*consumer.Message
	errFunc  func(*consumer.Message) error
}

func (h *recordingHandler) Handle(_ context.Context, msg *consumer.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errFunc != nil {
		if err := h.errFunc(msg); err != nil {
			return err
		}
	}
	h.messages = append(h.messages, msg)
	return nil
}

func (h *recordingHandler) Messages() []*consumer.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*consumer.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

func (s *ConsumerIntegrationSuite) topic(name string) string {
	ctx := context.Background()
	s.Require().NoError(kafka.EnsureTopic(ctx, s.producer.Client(), name, 1, -1))
	return name
}

func (s *ConsumerIntegrationSuite) produce(topic, key string, headers map[string]string) {
	s.Require().NoError(s.producer.Produce(context.Background(), &producer.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   []byte(fmt.Sprintf(`{"actor":%q}`, key)),
		Headers: headers,
	}))
}

func (s *ConsumerIntegrationSuite) start(groupID, topic string, h consumer.Handler) *consumer.Consumer {
	cons, err := consumer.New(consumer.Config{
		Brokers: s.kafka.Brokers,
		GroupID: groupID,
	}, h, nil)
	s.Require().NoError(err)
	s.Require().NoError(cons.Subscribe([]string{topic}))
	cons.Start()
	return cons
}

func (s *ConsumerIntegrationSuite) stop(cons *consumer.Consumer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Require().NoError(cons.Stop(ctx))
}

func (s *ConsumerIntegrationSuite) TestConsumerReceivesMessages() {
	topic := s.topic("sbt-consumer-receives")
	for _, key := range []string{"alice", "bob", "carol"} {
		s.produce(topic, key, nil)
	}

	h := &recordingHandler{}
	cons := s.start("sbt-consumer-receives-group", topic, h)
	s.Eventually(func() bool {
		return len(h.Messages()) >= 3
	}, 15*time.Second, 100*time.Millisecond)
	s.stop(cons)

	s.Equal("alice", string(h.Messages()[0].Key))
}

func (s *ConsumerIntegrationSuite) TestConsumerPreservesHeaders() {
	topic := s.topic("sbt-consumer-headers")
	s.produce(topic, "alice", map[string]string{
		"action":  "credential_issued",
		"outcome": "success",
	})

	h := &recordingHandler{}
	cons := s.start("sbt-consumer-headers-group", topic, h)
	s.Eventually(func() bool {
		return len(h.Messages()) >= 1
	}, 15*time.Second, 100*time.Millisecond)
	s.stop(cons)

	received := h.Messages()[0]
	s.Equal("credential_issued", received.Headers["action"])
	s.Equal("success", received.Headers["outcome"])
}

// A failed handler leaves the offset uncommitted, so the next consumer in
// the group sees the record again.
func (s *ConsumerIntegrationSuite) TestManualCommitOnSuccessOnly() {
	topic := s.topic("sbt-consumer-commit")
	s.produce(topic, "alice", nil)
	groupID := "sbt-consumer-commit-" + time.Now().Format("20060102150405")

	var attempts atomic.Int32
	failing := &recordingHandler{errFunc: func(*consumer.Message) error {
		attempts.Add(1)
		return errors.New("projection unavailable")
	}}
	first := s.start(groupID, topic, failing)
	s.Eventually(func() bool {
		return attempts.Load() >= 1
	}, 15*time.Second, 100*time.Millisecond)
	s.stop(first)

	succeeding := &recordingHandler{}
	second := s.start(groupID, topic, succeeding)
	s.Eventually(func() bool {
		return len(succeeding.Messages()) >= 1
	}, 15*time.Second, 100*time.Millisecond)
	s.stop(second)
}

func (s *ConsumerIntegrationSuite) TestHealth() {
	cons, err := consumer.New(consumer.Config{
		Brokers: s.kafka.Brokers,
		GroupID: "sbt-consumer-health",
	}, &recordingHandler{}, nil)
	s.Require().NoError(err)

	s.NoError(cons.Health(context.Background()))
	s.stop(cons)
	s.Error(cons.Health(context.Background()))
}
