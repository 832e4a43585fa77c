// Package kafka holds Kafka administration helpers shared by the producer and tests.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// EnsureTopic creates topic if it does not exist. An existing topic is left untouched.
// A replication factor of -1 uses the broker default.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(client)

	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}

	result, ok := resp[topic]
	if !ok {
		return fmt.Errorf("create topic %s: no response for topic", topic)
	}
	if result.Err != nil && !errors.Is(result.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, result.Err)
	}
	return nil
}
