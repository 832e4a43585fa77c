package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"sbt/internal/platform/kafka/consumer"
)

// Projector replays audit records from Kafka into a Sink. It implements
// consumer.Handler.
type Projector struct {
	sink   Sink
	logger *slog.Logger
}

func NewProjector(sink Sink, logger *slog.Logger) *Projector {
	return &Projector{sink: sink, logger: logger}
}

// Handle appends the decoded event. Malformed records are logged and
// acknowledged; sink failures are returned so the offset stays uncommitted.
func (p *Projector) Handle(ctx context.Context, msg *consumer.Message) error {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil || event.ID == uuid.Nil {
		p.logger.WarnContext(ctx, "skipping malformed audit record",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}
	if err := p.sink.Append(ctx, event); err != nil {
		return fmt.Errorf("project audit event %s: %w", event.ID, err)
	}
	return nil
}
