package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"sbt/pkg/domain"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append is idempotent on event ID, so replayed Kafka records are harmless.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var tokenID sql.NullString
	if event.TokenID != nil {
		tokenID = sql.NullString{String: event.TokenID.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, action, actor, subject, token_id, outcome, reason, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`,
		event.ID,
		string(event.Action),
		event.Actor.String(),
		event.Subject.String(),
		tokenID,
		string(event.Outcome),
		event.Reason,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

const selectEvents = `
	SELECT id, action, actor, subject, token_id::text, outcome, reason, request_id, occurred_at
	FROM audit_events
`

func (s *PostgresStore) ListByActor(ctx context.Context, actor domain.Account) ([]Event, error) {
	return s.list(ctx, selectEvents+" WHERE actor = $1 ORDER BY occurred_at, id", actor.String())
}

func (s *PostgresStore) ListByToken(ctx context.Context, tokenID domain.CredentialID) ([]Event, error) {
	return s.list(ctx, selectEvents+" WHERE token_id = $1::numeric ORDER BY occurred_at, id", tokenID.String())
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			e                      Event
			id                     uuid.UUID
			action, actor, subject string
			outcome                string
			tokenID                sql.NullString
		)
		if err := rows.Scan(&id, &action, &actor, &subject, &tokenID, &outcome, &e.Reason, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ID = id
		e.Action = Action(action)
		e.Actor = domain.Account(actor)
		e.Subject = domain.Account(subject)
		e.Outcome = Outcome(outcome)
		if tokenID.Valid {
			parsed, err := domain.ParseCredentialID(tokenID.String)
			if err != nil {
				return nil, fmt.Errorf("scan audit token id: %w", err)
			}
			e.TokenID = &parsed
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
