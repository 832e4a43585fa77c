package audit

import (
	"context"
	"errors"

	"sbt/pkg/domain"
)

// Sink receives audit events. Implementations must be safe for concurrent use.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a Sink that can be queried.
type Store interface {
	Sink
	ListByActor(ctx context.Context, actor domain.Account) ([]Event, error)
	ListByToken(ctx context.Context, tokenID domain.CredentialID) ([]Event, error)
}

type fanout []Sink

// Fanout returns a Sink that appends to every sink in order and joins their errors.
func Fanout(sinks ...Sink) Sink {
	return fanout(sinks)
}

func (f fanout) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
