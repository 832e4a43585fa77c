// Package store persists credentials.
//
// Error contract shared by every implementation:
//   - Insert returns sentinel.ErrOwnerTaken when the owner already holds a
//     credential, checked before sentinel.ErrIDTaken, which is returned when
//     the id has ever been issued (live or destroyed).
//   - FindByID, FindByOwner and Delete return sentinel.ErrNotFound for a
//     missing credential.
//   - Infrastructure failures are wrapped with context.
//
// Every mutation is atomic: a failed call leaves both indexes and the
// issued-id ledger unchanged.
package store

import (
	"context"

	"sbt/internal/credential/models"
	"sbt/pkg/domain"
)

type Store interface {
	Insert(ctx context.Context, credential *models.Credential) error
	FindByID(ctx context.Context, id domain.CredentialID) (*models.Credential, error)
	FindByOwner(ctx context.Context, owner domain.Account) (*models.Credential, error)
	// Delete removes the credential from both indexes and returns it.
	// The id stays in the issued-id ledger.
	Delete(ctx context.Context, id domain.CredentialID) (*models.Credential, error)
	Count(ctx context.Context) (int, error)
}
