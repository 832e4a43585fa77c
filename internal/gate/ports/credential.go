package ports

import (
	"context"

	"sbt/pkg/domain"
)

// CredentialPort is the gate's view of the credential registry: it only
// needs to know whether an account currently holds a credential.
// An in-process adapter serves it today; a remote registry client could
// replace it without touching the gate service.
type CredentialPort interface {
	// HoldsCredential reports whether account holds a live credential.
	HoldsCredential(ctx context.Context, account domain.Account) (bool, error)
}
