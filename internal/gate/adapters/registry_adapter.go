package adapters

import (
	"context"

	"sbt/internal/gate/ports"
	"sbt/pkg/domain"
)

// balanceReader is implemented by the credential registry service.
// Defined locally to avoid coupling the gate to the registry package.
type balanceReader interface {
	BalanceOf(ctx context.Context, account domain.Account) (int, error)
}

// RegistryAdapter adapts the credential registry to ports.CredentialPort.
type RegistryAdapter struct {
	registry balanceReader
}

func NewRegistryAdapter(registry balanceReader) *RegistryAdapter {
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) HoldsCredential(ctx context.Context, account domain.Account) (bool, error) {
	balance, err := a.registry.BalanceOf(ctx, account)
	if err != nil {
		return false, err
	}
	return balance >= 1, nil
}

var _ ports.CredentialPort = (*RegistryAdapter)(nil)
