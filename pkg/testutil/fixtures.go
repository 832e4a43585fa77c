package testutil

import (
	"fmt"
	"time"

	"sbt/internal/credential/models"
	"sbt/pkg/domain"
)

// TestAccounts are the fixed identities used across tests.
var TestAccounts = struct {
	Issuer domain.Account
	Alice  domain.Account
	Bob    domain.Account
	Carol  domain.Account
}{
	Issuer: "issuer",
	Alice:  "alice",
	Bob:    "bob",
	Carol:  "carol",
}

// CredentialBuilder provides a fluent interface for building test credentials.
type CredentialBuilder struct {
	credential *models.Credential
}

// NewCredentialBuilder creates a builder with id 1 owned by Alice.
func NewCredentialBuilder() *CredentialBuilder {
	return &CredentialBuilder{
		credential: &models.Credential{
			ID:       1,
			Owner:    TestAccounts.Alice,
			Issuer:   TestAccounts.Issuer,
			BurnAuth: models.DefaultBurnAuth,
			IssuedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func (b *CredentialBuilder) WithID(id domain.CredentialID) *CredentialBuilder {
	b.credential.ID = id
	return b
}

func (b *CredentialBuilder) WithOwner(owner domain.Account) *CredentialBuilder {
	b.credential.Owner = owner
	return b
}

func (b *CredentialBuilder) WithIssuer(issuer domain.Account) *CredentialBuilder {
	b.credential.Issuer = issuer
	return b
}

func (b *CredentialBuilder) WithBurnAuth(burnAuth models.BurnAuth) *CredentialBuilder {
	b.credential.BurnAuth = burnAuth
	return b
}

func (b *CredentialBuilder) IssuedAt(t time.Time) *CredentialBuilder {
	b.credential.IssuedAt = t
	return b
}

func (b *CredentialBuilder) Build() *models.Credential {
	c := *b.credential
	return &c
}

// NewTestCredential creates a credential for id and owner issued by the test issuer.
func NewTestCredential(id domain.CredentialID, owner domain.Account) *models.Credential {
	return NewCredentialBuilder().WithID(id).WithOwner(owner).Build()
}

// OwnerN returns a distinct account per index, for fan-out tests.
func OwnerN(i int) domain.Account {
	return domain.Account(fmt.Sprintf("holder-%d", i))
}
