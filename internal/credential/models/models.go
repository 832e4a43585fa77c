package models

import (
	"time"

	"sbt/pkg/domain"
	dErrors "sbt/pkg/domain-errors"
)

// Credential is a soulbound token bound to exactly one owner.
//
// A credential never changes owner. It is created by issuance and destroyed
// by revoke or burn; its id is never issued again afterwards.
type Credential struct {
	ID       domain.CredentialID
	Owner    domain.Account
	Issuer   domain.Account
	BurnAuth BurnAuth
	IssuedAt time.Time
}

// NewCredential creates a Credential with domain invariant checks.
func NewCredential(id domain.CredentialID, owner, issuer domain.Account, burnAuth BurnAuth, issuedAt time.Time) (*Credential, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner required")
	}
	if issuer.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "issuer required")
	}
	if !burnAuth.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid burn auth")
	}
	if issuedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "issue time required")
	}
	return &Credential{
		ID:       id,
		Owner:    owner,
		Issuer:   issuer,
		BurnAuth: burnAuth,
		IssuedAt: issuedAt,
	}, nil
}

// Locked is true for every existing credential.
func (c *Credential) Locked() bool {
	return true
}

// CanBurn reports whether caller may destroy the credential under its burn policy.
func (c *Credential) CanBurn(caller domain.Account) bool {
	return c.BurnAuth.Permits(caller, c.Issuer, c.Owner)
}

// URI returns the metadata URI: baseURI followed by the decimal id.
func URI(baseURI string, id domain.CredentialID) string {
	return baseURI + id.String()
}

// Metadata describes a registry instance. It is fixed at construction.
// KYCLevel is informational; no operation reads it.
type Metadata struct {
	Name     string
	Symbol   string
	Issuer   domain.Account
	BaseURI  string
	KYCLevel uint8
}
