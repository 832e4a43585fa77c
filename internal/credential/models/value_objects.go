package models

import (
	"sbt/pkg/domain"
)

// BurnAuth decides who may burn a credential. Numeric values are part of the
// public surface and must not be reordered.
type BurnAuth uint8

const (
	BurnAuthIssuerOnly BurnAuth = 0
	BurnAuthOwnerOnly  BurnAuth = 1
	BurnAuthBoth       BurnAuth = 2
	BurnAuthNeither    BurnAuth = 3
)

// DefaultBurnAuth is the policy every credential is issued with.
const DefaultBurnAuth = BurnAuthBoth

func (b BurnAuth) IsValid() bool {
	return b <= BurnAuthNeither
}

func (b BurnAuth) String() string {
	switch b {
	case BurnAuthIssuerOnly:
		return "issuer_only"
	case BurnAuthOwnerOnly:
		return "owner_only"
	case BurnAuthBoth:
		return "both"
	case BurnAuthNeither:
		return "neither"
	default:
		return "unknown"
	}
}

// Permits reports whether caller is in the set of accounts allowed to burn.
func (b BurnAuth) Permits(caller, issuer, owner domain.Account) bool {
	if caller.IsNil() {
		return false
	}
	switch b {
	case BurnAuthIssuerOnly:
		return caller == issuer
	case BurnAuthOwnerOnly:
		return caller == owner
	case BurnAuthBoth:
		return caller == issuer || caller == owner
	default:
		return false
	}
}
