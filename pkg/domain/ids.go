// Package domain provides typed identifiers shared by the registry and the access gate.
package domain

import (
	"regexp"
	"strconv"
	"strings"

	dErrors "sbt/pkg/domain-errors"
)

// MaxAccountLength bounds account keys accepted at trust boundaries.
const MaxAccountLength = 128

var validAccount = regexp.MustCompile(`^[A-Za-z0-9:._-]+$`)

// Account is an opaque identity key (for example an 0x-prefixed address).
// Accounts are compared byte for byte; no case folding is applied.
type Account string

// CredentialID identifies a credential within one registry.
type CredentialID uint64

// ParseAccount validates an account key received from a caller.
func ParseAccount(s string) (Account, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account cannot be empty")
	}
	if len(s) > MaxAccountLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account too long")
	}
	if !validAccount.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid account format")
	}
	return Account(s), nil
}

// ParseCredentialID parses a decimal credential ID.
func ParseCredentialID(s string) (CredentialID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "credential ID cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid credential ID format")
	}
	return CredentialID(v), nil
}

func (a Account) String() string      { return string(a) }
func (a Account) IsNil() bool         { return a == "" }
func (id CredentialID) String() string { return strconv.FormatUint(uint64(id), 10) }
