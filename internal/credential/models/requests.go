package models

import (
	"strings"

	"sbt/pkg/domain"
	dErrors "sbt/pkg/domain-errors"
	"sbt/pkg/validation"
)

// IssueRequest is the body of POST /sbt/credentials.
type IssueRequest struct {
	Owner   string  `json:"owner" validate:"required,account"`
	TokenID *uint64 `json:"token_id" validate:"required"`
}

func (r *IssueRequest) Normalize() {
	r.Owner = strings.TrimSpace(r.Owner)
}

func (r *IssueRequest) Validate() error {
	return validation.Validate(r)
}

// Parsed returns the typed owner and id. Call after Validate.
func (r *IssueRequest) Parsed() (domain.Account, domain.CredentialID, error) {
	owner, err := domain.ParseAccount(r.Owner)
	if err != nil {
		return "", 0, dErrors.Wrap(err, dErrors.CodeValidation, "invalid owner")
	}
	if r.TokenID == nil {
		return "", 0, dErrors.New(dErrors.CodeValidation, "token_id is required")
	}
	return owner, domain.CredentialID(*r.TokenID), nil
}

// TransferRequest is the body of POST /sbt/credentials/{id}/transfer.
// Data selects the safe-transfer variant.
type TransferRequest struct {
	From string  `json:"from" validate:"required,account"`
	To   string  `json:"to" validate:"required,account"`
	Data *string `json:"data,omitempty" validate:"omitempty,max=2048,hexadecimal"`
}

func (r *TransferRequest) Normalize() {
	r.From = strings.TrimSpace(r.From)
	r.To = strings.TrimSpace(r.To)
	if r.Data != nil {
		d := strings.TrimPrefix(strings.TrimSpace(*r.Data), "0x")
		if d == "" {
			r.Data = nil
			return
		}
		r.Data = &d
	}
}

func (r *TransferRequest) Validate() error {
	return validation.Validate(r)
}
