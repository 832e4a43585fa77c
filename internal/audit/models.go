package audit

import (
	"time"

	"github.com/google/uuid"

	"sbt/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID            `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Action    Action               `json:"action"`
	Actor     domain.Account       `json:"actor"`
	Subject   domain.Account       `json:"subject,omitempty"`
	TokenID   *domain.CredentialID `json:"token_id,omitempty"`
	Outcome   Outcome              `json:"outcome"`
	Reason    string               `json:"reason,omitempty"`
	RequestID string               `json:"request_id,omitempty"`
}

type Action string

const (
	ActionCredentialIssued  Action = "credential_issued"
	ActionCredentialRevoked Action = "credential_revoked"
	ActionCredentialBurned  Action = "credential_burned"
	ActionTransferRejected  Action = "transfer_rejected"
	ActionKYCIncremented    Action = "kyc_incremented"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
)

// TokenRef returns a pointer to a copy of id, for Event.TokenID.
func TokenRef(id domain.CredentialID) *domain.CredentialID {
	return &id
}
