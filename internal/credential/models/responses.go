package models

import "time"

type CredentialResponse struct {
	TokenID  string    `json:"token_id"`
	Owner    string    `json:"owner"`
	Issuer   string    `json:"issuer"`
	URI      string    `json:"uri"`
	Locked   bool      `json:"locked"`
	BurnAuth BurnAuth  `json:"burn_auth"`
	IssuedAt time.Time `json:"issued_at"`
}

// NewCredentialResponse renders c. Token ids are strings so 64-bit values survive JSON clients.
func NewCredentialResponse(c *Credential, baseURI string) CredentialResponse {
	return CredentialResponse{
		TokenID:  c.ID.String(),
		Owner:    c.Owner.String(),
		Issuer:   c.Issuer.String(),
		URI:      URI(baseURI, c.ID),
		Locked:   c.Locked(),
		BurnAuth: c.BurnAuth,
		IssuedAt: c.IssuedAt,
	}
}

type RegistryResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Issuer      string `json:"issuer"`
	BaseURI     string `json:"base_uri"`
	KYCLevel    uint8  `json:"kyc_level"`
	TotalSupply int    `json:"total_supply"`
	Capability  string `json:"capability"`
}

type OwnerResponse struct {
	TokenID string `json:"token_id"`
	Owner   string `json:"owner"`
}

type URIResponse struct {
	TokenID string `json:"token_id"`
	URI     string `json:"uri"`
}

type LockedResponse struct {
	TokenID string `json:"token_id"`
	Locked  bool   `json:"locked"`
}

type BurnAuthResponse struct {
	TokenID  string   `json:"token_id"`
	BurnAuth BurnAuth `json:"burn_auth"`
	Mode     string   `json:"mode"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance int    `json:"balance"`
}

type InterfaceResponse struct {
	Tag       string `json:"tag"`
	Supported bool   `json:"supported"`
}

type ActionResponse struct {
	TokenID string `json:"token_id"`
	Message string `json:"message"`
}
