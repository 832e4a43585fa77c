package models

// CountResponse is the body of GET /kyc/count.
type CountResponse struct {
	Count uint64 `json:"count"`
}

// IncrementResponse is the body of a successful POST /kyc/increment.
type IncrementResponse struct {
	Count   uint64 `json:"count"`
	Message string `json:"message"`
}
