package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "sbt/pkg/domain-errors"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates transport-agnostic domain errors into HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": DomainCodeToHTTPCode(domainErr.Code),
		}
		// Internal messages may carry infrastructure detail; keep them out of responses.
		if domainErr.Message != "" && domainErr.Code != dErrors.CodeInternal {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
// CodeUnauthorized is a role failure of an authenticated caller, so it maps to 403;
// missing or invalid bearer tokens are answered with 401 by the auth middleware.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeInvalidInput, dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeDuplicateOwner, dErrors.CodeDuplicateID:
		return http.StatusConflict
	case dErrors.CodeUnauthorized, dErrors.CodeNoCredential:
		return http.StatusForbidden
	case dErrors.CodeLocked:
		return http.StatusLocked
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the "error" field of JSON responses.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeDuplicateOwner:
		return "duplicate_owner"
	case dErrors.CodeDuplicateID:
		return "duplicate_id"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeNoCredential:
		return "no_credential"
	case dErrors.CodeLocked:
		return "locked"
	case dErrors.CodeTimeout:
		return "timeout"
	default:
		return "internal_error"
	}
}
