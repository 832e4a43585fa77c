package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sbt/pkg/domain-errors"
)

type ownerRequest struct {
	Owner string `json:"owner"`
}

func (r *ownerRequest) Normalize() {
	r.Owner = "0x" + r.Owner
}

func (r *ownerRequest) Validate() error {
	if r.Owner == "0x" {
		return errors.New("owner is required")
	}
	return nil
}

type idRequest struct {
	ID string `json:"id"`
}

func (r *idRequest) Validate() error {
	if r.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"owner":"abc"}`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[ownerRequest](w, req, logger, ctx, "req-1")
		require.True(t, ok)
		assert.Equal(t, "0xabc", got.Owner)
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{owner}`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[ownerRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"owner":"a","approve":true}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[ownerRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("plain validation errors become validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"owner":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[ownerRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		body := decodeError(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "owner is required", body["error_description"])
	})

	t.Run("domain validation errors keep their code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[idRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	})
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
		name   string
	}{
		{dErrors.CodeNotFound, http.StatusNotFound, "not_found"},
		{dErrors.CodeDuplicateOwner, http.StatusConflict, "duplicate_owner"},
		{dErrors.CodeDuplicateID, http.StatusConflict, "duplicate_id"},
		{dErrors.CodeUnauthorized, http.StatusForbidden, "unauthorized"},
		{dErrors.CodeNoCredential, http.StatusForbidden, "no_credential"},
		{dErrors.CodeLocked, http.StatusLocked, "locked"},
		{dErrors.CodeTimeout, http.StatusGatewayTimeout, "timeout"},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tc.code, "detail"))
			assert.Equal(t, tc.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tc.name, body["error"])
			assert.Equal(t, "detail", body["error_description"])
		})
	}

	t.Run("internal errors hide their message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "pq: relation does not exist"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("non-domain errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
