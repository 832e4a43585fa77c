package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sbt/pkg/domain-errors"
)

type issueBody struct {
	Owner   string  `json:"owner" validate:"required,account"`
	TokenID *uint64 `json:"token_id" validate:"required"`
	Data    string  `json:"data,omitempty" validate:"omitempty,hexadecimal,max=512"`
}

func TestValidate(t *testing.T) {
	zero := uint64(0)

	t.Run("accepts token id zero", func(t *testing.T) {
		require.NoError(t, Validate(&issueBody{Owner: "0xabc", TokenID: &zero}))
	})

	t.Run("missing token id names the json field", func(t *testing.T) {
		err := Validate(&issueBody{Owner: "0xabc"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "token_id is required", err.Error())
	})

	t.Run("rejects malformed account", func(t *testing.T) {
		err := Validate(&issueBody{Owner: "not an account", TokenID: &zero})
		assert.Equal(t, "owner must be a valid account", err.Error())
	})

	t.Run("rejects non-hex data", func(t *testing.T) {
		err := Validate(&issueBody{Owner: "0xabc", TokenID: &zero, Data: "zz"})
		assert.Equal(t, "data must be hex encoded", err.Error())
	})
}
