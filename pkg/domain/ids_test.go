package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sbt/pkg/domain-errors"
)

func TestParseAccount(t *testing.T) {
	t.Run("rejects empty and blank", func(t *testing.T) {
		for _, in := range []string{"", "   "} {
			_, err := ParseAccount(in)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("rejects oversized keys", func(t *testing.T) {
		_, err := ParseAccount(strings.Repeat("a", MaxAccountLength+1))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects characters outside the key alphabet", func(t *testing.T) {
		_, err := ParseAccount("0xabc\n")
		require.NoError(t, err, "surrounding whitespace is trimmed")
		_, err = ParseAccount("0xabc/../def")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("keeps case", func(t *testing.T) {
		acct, err := ParseAccount("0xAbC123")
		require.NoError(t, err)
		assert.Equal(t, Account("0xAbC123"), acct)
		assert.NotEqual(t, Account("0xabc123"), acct)
	})
}

func TestParseCredentialID(t *testing.T) {
	id, err := ParseCredentialID("0")
	require.NoError(t, err)
	assert.Equal(t, CredentialID(0), id)

	id, err = ParseCredentialID("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", id.String())

	for _, in := range []string{"", "-1", "1.5", "0x10", "18446744073709551616"} {
		_, err := ParseCredentialID(in)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), in)
	}
}
