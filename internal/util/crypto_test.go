package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("generates 64 character hex string", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		token1, _ := GenerateToken()
		token2, _ := GenerateToken()
		assert.NotEqual(t, token1, token2)
	})

	t.Run("generates valid hex", func(t *testing.T) {
		token, _ := GenerateToken()
		for _, c := range token {
			assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'))
		}
	})
}

func TestHashToken(t *testing.T) {
	t.Run("returns 64 character hex string", func(t *testing.T) {
		hash := HashToken("test-token")
		assert.Len(t, hash, 64)
	})

	t.Run("same input produces same hash", func(t *testing.T) {
		hash1 := HashToken("test-token")
		hash2 := HashToken("test-token")
		assert.Equal(t, hash1, hash2)
	})

	t.Run("different input produces different hash", func(t *testing.T) {
		hash1 := HashToken("token-1")
		hash2 := HashToken("token-2")
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestMaskCode(t *testing.T) {
	t.Run("keeps only the first three characters", func(t *testing.T) {
		assert.Equal(t, "abc***", MaskCode("abc123"))
	})

	t.Run("masks short codes entirely", func(t *testing.T) {
		assert.Equal(t, "***", MaskCode("ab"))
	})
}
