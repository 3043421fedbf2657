package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidHTTPURL(t *testing.T) {
	t.Run("accepts http and https", func(t *testing.T) {
		assert.True(t, IsValidHTTPURL("https://example.com"))
		assert.True(t, IsValidHTTPURL("http://example.com/path?q=1"))
	})

	t.Run("rejects other schemes", func(t *testing.T) {
		assert.False(t, IsValidHTTPURL("javascript:alert(1)"))
		assert.False(t, IsValidHTTPURL("ftp://example.com"))
		assert.False(t, IsValidHTTPURL("data:text/html,hi"))
	})

	t.Run("rejects relative and empty urls", func(t *testing.T) {
		assert.False(t, IsValidHTTPURL(""))
		assert.False(t, IsValidHTTPURL("/relative/path"))
		assert.False(t, IsValidHTTPURL("https://"))
	})
}

func TestNormalizeCode(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "abc123", NormalizeCode("  abc123\n"))
	})

	t.Run("preserves case", func(t *testing.T) {
		assert.Equal(t, "AbC123", NormalizeCode("AbC123"))
	})
}
