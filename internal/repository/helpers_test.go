package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanlink/scanlink-server-go/internal/model"
)

func TestHandleNotFound(t *testing.T) {
	t.Run("converts no rows to nil without error", func(t *testing.T) {
		result, err := HandleNotFound(&model.ShortCode{}, sql.ErrNoRows)

		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("converts wrapped no rows", func(t *testing.T) {
		wrapped := fmt.Errorf("get code: %w", sql.ErrNoRows)
		result, err := HandleNotFound(&model.ShortCode{}, wrapped)

		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("passes through other errors", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		result, err := HandleNotFound(&model.ShortCode{}, dbErr)

		assert.Equal(t, dbErr, err)
		assert.Nil(t, result)
	})

	t.Run("returns the result on success", func(t *testing.T) {
		code := &model.ShortCode{ID: "abc123"}
		result, err := HandleNotFound(code, nil)

		require.NoError(t, err)
		assert.Equal(t, code, result)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches a pq unique violation", func(t *testing.T) {
		err := &pq.Error{Code: "23505"}
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("matches a wrapped violation", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("ignores other pq errors", func(t *testing.T) {
		err := &pq.Error{Code: "23503"}
		assert.False(t, IsUniqueViolation(err))
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(errors.New("plain")))
	})
}
