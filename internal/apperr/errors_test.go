package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("update: %w", NotFound("Failed to update todo with id=%d", 7))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.False(t, IsStore(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Failed to delete todo with id=%d", 999)
	assert.Equal(t, "Failed to delete todo with id=999", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestStoreErrorUnwraps(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Store("insert todo", cause)

	assert.Equal(t, "insert todo: disk I/O error", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsStore(err))
}

func TestAsValidation(t *testing.T) {
	err := fmt.Errorf("decode: %w", Validation(LocationParams, `"id" must be a number`))

	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, LocationParams, v.Location)
	assert.Equal(t, `"id" must be a number`, v.Message)

	_, ok = AsValidation(Store("open", errors.New("x")))
	assert.False(t, ok)
}
