package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")

	assert.Equal(t, "req-1", ids.Generate())
	assert.Equal(t, "req-2", ids.Generate())

	ids.Reset()
	assert.Equal(t, "req-1", ids.Generate())
}

func TestSequentialIDsPrefix(t *testing.T) {
	ids := NewSequentialIDs("cli")
	assert.Equal(t, "cli-1", ids.Generate())
}
