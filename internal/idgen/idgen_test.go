package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsPrefixedUUID(t *testing.T) {
	id := New()
	require.True(t, strings.HasPrefix(id, "custom-component-"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "custom-component-"))
	assert.NoError(t, err)
}

func TestNanoID(t *testing.T) {
	gen := NanoID(9)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := gen()
		assert.Len(t, id, 9)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
