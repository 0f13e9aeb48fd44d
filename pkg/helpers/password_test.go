package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("croissant-lover")
	require.NoError(t, err)
	assert.NotEqual(t, "croissant-lover", hash)
	assert.True(t, CompareHashAndPassword(hash, "croissant-lover"))
	assert.False(t, CompareHashAndPassword(hash, "croissant-hater"))
}

func TestLongPasswordsAreTruncated(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 72)
	hash, err := HashPassword(long + "tail-one")
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, long+"tail-two"))
	assert.True(t, CompareHashAndPassword(hash, long))
	assert.False(t, CompareHashAndPassword(hash, long[:71]))
}
