package bcrypthash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashVerify(t *testing.T) {
	h := New(bcrypt.MinCost)

	hash, salt, err := h.Hash("p1")
	require.NoError(t, err)

	assert.NotEqual(t, "p1", hash)
	assert.True(t, strings.HasPrefix(hash, salt))
	assert.Len(t, salt, saltLen)
	assert.True(t, h.Verify("p1", hash))
	assert.False(t, h.Verify("p2", hash))
	assert.False(t, h.Verify("p1", "not-a-hash"))
}

func TestHasher_SaltIsRandom(t *testing.T) {
	h := New(bcrypt.MinCost)

	a, saltA, err := h.Hash("same")
	require.NoError(t, err)
	b, saltB, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, saltA, saltB)
}

func TestNew_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, New(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, New(99).cost)
	assert.Equal(t, 12, New(12).cost)
}
