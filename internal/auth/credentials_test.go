package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherHashAndVerify(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.True(t, hasher.Verify("s3cret-pass", hash))
	require.False(t, hasher.Verify("wrong", hash))
}

func TestHasherSalted(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same")
	require.NoError(t, err)
	second, err := hasher.Hash("same")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify("same", first))
	require.True(t, hasher.Verify("same", second))
}

func TestHasherVerifyMalformed(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	require.False(t, hasher.Verify("value", "not-a-bcrypt-hash"))
	require.False(t, hasher.Verify("", "anything"))
	require.False(t, hasher.Verify("value", ""))
}

func TestHasherEmpty(t *testing.T) {
	_, err := NewHasher(bcrypt.MinCost).Hash("")
	require.ErrorIs(t, err, ErrEmptyCredential)
}

func TestNewHasherDefaultCost(t *testing.T) {
	hasher := NewHasher(0)
	hash, err := hasher.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, DefaultBcryptCost, cost)
}
