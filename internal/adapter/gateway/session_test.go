package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry(t *testing.T) {
	r := NewSessionRegistry()

	require.NoError(t, r.Claim(1))
	assert.True(t, r.Held(1))
	assert.ErrorContains(t, r.Claim(1), "client id 1 already has an open session")

	require.NoError(t, r.Claim(2))

	r.Release(1)
	assert.False(t, r.Held(1))
	assert.NoError(t, r.Claim(1))
}

func TestNilSessionRegistry(t *testing.T) {
	var r *SessionRegistry
	assert.NoError(t, r.Claim(1))
	assert.NoError(t, r.Claim(1))
	assert.False(t, r.Held(1))
	r.Release(1)
}
