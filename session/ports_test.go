package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortAllocatorAllocateWithinRange(t *testing.T) {
	a := NewPortAllocator()
	port, err := a.Allocate()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, uint16(minMediaPort))
	assert.Less(t, port, uint16(maxMediaPort))
	assert.True(t, a.InUse(port))
}

func TestPortAllocatorNeverDoubleAllocates(t *testing.T) {
	a := NewPortAllocator()
	seen := make(map[uint16]bool)
	for i := 0; i < 100; i++ {
		port, err := a.Allocate()
		require.NoError(t, err)
		assert.False(t, seen[port], "port %d allocated twice", port)
		seen[port] = true
	}
}

func TestPortAllocatorReleaseAllowsReuse(t *testing.T) {
	a := NewPortAllocator()
	port, err := a.Allocate()
	require.NoError(t, err)

	a.Release(port)
	assert.False(t, a.InUse(port))
}

func TestPortAllocatorExhaustion(t *testing.T) {
	a := NewPortAllocator()
	total := maxMediaPort - minMediaPort
	for i := 0; i < total; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	_, err := a.Allocate()
	assert.Error(t, err)
}
