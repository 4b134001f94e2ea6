package canon

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocSandboxIDDeterministic(t *testing.T) {
	first := NewContext()
	second := NewContext()

	a, err := first.AllocSandboxID("Hidden Node")
	require.NoError(t, err)
	b, err := second.AllocSandboxID("Hidden Node")
	require.NoError(t, err)

	assert.Equal(t, a, b, "same name and same claimed set must yield the same id")
	assert.Regexp(t, `^C144N-9[0-9]{2}$`, a)
}

func TestAllocSandboxIDNeverCollides(t *testing.T) {
	ctx := NewContext()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := ctx.AllocSandboxID(fmt.Sprintf("seed-%d", i))
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate grant %s", id)
		seen[id] = true
	}

	// Band is full now.
	_, err := ctx.AllocSandboxID("one too many")
	assert.Error(t, err)
}

func TestAllocSandboxIDAvoidsClaimedIDs(t *testing.T) {
	ctx := NewContext()
	blocked, err := ctx.AllocSandboxID("Hidden Node")
	require.NoError(t, err)

	// A fresh context with that id pre-claimed must route around it.
	other := NewContext()
	require.True(t, other.Claim(blocked))
	rerouted, err := other.AllocSandboxID("Hidden Node")
	require.NoError(t, err)
	assert.NotEqual(t, blocked, rerouted)
}

func TestContextClaim(t *testing.T) {
	ctx := NewContext()
	assert.True(t, ctx.Claim("C144N-001"))
	assert.False(t, ctx.Claim("C144N-001"))
	assert.True(t, ctx.IsTaken("C144N-001"))
	assert.False(t, ctx.IsTaken("C144N-002"))
}

func TestAllocationsTrail(t *testing.T) {
	ctx := NewContext()
	id, err := ctx.AllocSandboxID("Hidden Node")
	require.NoError(t, err)

	trail := ctx.Allocations()
	require.Len(t, trail, 1)
	assert.Equal(t, Allocation{ID: id, Name: "Hidden Node"}, trail[0])
}
