package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingchat/internal/app/user"
)

func TestRegistryAdmitAndLookup(t *testing.T) {
	r := NewRegistry()
	alice := user.Identity{ID: "user-a", DisplayName: "alice"}

	displaced := r.Admit("handle-1", alice)
	assert.Empty(t, displaced)

	ident, ok := r.Identity("handle-1")
	require.True(t, ok)
	assert.Equal(t, alice, ident)

	handle, ok := r.Handle("user-a")
	require.True(t, ok)
	assert.Equal(t, "handle-1", handle)

	assert.Equal(t, 1, r.Len())
}

func TestRegistryDisplacementNewerConnectionWins(t *testing.T) {
	r := NewRegistry()
	alice := user.Identity{ID: "user-a", DisplayName: "alice"}

	r.Admit("handle-old", alice)
	displaced := r.Admit("handle-new", alice)

	assert.Equal(t, "handle-old", displaced)

	// The old handle is gone from both directions.
	_, ok := r.Identity("handle-old")
	assert.False(t, ok)

	handle, ok := r.Handle("user-a")
	require.True(t, ok)
	assert.Equal(t, "handle-new", handle)

	assert.Equal(t, 1, r.Len())
}

func TestRegistryReadmitSameHandleIsNotDisplacement(t *testing.T) {
	r := NewRegistry()
	alice := user.Identity{ID: "user-a", DisplayName: "alice"}

	r.Admit("handle-1", alice)
	displaced := r.Admit("handle-1", alice)

	assert.Empty(t, displaced)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryEvict(t *testing.T) {
	r := NewRegistry()
	alice := user.Identity{ID: "user-a", DisplayName: "alice"}
	r.Admit("handle-1", alice)

	ident, ok := r.Evict("handle-1")
	require.True(t, ok)
	assert.Equal(t, alice, ident)

	_, ok = r.Identity("handle-1")
	assert.False(t, ok)
	_, ok = r.Handle("user-a")
	assert.False(t, ok)

	// Evicting again is a no-op.
	_, ok = r.Evict("handle-1")
	assert.False(t, ok)
}

func TestRegistryEvictStaleHandleKeepsNewerEntry(t *testing.T) {
	r := NewRegistry()
	alice := user.Identity{ID: "user-a", DisplayName: "alice"}

	r.Admit("handle-old", alice)
	r.Admit("handle-new", alice)

	// The displaced handle was already removed; evicting it must not touch
	// the identity's current entry.
	_, ok := r.Evict("handle-old")
	assert.False(t, ok)

	handle, ok := r.Handle("user-a")
	require.True(t, ok)
	assert.Equal(t, "handle-new", handle)
}

func TestRegistryHandlesSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Admit("h1", user.Identity{ID: "u1", DisplayName: "a"})
	r.Admit("h2", user.Identity{ID: "u2", DisplayName: "b"})
	r.Admit("h3", user.Identity{ID: "u3", DisplayName: "c"})

	assert.ElementsMatch(t, []string{"h1", "h2", "h3"}, r.Handles())
}
