package property

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextChange waits for one notification.
func nextChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "change channel closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestSpace_SetNotifiesEveryPeer(t *testing.T) {
	ctx := context.Background()
	space := NewSpace()
	alice := space.Join("alice")
	bob := space.Join("bob")
	defer alice.Close()
	defer bob.Close()

	require.NoError(t, alice.SetPublic(ctx, "k", "v1"))

	assert.True(t, nextChange(t, bob.Changes()).Has("k"))
	assert.True(t, nextChange(t, alice.Changes()).Has("k"), "writers see their own changes")

	v, ok, err := bob.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Value{Data: "v1", Scope: ScopePublic}, v)
}

func TestSpace_PublicTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	space := NewSpace()
	p := space.Join("p")
	defer p.Close()

	space.SetProtected("k", "protected")
	v, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ScopeProtected, v.Scope)

	require.NoError(t, p.SetPublic(ctx, "k", "public"))
	v, ok, err = p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Value{Data: "public", Scope: ScopePublic}, v)

	// An empty public value does not hide the protected one.
	require.NoError(t, p.SetPublic(ctx, "k", ""))
	v, ok, err = p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "protected", v.Data)
}

func TestSpace_GetMissing(t *testing.T) {
	p := NewSpace().Join("p")
	defer p.Close()

	_, ok, err := p.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPeer_IdentityUnknownUntilIdentified(t *testing.T) {
	p := NewSpace().Join("")
	defer p.Close()

	_, ok := p.LocalUser()
	assert.False(t, ok)

	p.Identify("u-1")
	id, ok := p.LocalUser()
	assert.True(t, ok)
	assert.Equal(t, "u-1", id)
}

func TestPeer_Close(t *testing.T) {
	ctx := context.Background()
	space := NewSpace()
	p := space.Join("p")
	other := space.Join("other")
	defer other.Close()

	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "Close is idempotent")

	assert.ErrorIs(t, p.SetPublic(ctx, "k", "v"), ErrClosed)
	_, _, err := p.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)

	_, open := <-p.Changes()
	assert.False(t, open, "change channel closes with the peer")

	require.NoError(t, other.SetPublic(ctx, "k", "v"))
	assert.True(t, nextChange(t, other.Changes()).Has("k"))
}

func TestSpace_Snapshot(t *testing.T) {
	space := NewSpace()
	p := space.Join("p")
	defer p.Close()

	require.NoError(t, p.SetPublic(context.Background(), "a", "1"))
	space.SetProtected("b", "2")

	assert.Equal(t, map[string]string{"a": "1"}, space.Snapshot(ScopePublic))
	assert.Equal(t, map[string]string{"b": "2"}, space.Snapshot(ScopeProtected))
}
