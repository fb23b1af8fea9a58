package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/chatters/internal/core"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	require.NoError(t, s.Set(ctx, "k", []byte("v2")))

	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, found, _ = s.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'z'

	v, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
	v[0] = 'y'
	v2, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(v2))
}

func TestNamespace_IsolatesProfiles(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	a := core.Namespace(base, "profile:a:")
	b := core.Namespace(base, "profile:b:")

	require.NoError(t, a.Set(ctx, "chatters_session", []byte(`{"id":"1"}`)))

	_, found, err := b.Get(ctx, "chatters_session")
	require.NoError(t, err)
	assert.False(t, found)

	v, found, err := a.Get(ctx, "chatters_session")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"1"}`, string(v))
	assert.ElementsMatch(t, []string{"profile:a:chatters_session"}, base.Keys())

	require.NoError(t, a.Close())
	_, found, _ = a.Get(ctx, "chatters_session")
	assert.True(t, found, "closing a namespace must not touch the parent")
}
