package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_ExpiresIdleEntries(t *testing.T) {
	now := time.Unix(0, 0)
	r := NewRegistry[int](time.Minute)
	r.now = func() time.Time { return now }

	r.Put("a", 1)
	now = now.Add(30 * time.Second)
	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(59 * time.Second)
	_, ok = r.Get("a")
	assert.True(t, ok, "Get refreshes the idle clock")

	now = now.Add(2 * time.Minute)
	_, ok = r.Get("a")
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry[string](0)
	calls := 0
	mk := func() string { calls++; return "v" }

	assert.Equal(t, "v", r.GetOrCreate("k", mk))
	assert.Equal(t, "v", r.GetOrCreate("k", mk))
	assert.Equal(t, 1, calls)

	v, ok := r.Delete("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	_, ok = r.Delete("k")
	assert.False(t, ok)
}
