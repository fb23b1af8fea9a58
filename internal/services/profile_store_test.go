package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/chatters/internal/core/kvstore"
	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/queue"
)

func TestProfileStore_SaveAndFindUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec, err := s.FindUser(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Nil(t, rec)

	u := models.User{ID: "u1", Email: "a@b.com", Username: "jane_d"}
	require.NoError(t, s.SaveUser(ctx, u, "hash"))

	rec, err = s.FindUser(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "jane_d", rec.Username)
	assert.Equal(t, "hash", rec.PasswordHash)

	rec, err = s.FindUser(ctx, "A@B.com")
	require.NoError(t, err)
	assert.Nil(t, rec, "lookup is exact")
}

func TestProfileStore_SessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := models.User{ID: "u1", Email: "a@b.com"}
	require.NoError(t, s.SaveUser(ctx, u, "hash"))

	got, err := s.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SetSession(ctx, &u))
	got, err = s.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, &u, got)

	require.NoError(t, s.SetSession(ctx, nil))
	got, err = s.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileStore_OrphanedSessionIsCleared(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := NewProfileStore(kv, StoreOptions{HistoryLimit: 10})

	ghost := models.User{ID: "gone", Email: "ghost@b.com"}
	require.NoError(t, s.SetSession(ctx, &ghost))

	got, err := s.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, found, err := kv.Get(ctx, sessionKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProfileStore_HistoryIsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	rec := &queue.Recorder{}
	s := NewProfileStore(kvstore.NewMemoryStore(), StoreOptions{ProfileID: "p1", HistoryLimit: 200, Publisher: rec, Topic: "history.saved"})

	h, err := s.GetHistory(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.Empty(t, h)

	first, err := s.SaveHistoryItem(ctx, "u1", models.NewStoredItem(models.VibePayload{Message: "one"}))
	require.NoError(t, err)
	second, err := s.SaveHistoryItem(ctx, "u1", models.NewStoredItem(models.ReplyPayload{Input: "two"}))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.Timestamp.IsZero())

	h, err = s.GetHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, second.ID, h[0].ID)
	assert.Equal(t, models.ItemReply, h[0].Type)
	assert.Equal(t, first.ID, h[1].ID)

	other, err := s.GetHistory(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	events := rec.Snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, "history.saved", events[1].Topic)
	ev := events[1].Payload.(models.HistoryEvent)
	assert.Equal(t, second.ID, ev.ItemID)
	assert.Equal(t, "p1", ev.ProfileID)
}

func TestProfileStore_HistoryTrimsOldest(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore(kvstore.NewMemoryStore(), StoreOptions{HistoryLimit: 3})

	var ids []string
	for i := 0; i < 5; i++ {
		it, err := s.SaveHistoryItem(ctx, "u1", models.NewStoredItem(models.VibePayload{Message: fmt.Sprint(i)}))
		require.NoError(t, err)
		ids = append(ids, it.ID)
	}

	h, err := s.GetHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, h, 3)
	assert.Equal(t, []string{ids[4], ids[3], ids[2]}, []string{h[0].ID, h[1].ID, h[2].ID})
}

func TestProfileStore_CorruptTableIsAnError(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, usersKey, []byte("{not json")))
	s := NewProfileStore(kv, StoreOptions{HistoryLimit: 1})

	_, err := s.FindUser(ctx, "a@b.com")
	assert.ErrorContains(t, err, "decode "+usersKey)
}

func TestProfileStore_Theme(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	th, err := s.GetTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, th)

	require.NoError(t, s.SetTheme(ctx, models.ThemeDark))
	th, err = s.GetTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, th)

	assert.True(t, errors.Is(s.SetTheme(ctx, "sepia"), ErrInvalidInput))
}

func TestProfileStores_IsolateProfiles(t *testing.T) {
	ctx := context.Background()
	stores := NewProfileStores(kvstore.NewMemoryStore(), StoreOptions{HistoryLimit: 10})

	a, b := stores.For("a"), stores.For("b")
	assert.Same(t, a, stores.For("a"))

	require.NoError(t, a.SaveUser(ctx, models.User{ID: "1", Email: "x@y.z"}, "h"))
	rec, err := b.FindUser(ctx, "x@y.z")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
