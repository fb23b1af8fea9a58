package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/markdave123-py/chatters/internal/core"
	"github.com/markdave123-py/chatters/internal/models"
)

const (
	usersKey      = "chatters_users"
	sessionKey    = "chatters_session"
	historyPrefix = "chatters_history_"
	themeKey      = "chatters_theme"
)

// ProfileStore holds one profile's users, session slot, histories and
// preferences on top of a KVStore. Every read-modify-write runs under mu.
type ProfileStore struct {
	kv           core.KVStore
	pub          core.EventPublisher
	topic        string
	profileID    string
	historyLimit int
	now          func() time.Time

	mu sync.Mutex
}

type StoreOptions struct {
	ProfileID    string
	HistoryLimit int
	Publisher    core.EventPublisher
	Topic        string
}

func NewProfileStore(kv core.KVStore, opts StoreOptions) *ProfileStore {
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	return &ProfileStore{
		kv:           kv,
		pub:          opts.Publisher,
		topic:        opts.Topic,
		profileID:    opts.ProfileID,
		historyLimit: opts.HistoryLimit,
		now:          time.Now,
	}
}

func (s *ProfileStore) ProfileID() string { return s.profileID }

// SaveUser appends a user record. Uniqueness is the caller's job.
func (s *ProfileStore) SaveUser(ctx context.Context, u models.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	users = append(users, models.UserRecord{User: u, PasswordHash: passwordHash})
	return s.put(ctx, usersKey, users)
}

// FindUser returns nil when no record has exactly this email.
func (s *ProfileStore) FindUser(ctx context.Context, email string) (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(ctx, email)
}

func (s *ProfileStore) findUser(ctx context.Context, email string) (*models.UserRecord, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			rec := users[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *ProfileStore) Users(ctx context.Context) ([]models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUsers(ctx)
}

// SetSession writes the session slot; nil clears it.
func (s *ProfileStore) SetSession(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		return s.kv.Delete(ctx, sessionKey)
	}
	return s.put(ctx, sessionKey, u)
}

// GetSession returns the signed-in user or nil. A session pointing at a user
// that is no longer in the user table is cleared.
func (s *ProfileStore) GetSession(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u models.User
	found, err := s.get(ctx, sessionKey, &u)
	if err != nil || !found {
		return nil, err
	}

	rec, err := s.findUser(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.ID != u.ID {
		log.WithFields(log.Fields{"profile": s.profileID, "user_id": u.ID}).Warn("dropping orphaned session")
		if err := s.kv.Delete(ctx, sessionKey); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &u, nil
}

// SaveHistoryItem stamps the item with a fresh id and the current time and
// puts it at the head of the user's history, trimming the oldest entries past
// the limit.
func (s *ProfileStore) SaveHistoryItem(ctx context.Context, userID string, item models.StoredItem) (models.StoredItem, error) {
	if item.Data == nil {
		return models.StoredItem{}, fmt.Errorf("history item has no payload")
	}
	item.ID = uuid.NewString()
	item.Timestamp = s.now()
	item.Type = item.Data.ItemType()

	s.mu.Lock()
	history, err := s.loadHistory(ctx, userID)
	if err == nil {
		history = append([]models.StoredItem{item}, history...)
		if s.historyLimit > 0 && len(history) > s.historyLimit {
			history = history[:s.historyLimit]
		}
		err = s.put(ctx, historyPrefix+userID, history)
	}
	s.mu.Unlock()
	if err != nil {
		return models.StoredItem{}, err
	}

	historySaved.WithLabelValues(string(item.Type)).Inc()
	ev := models.HistoryEvent{
		ProfileID: s.profileID,
		UserID:    userID,
		ItemID:    item.ID,
		Type:      item.Type,
		SavedAt:   item.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if err := s.pub.Publish(ctx, s.topic, ev); err != nil {
		log.WithError(err).WithField("item_id", item.ID).Warn("history event not published")
	}
	return item, nil
}

// GetHistory returns the user's items, most recent first. Never nil.
func (s *ProfileStore) GetHistory(ctx context.Context, userID string) ([]models.StoredItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory(ctx, userID)
}

func (s *ProfileStore) GetTheme(ctx context.Context) (models.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t models.Theme
	found, err := s.get(ctx, themeKey, &t)
	if err != nil {
		return "", err
	}
	if !found || (t != models.ThemeLight && t != models.ThemeDark) {
		return models.ThemeLight, nil
	}
	return t, nil
}

func (s *ProfileStore) SetTheme(ctx context.Context, t models.Theme) error {
	if t != models.ThemeLight && t != models.ThemeDark {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidInput, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, themeKey, t)
}

func (s *ProfileStore) loadUsers(ctx context.Context) ([]models.UserRecord, error) {
	var users []models.UserRecord
	if _, err := s.get(ctx, usersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *ProfileStore) loadHistory(ctx context.Context, userID string) ([]models.StoredItem, error) {
	history := []models.StoredItem{}
	if _, err := s.get(ctx, historyPrefix+userID, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.StoredItem{}
	}
	return history, nil
}

func (s *ProfileStore) get(ctx context.Context, key string, v any) (bool, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !found || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *ProfileStore) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }
func (nopPublisher) Close() error                               { return nil }

// ProfileStores hands out one ProfileStore per profile id, each scoped to its
// own key prefix in the shared backend.
type ProfileStores struct {
	base core.KVStore
	opts StoreOptions

	mu     sync.Mutex
	stores map[string]*ProfileStore
}

func NewProfileStores(base core.KVStore, opts StoreOptions) *ProfileStores {
	return &ProfileStores{base: base, opts: opts, stores: map[string]*ProfileStore{}}
}

func (p *ProfileStores) For(profileID string) *ProfileStore {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.stores[profileID]; ok {
		return s
	}
	opts := p.opts
	opts.ProfileID = profileID
	s := NewProfileStore(core.Namespace(p.base, "profile:"+profileID+":"), opts)
	p.stores[profileID] = s
	return s
}
