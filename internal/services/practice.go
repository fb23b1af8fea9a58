package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/markdave123-py/chatters/internal/models"
)

const OpeningLine = "Hi! I'm your practice partner. What situation would you like to practice today? (e.g. Asking for a raise, a first date, or telling a friend 'no')"

// PracticeSession is one turn-based roleplay. The transcript only grows: each
// turn adds the user's line, then the partner reply and the coach note as a
// pair once the model answers.
type PracticeSession struct {
	ID        string
	ProfileID string
	Created   time.Time

	coach *CoachService

	mu       sync.Mutex
	messages []models.SandboxMessage
	inFlight bool
	closed   bool
	savedLen int
	saved    *models.StoredItem
}

func NewPracticeSession(coach *CoachService, profileID string) *PracticeSession {
	return &PracticeSession{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Created:   time.Now(),
		coach:     coach,
		messages:  []models.SandboxMessage{{Role: models.RoleAI, Text: OpeningLine}},
	}
}

func (p *PracticeSession) Messages() []models.SandboxMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.SandboxMessage(nil), p.messages...)
}

// Pending reports whether a turn is waiting on the model.
func (p *PracticeSession) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// Saved reports whether the current transcript is already in history.
func (p *PracticeSession) Saved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saved != nil && p.savedLen == len(p.messages)
}

// Send plays one turn and returns the partner reply and coach note that were
// appended. A result that arrives after Close, or after ctx is done, is
// dropped; in the latter case the user's line is removed again so every user
// line in the transcript is answered.
func (p *PracticeSession) Send(ctx context.Context, text string) ([]models.SandboxMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return nil, ErrSessionClosed
	case p.inFlight:
		p.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	p.messages = append(p.messages, models.SandboxMessage{Role: models.RoleUser, Text: text})
	history := append([]models.SandboxMessage(nil), p.messages...)
	p.inFlight = true
	p.mu.Unlock()

	reply := p.coach.GetSandboxFeedback(ctx, history)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if p.closed || ctx.Err() != nil {
		// Nobody is waiting for this reply; take the unanswered line back out.
		p.messages = p.messages[:len(p.messages)-1]
		if p.closed {
			log.WithField("session", p.ID).Debug("discarding reply for closed practice session")
			return nil, ErrSessionClosed
		}
		return nil, ctx.Err()
	}

	pair := []models.SandboxMessage{
		{Role: models.RoleAI, Text: reply.Reply},
		{Role: models.RoleCoach, Text: reply.Feedback},
	}
	p.messages = append(p.messages, pair...)
	return pair, nil
}

// Save stores the transcript as a sandbox history item. Saving again without
// new turns returns the item from the previous save.
func (p *PracticeSession) Save(ctx context.Context, store *ProfileStore, user *models.User) (models.StoredItem, error) {
	if user == nil {
		return models.StoredItem{}, ErrNotSignedIn
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return models.StoredItem{}, ErrTurnInFlight
	}
	if len(p.messages) <= 1 {
		return models.StoredItem{}, ErrNothingToSave
	}
	if p.saved != nil && p.savedLen == len(p.messages) {
		return *p.saved, nil
	}

	transcript := append([]models.SandboxMessage(nil), p.messages...)
	item, err := store.SaveHistoryItem(ctx, user.ID, models.NewStoredItem(models.SandboxPayload{Messages: transcript}))
	if err != nil {
		return models.StoredItem{}, err
	}
	p.saved = &item
	p.savedLen = len(transcript)
	return item, nil
}

func (p *PracticeSession) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// PracticeSessions keeps the open practice sessions of every profile.
type PracticeSessions struct {
	coach *CoachService
	reg   *Registry[*PracticeSession]
}

func NewPracticeSessions(coach *CoachService, idle time.Duration) *PracticeSessions {
	return &PracticeSessions{coach: coach, reg: NewRegistry[*PracticeSession](idle)}
}

func (s *PracticeSessions) Start(profileID string) *PracticeSession {
	ps := NewPracticeSession(s.coach, profileID)
	s.reg.Put(ps.ID, ps)
	return ps
}

func (s *PracticeSessions) Get(profileID, id string) (*PracticeSession, error) {
	ps, ok := s.reg.Get(id)
	if !ok || ps.ProfileID != profileID {
		return nil, ErrNoSuchSession
	}
	return ps, nil
}

func (s *PracticeSessions) Close(profileID, id string) error {
	ps, err := s.Get(profileID, id)
	if err != nil {
		return err
	}
	s.reg.Delete(id)
	ps.Close()
	return nil
}
