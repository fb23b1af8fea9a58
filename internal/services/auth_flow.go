package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/markdave123-py/chatters/internal/models"
)

// BcryptCost is lowered by tests.
var BcryptCost = bcrypt.DefaultCost

type AuthState int

const (
	StateCredentials AuthState = iota
	StateProfileDetails
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateCredentials:
		return "credentials"
	case StateProfileDetails:
		return "profile_details"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("AuthState(%d)", int(s))
}

// AuthFlow walks one profile through sign-in or the two-step sign-up.
// Authenticated is terminal; signing out goes through SignOut and a fresh flow.
type AuthFlow struct {
	store *ProfileStore

	mu           sync.Mutex
	state        AuthState
	email        string
	passwordHash string
	user         *models.User
}

func NewAuthFlow(store *ProfileStore) *AuthFlow {
	return &AuthFlow{store: store}
}

func (f *AuthFlow) State() AuthState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// PendingEmail is the address entered in the credentials step, if any.
func (f *AuthFlow) PendingEmail() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *AuthFlow) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateAuthenticated {
		return nil, ErrWrongState
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrEmptyInput
	}

	rec, err := f.store.FindUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	u := rec.User
	if err := f.store.SetSession(ctx, &u); err != nil {
		return nil, err
	}
	f.finish(&u)
	log.WithFields(log.Fields{"profile": f.store.ProfileID(), "user_id": u.ID}).Info("signed in")
	return &u, nil
}

// BeginSignUp validates the credentials step and moves to ProfileDetails.
func (f *AuthFlow) BeginSignUp(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateAuthenticated {
		return ErrWrongState
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrEmptyInput
	}
	if !IsPasswordValid(password) {
		return ErrWeakPassword
	}
	rec, err := f.store.FindUser(ctx, email)
	if err != nil {
		return err
	}
	if rec != nil {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	f.email = email
	f.passwordHash = string(hash)
	f.state = StateProfileDetails
	return nil
}

// CompleteSignUp persists the new user and opens a session for it.
func (f *AuthFlow) CompleteSignUp(ctx context.Context, d models.ProfileDetails) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateProfileDetails {
		return nil, ErrWrongState
	}
	d, err := cleanProfile(d)
	if err != nil {
		return nil, err
	}

	// The email may have been claimed since the credentials step.
	rec, err := f.store.FindUser(ctx, f.email)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		f.reset()
		return nil, ErrEmailTaken
	}

	u := models.User{
		ID:        uuid.NewString(),
		Email:     f.email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Username:  d.Username,
		Gender:    d.Gender,
		Age:       d.Age,
	}
	if err := f.store.SaveUser(ctx, u, f.passwordHash); err != nil {
		return nil, err
	}
	if err := f.store.SetSession(ctx, &u); err != nil {
		return nil, err
	}
	f.finish(&u)
	log.WithFields(log.Fields{"profile": f.store.ProfileID(), "user_id": u.ID}).Info("signed up")
	return &u, nil
}

// cleanProfile trims every field; all are required and age must be a
// positive whole number.
func cleanProfile(d models.ProfileDetails) (models.ProfileDetails, error) {
	fields := []*string{&d.FirstName, &d.LastName, &d.Username, &d.Gender, &d.Age}
	for _, p := range fields {
		*p = strings.TrimSpace(*p)
		if *p == "" {
			return d, ErrEmptyInput
		}
	}
	if n, err := strconv.Atoi(d.Age); err != nil || n < 1 {
		return d, fmt.Errorf("%w: age %q", ErrInvalidInput, d.Age)
	}
	return d, nil
}

// Back returns from ProfileDetails to Credentials, forgetting the pending
// registration.
func (f *AuthFlow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateProfileDetails {
		f.reset()
	}
}

func (f *AuthFlow) User() *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *AuthFlow) finish(u *models.User) {
	f.state = StateAuthenticated
	f.user = u
	f.email, f.passwordHash = "", ""
}

func (f *AuthFlow) reset() {
	f.state = StateCredentials
	f.email, f.passwordHash = "", ""
}

// SignOut clears the profile's session slot.
func SignOut(ctx context.Context, store *ProfileStore) error {
	if err := store.SetSession(ctx, nil); err != nil {
		return err
	}
	log.WithField("profile", store.ProfileID()).Info("signed out")
	return nil
}

