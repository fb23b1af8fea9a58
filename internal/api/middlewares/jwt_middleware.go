package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/markdave123-py/chatters/internal/api/respond"
	"github.com/markdave123-py/chatters/internal/models"
)

// Claims ties a token to the user and the profile it was issued for.
type Claims struct {
	UserID    string `json:"user_id"`
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token with user and profile claims.
func (t *TokenIssuer) Issue(userID, profileID string) (string, time.Time, error) {
	exp := t.now().Add(t.ttl)
	claims := Claims{
		UserID:    userID,
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(t.now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(t.secret)
	return signed, exp, err
}

func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// SessionLookup returns the user currently in a profile's session slot.
type SessionLookup func(ctx context.Context, profileID string) (*models.User, error)

// Authenticator accepts a bearer token only while it names the profile it
// was presented from and that profile's session still holds the same user.
type Authenticator struct {
	tokens   *TokenIssuer
	sessions SessionLookup
}

func NewAuthenticator(tokens *TokenIssuer, sessions SessionLookup) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions}
}

// Optional attaches the user when the request is authenticated and lets
// anonymous requests through.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := a.authenticate(r); err == nil && u != nil {
			r = r.WithContext(context.WithValue(r.Context(), userKey, u))
		}
		next.ServeHTTP(w, r)
	})
}

// Required rejects requests without a live session.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.authenticate(r)
		if err != nil || u == nil {
			if err != nil {
				log.WithError(err).Debug("rejecting request")
			}
			respond.Error(w, http.StatusUnauthorized, "unauthorized", "Please sign in to continue.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

var errNoToken = errors.New("missing bearer token")

func (a *Authenticator) authenticate(r *http.Request) (*models.User, error) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil, errNoToken
	}
	claims, err := a.tokens.Parse(strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		return nil, err
	}

	profile := ProfileID(r.Context())
	if claims.ProfileID != profile {
		return nil, errors.New("token issued for another profile")
	}
	u, err := a.sessions(r.Context(), profile)
	if err != nil {
		return nil, err
	}
	if u == nil || u.ID != claims.UserID {
		return nil, errors.New("session no longer holds this user")
	}
	return u, nil
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithUser is used by tests that bypass the middleware.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}
