package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	ProfileHeader = "X-Chatters-Profile"
	ProfileCookie = "chatters_profile"

	profileMaxAge = 365 * 24 * 60 * 60
)

type ctxKey int

const (
	profileKey ctxKey = iota
	userKey
)

// Profile resolves the caller's browser profile from the header or cookie,
// minting a new one when neither carries a valid id. Each profile has its own
// users, session and history.
func Profile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(ProfileHeader)
		if id == "" {
			if c, err := r.Cookie(ProfileCookie); err == nil {
				id = c.Value
			}
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ProfileCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   profileMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(ProfileHeader, id)

		ctx := context.WithValue(r.Context(), profileKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ProfileID returns the profile attached by Profile, or "".
func ProfileID(ctx context.Context) string {
	id, _ := ctx.Value(profileKey).(string)
	return id
}

// WithProfile is used by tests and background jobs that bypass the middleware.
func WithProfile(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileKey, id)
}
