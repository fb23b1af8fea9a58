package handlers

import (
	"net/http"
	"time"

	middleware "github.com/markdave123-py/chatters/internal/api/middlewares"
	"github.com/markdave123-py/chatters/internal/api/respond"
	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

type AuthHandler struct {
	stores *services.ProfileStores
	flows  *services.Registry[*services.AuthFlow]
	tokens *middleware.TokenIssuer
}

func NewAuthHandler(stores *services.ProfileStores, flows *services.Registry[*services.AuthFlow], tokens *middleware.TokenIssuer) *AuthHandler {
	return &AuthHandler{stores: stores, flows: flows, tokens: tokens}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user"`
	State         string       `json:"state"`
	PendingEmail  string       `json:"pendingEmail,omitempty"`
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile := middleware.ProfileID(r.Context())
	u, err := services.NewAuthFlow(h.stores.For(profile)).SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.flows.Delete(profile)
	h.issue(w, r, http.StatusOK, u)
}

// SignUp runs the credentials step and parks the pending registration until
// the profile details arrive.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile := middleware.ProfileID(r.Context())
	flow := services.NewAuthFlow(h.stores.For(profile))
	if err := flow.BeginSignUp(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	h.flows.Put(profile, flow)

	respond.JSON(w, http.StatusAccepted, sessionResponse{State: flow.State().String(), PendingEmail: flow.PendingEmail()})
}

func (h *AuthHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileDetails
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile := middleware.ProfileID(r.Context())
	flow, ok := h.flows.Get(profile)
	if !ok {
		writeError(w, r, services.ErrWrongState)
		return
	}
	u, err := flow.CompleteSignUp(r.Context(), req)
	if err != nil {
		if flow.State() == services.StateCredentials {
			h.flows.Delete(profile)
		}
		writeError(w, r, err)
		return
	}
	h.flows.Delete(profile)
	h.issue(w, r, http.StatusCreated, u)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileID(r.Context())
	if err := services.SignOut(r.Context(), h.stores.For(profile)); err != nil {
		writeError(w, r, err)
		return
	}
	h.flows.Delete(profile)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{State: services.StateCredentials.String()}
	if u := middleware.UserFrom(r.Context()); u != nil {
		resp.Authenticated = true
		resp.User = u
		resp.State = services.StateAuthenticated.String()
	} else if flow, ok := h.flows.Get(middleware.ProfileID(r.Context())); ok {
		resp.State = flow.State().String()
		resp.PendingEmail = flow.PendingEmail()
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) CheckPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c := services.CheckPassword(req.Password)
	respond.JSON(w, http.StatusOK, struct {
		services.PasswordCheck
		Valid bool `json:"valid"`
	}{c, c.OK()})
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, status int, u *models.User) {
	token, exp, err := h.tokens.Issue(u.ID, middleware.ProfileID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, status, authResponse{User: u, Token: token, ExpiresAt: exp})
}
