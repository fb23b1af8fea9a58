package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/markdave123-py/chatters/internal/api/middlewares"
	"github.com/markdave123-py/chatters/internal/api/respond"
	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

type PracticeHandler struct {
	sessions *services.PracticeSessions
	stores   *services.ProfileStores
}

func NewPracticeHandler(sessions *services.PracticeSessions, stores *services.ProfileStores) *PracticeHandler {
	return &PracticeHandler{sessions: sessions, stores: stores}
}

type practiceView struct {
	ID       string                  `json:"id"`
	Messages []models.SandboxMessage `json:"messages"`
	Pending  bool                    `json:"pending"`
	Saved    bool                    `json:"saved"`
}

func viewOf(ps *services.PracticeSession) practiceView {
	return practiceView{ID: ps.ID, Messages: ps.Messages(), Pending: ps.Pending(), Saved: ps.Saved()}
}

func (h *PracticeHandler) Start(w http.ResponseWriter, r *http.Request) {
	ps := h.sessions.Start(middleware.ProfileID(r.Context()))
	respond.JSON(w, http.StatusCreated, viewOf(ps))
}

func (h *PracticeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ps, err := h.sessions.Get(middleware.ProfileID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, viewOf(ps))
}

func (h *PracticeHandler) Send(w http.ResponseWriter, r *http.Request) {
	ps, err := h.sessions.Get(middleware.ProfileID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	added, err := ps.Send(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, struct {
		Added []models.SandboxMessage `json:"added"`
		practiceView
	}{added, viewOf(ps)})
}

func (h *PracticeHandler) Save(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileID(r.Context())
	ps, err := h.sessions.Get(profile, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := ps.Save(r.Context(), h.stores.For(profile), middleware.UserFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"item": item})
}

func (h *PracticeHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(middleware.ProfileID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
