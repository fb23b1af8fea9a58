package handlers

import (
	"net/http"

	middleware "github.com/markdave123-py/chatters/internal/api/middlewares"
	"github.com/markdave123-py/chatters/internal/api/respond"
	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

type PagesHandler struct {
	stores       *services.ProfileStores
	contactEmail string
	provider     string
}

func NewPagesHandler(stores *services.ProfileStores, contactEmail, provider string) *PagesHandler {
	return &PagesHandler{stores: stores, contactEmail: contactEmail, provider: provider}
}

func (h *PagesHandler) Views(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"views":         services.Views(),
		"authenticated": middleware.UserFrom(r.Context()) != nil,
	})
}

func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, services.Home())
}

func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, services.About())
}

// Capabilities tells clients which optional inputs this deployment offers.
// Voice capture needs a browser speech API, which a server cannot provide.
func (h *PagesHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"voiceCapture": map[string]any{
			"supported": false,
			"message":   services.UserMessage(services.ErrVoiceCapture),
		},
		"attachments": true,
		"provider":    h.provider,
	})
}

func (h *PagesHandler) Voice(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, services.ErrVoiceCapture)
}

func (h *PagesHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactForm
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	draft, err := services.ComposeMail(h.contactEmail, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, draft)
}

func (h *PagesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	theme, err := h.stores.For(middleware.ProfileID(r.Context())).GetTheme(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, models.Preferences{Theme: theme})
}

func (h *PagesHandler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var req models.Preferences
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.stores.For(middleware.ProfileID(r.Context())).SetTheme(r.Context(), req.Theme); err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, req)
}

func (h *PagesHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
