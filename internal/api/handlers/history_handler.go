package handlers

import (
	"fmt"
	"net/http"

	"github.com/samber/lo"

	middleware "github.com/markdave123-py/chatters/internal/api/middlewares"
	"github.com/markdave123-py/chatters/internal/api/respond"
	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

type HistoryHandler struct {
	stores *services.ProfileStores
}

func NewHistoryHandler(stores *services.ProfileStores) *HistoryHandler {
	return &HistoryHandler{stores: stores}
}

// List returns the signed-in user's history, most recent first, optionally
// narrowed with ?type=reply|vibe|sandbox.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		writeError(w, r, services.ErrNotSignedIn)
		return
	}

	var want models.ItemType
	if t := r.URL.Query().Get("type"); t != "" {
		want = models.ItemType(t)
		if !want.Valid() {
			writeError(w, r, fmt.Errorf("%w: %v", services.ErrInvalidInput, models.ErrUnknownItemType))
			return
		}
	}

	items, err := h.stores.For(middleware.ProfileID(r.Context())).GetHistory(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if want != "" {
		items = lo.Filter(items, func(it models.StoredItem, _ int) bool { return it.Type == want })
	}
	respond.JSON(w, http.StatusOK, map[string]any{"items": items})
}
