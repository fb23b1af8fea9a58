package handlers

import (
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	middleware "github.com/markdave123-py/chatters/internal/api/middlewares"
	"github.com/markdave123-py/chatters/internal/api/respond"
	"github.com/markdave123-py/chatters/internal/core/attachments"
	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

type CoachHandler struct {
	coach  *services.CoachService
	stores *services.ProfileStores
	reader *attachments.Reader
}

func NewCoachHandler(coach *services.CoachService, stores *services.ProfileStores, reader *attachments.Reader) *CoachHandler {
	return &CoachHandler{coach: coach, stores: stores, reader: reader}
}

type replyRequest struct {
	Input   string `json:"input"`
	Context string `json:"context"`
}

type replyResponse struct {
	Suggestions []models.Suggestion `json:"suggestions"`
	Saved       *models.StoredItem  `json:"saved,omitempty"`
}

// Reply suggests three responses and, for signed-in users, records the
// exchange in history.
func (h *CoachHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	suggestions, err := h.coach.GetResponseSuggestions(r.Context(), req.Input, req.Context)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := replyResponse{Suggestions: suggestions}
	if len(suggestions) > 0 {
		resp.Saved = h.save(r, models.ReplyPayload{Input: req.Input, Context: req.Context, Suggestions: suggestions})
	}
	respond.JSON(w, http.StatusOK, resp)
}

type vibeResponse struct {
	Analysis *models.VibeAnalysis `json:"analysis"`
	Saved    *models.StoredItem   `json:"saved,omitempty"`
}

func (h *CoachHandler) Vibe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	analysis, err := h.coach.AnalyzeVibe(r.Context(), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := vibeResponse{Analysis: analysis}
	if analysis != nil {
		resp.Saved = h.save(r, models.VibePayload{Message: req.Message, Analysis: *analysis})
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *CoachHandler) Icebreakers(w http.ResponseWriter, r *http.Request) {
	var req models.IcebreakerParams
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	starters, err := h.coach.GenerateIcebreakers(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string][]string{"icebreakers": starters})
}

// Attachment extracts context text from an uploaded chat export so it can be
// sent along with a reply request.
func (h *CoachHandler) Attachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.reader.MaxBytes()+64<<10)
	if err := r.ParseMultipartForm(h.reader.MaxBytes()); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, attachments.ErrTooLarge)
			return
		}
		respond.Error(w, http.StatusBadRequest, "bad_request", "expected a multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "bad_request", "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	res, err := h.reader.Read(r.Context(), data, contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// save records p for the signed-in user. History is a side effect of the
// coaching call, so failures are logged rather than returned.
func (h *CoachHandler) save(r *http.Request, p models.Payload) *models.StoredItem {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		return nil
	}
	store := h.stores.For(middleware.ProfileID(r.Context()))
	item, err := store.SaveHistoryItem(r.Context(), u.ID, models.NewStoredItem(p))
	if err != nil {
		log.WithError(err).WithField("user_id", u.ID).Error("save history item")
		return nil
	}
	return &item
}
