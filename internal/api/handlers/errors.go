package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/markdave123-py/chatters/internal/api/respond"
	"github.com/markdave123-py/chatters/internal/core/attachments"
	"github.com/markdave123-py/chatters/internal/services"
)

const maxBodyBytes = 1 << 20

type errorClass struct {
	target error
	status int
	code   string
}

var errorClasses = []errorClass{
	{services.ErrEmptyInput, http.StatusBadRequest, "empty_input"},
	{services.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{services.ErrInvalidCredential, http.StatusUnauthorized, "invalid_credential"},
	{services.ErrNotSignedIn, http.StatusUnauthorized, "unauthorized"},
	{services.ErrWeakPassword, http.StatusUnprocessableEntity, "weak_password"},
	{services.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{services.ErrWrongState, http.StatusConflict, "wrong_state"},
	{services.ErrTurnInFlight, http.StatusConflict, "turn_in_flight"},
	{services.ErrSessionClosed, http.StatusGone, "session_closed"},
	{services.ErrNoSuchSession, http.StatusNotFound, "no_such_session"},
	{services.ErrNothingToSave, http.StatusBadRequest, "nothing_to_save"},
	{services.ErrVoiceCapture, http.StatusNotImplemented, "unsupported_environment"},
	{attachments.ErrTooLarge, http.StatusRequestEntityTooLarge, "attachment_too_large"},
	{attachments.ErrUnsupported, http.StatusUnsupportedMediaType, "attachment_unsupported"},
	{attachments.ErrEmpty, http.StatusUnprocessableEntity, "attachment_empty"},
	{attachments.ErrUnreadable, http.StatusUnprocessableEntity, "attachment_unreadable"},
}

var errBadBody = errors.New("request body is not valid JSON")

// writeError maps service errors to a status and a user-facing message.
// Anything unrecognised is logged and reported as a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadBody) {
		respond.Error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			msg := services.UserMessage(err)
			if msg == "" {
				msg = err.Error()
			}
			respond.Error(w, c.status, c.code, msg)
			return
		}
	}
	log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	respond.Error(w, http.StatusInternalServerError, "internal", "Something went wrong. Please try again.")
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}
