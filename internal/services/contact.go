package services

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/markdave123-py/chatters/internal/models"
)

const contactSubjectPrefix = "Chatters.ai Contact: "

// ComposeMail builds the mailto draft for the contact form. Nothing is sent;
// the draft is handed to the user's mail client.
func ComposeMail(to string, f models.ContactForm) (models.MailDraft, error) {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Subject = strings.TrimSpace(f.Subject)
	if f.FullName == "" || f.Email == "" || f.Subject == "" || strings.TrimSpace(f.Message) == "" {
		return models.MailDraft{}, ErrEmptyInput
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return models.MailDraft{}, fmt.Errorf("%w: reply-to address %q", ErrInvalidInput, f.Email)
	}

	subject := contactSubjectPrefix + f.Subject
	body := fmt.Sprintf("Name: %s\nReply-To: %s\n\nMessage:\n%s", f.FullName, f.Email, f.Message)

	return models.MailDraft{
		To:      to,
		Subject: subject,
		Body:    body,
		URL:     "mailto:" + to + "?subject=" + encodeURIComponent(subject) + "&body=" + encodeURIComponent(body),
	}, nil
}

// encodeURIComponent escapes like the browser function of the same name so
// mail clients see %20 rather than '+'.
func encodeURIComponent(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "+", "%20")
	for _, keep := range []string{"!", "'", "(", ")", "*", "~"} {
		e = strings.ReplaceAll(e, url.QueryEscape(keep), keep)
	}
	return e
}
