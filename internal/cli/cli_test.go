package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/markdave123-py/chatters/internal/app"
	"github.com/markdave123-py/chatters/internal/config"
	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

const testPassword = "Secret1!x"

type harness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	prev := services.BcryptCost
	services.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { services.BcryptCost = prev })
	t.Setenv("AMQP_URL", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	return &harness{t: t, dbPath: filepath.Join(t.TempDir(), "chatters.db")}
}

// run executes one CLI invocation against the harness's SQLite profile.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	root := NewRootCommand(app.NewCore)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--store", "sqlite", "--db", h.dbPath, "--provider", "dryrun", "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	out, err := h.run(stdin, args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) signUp() {
	h.t.Helper()
	h.mustRun("", "signup", "--email", "ada@example.com", "--password", testPassword,
		"--first-name", "Ada", "--last-name", "Lovelace", "--username", "ada", "--gender", "female", "--age", "28")
}

func TestSignUpPersistsAcrossInvocations(t *testing.T) {
	h := newHarness(t)
	h.signUp()

	out := h.mustRun("", "whoami")
	assert.Contains(t, out, "Ada Lovelace <ada@example.com> (@ada)")

	h.mustRun("", "signout")
	assert.Contains(t, h.mustRun("", "whoami"), "Not signed in.")

	out = h.mustRun(testPassword+"\n", "signin", "--email", "ada@example.com")
	assert.Contains(t, out, "Signed in as ada@example.com.")
}

func TestSignInFailuresUseFriendlyMessages(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "signin", "--email", "nobody@example.com", "--password", testPassword)
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))
	assert.Equal(t, services.UserMessage(services.ErrNotFound), describe(err))

	h.signUp()
	h.mustRun("", "signout")
	_, err = h.run("", "signin", "--email", "ada@example.com", "--password", "Wrong1!xx")
	assert.True(t, errors.Is(err, services.ErrInvalidCredential))

	_, err = h.run("", "signup", "--email", "ada@example.com", "--password", testPassword)
	assert.True(t, errors.Is(err, services.ErrEmailTaken))
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "signup", "--email", "bo@example.com", "--password", "short")
	assert.True(t, errors.Is(err, services.ErrWeakPassword))
}

func TestReplySavesHistoryOnlyWhenSignedIn(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "reply", "are", "you", "free", "friday?")
	assert.Equal(t, 3, strings.Count(out, "dry run content"))

	h.signUp()
	h.mustRun("", "reply", "--context", "coworker", "lunch?")
	h.mustRun("", "vibe", "k.")

	out = h.mustRun("", "--json", "history")
	var items []models.StoredItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, models.ItemVibe, items[0].Type)
	assert.Equal(t, models.ItemReply, items[1].Type)
	assert.Equal(t, "coworker", items[1].Data.(models.ReplyPayload).Context)

	out = h.mustRun("", "history", "--type", "reply")
	assert.Contains(t, out, "lunch?")
	assert.NotContains(t, out, "k.")
}

func TestReplyReadsAttachment(t *testing.T) {
	h := newHarness(t)
	h.signUp()

	path := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(path, []byte("me: hey\n\nthem: long time no see\n"), 0o600))
	h.mustRun("", "reply", "--attachment", path, "what now?")

	out := h.mustRun("", "--json", "history")
	var items []models.StoredItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "me: hey\nthem: long time no see", items[0].Data.(models.ReplyPayload).Context)
}

func TestHistoryRequiresSignIn(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "history")
	assert.True(t, errors.Is(err, services.ErrNotSignedIn))
}

func TestIcebreakers(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "--json", "icebreakers", "--intensity", "funny", "team", "offsite")
	var starters []string
	require.NoError(t, json.Unmarshal([]byte(out), &starters))
	assert.Len(t, starters, 5)

	_, err := h.run("", "icebreakers", "--intensity", "spicy", "party")
	assert.True(t, errors.Is(err, services.ErrInvalidInput))
}

func TestPracticeREPL(t *testing.T) {
	h := newHarness(t)
	h.signUp()

	out := h.mustRun("asking for a raise\n/save\n/save\n/quit\n", "practice")
	assert.Contains(t, out, "partner: "+services.OpeningLine)
	assert.Contains(t, out, "    you: asking for a raise")
	assert.Contains(t, out, "  coach: dry run feedback")
	assert.Equal(t, 2, strings.Count(out, "Session saved to your history."))

	var items []models.StoredItem
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("", "--json", "history")), &items))
	require.Len(t, items, 1)
	assert.Len(t, items[0].Data.(models.SandboxPayload).Messages, 4)
}

func TestPracticeSaveSignedOut(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("hello\n/save\n", "practice")
	assert.Contains(t, out, services.UserMessage(services.ErrNotSignedIn))
}

func TestThemeAndViews(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "light\n", h.mustRun("", "theme"))
	assert.Equal(t, "dark\n", h.mustRun("", "theme", "dark"))
	assert.Equal(t, "dark\n", h.mustRun("", "theme"))
	_, err := h.run("", "theme", "neon")
	assert.True(t, errors.Is(err, services.ErrInvalidInput))

	assert.NotContains(t, h.mustRun("", "views"), "history")
	h.signUp()
	assert.Contains(t, h.mustRun("", "views"), "history")
}

func TestContactDraft(t *testing.T) {
	h := newHarness(t)
	t.Setenv("CONTACT_EMAIL", "team@example.com")

	out := h.mustRun("", "contact", "--name", "Ada", "--email", "ada@example.com", "--subject", "Hi", "--message", "Love it")
	assert.Contains(t, out, "mailto:team@example.com?subject=")

	_, err := h.run("", "contact", "--name", "Ada", "--email", "not-an-email", "--subject", "Hi", "--message", "x")
	assert.True(t, errors.Is(err, services.ErrInvalidInput))
}

func TestPasswordCheck(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("", "password-check", "abc")
	assert.Contains(t, out, "[ ] at least 8 characters")
	assert.Contains(t, out, "[x] a lowercase letter")
}

func TestBuilderErrorStopsCommand(t *testing.T) {
	boom := errors.New("store offline")
	root := NewRootCommand(func(context.Context, *config.Config) (*app.Core, error) { return nil, boom })
	root.SetArgs([]string{"--store", "memory", "--provider", "dryrun", "whoami"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.ErrorIs(t, root.ExecuteContext(context.Background()), boom)
}

func TestValidationRunsBeforeBuild(t *testing.T) {
	called := false
	root := NewRootCommand(func(context.Context, *config.Config) (*app.Core, error) {
		called = true
		return nil, errors.New("unreachable")
	})
	root.SetArgs([]string{"--store", "etcd", "--provider", "dryrun", "whoami"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "STORE_DRIVER")
	assert.False(t, called)
}

func TestSignInWhileSignedIn(t *testing.T) {
	h := newHarness(t)
	h.signUp()
	_, err := h.run("", "signin", "--email", "ada@example.com", "--password", testPassword)
	assert.ErrorContains(t, err, "already signed in as ada@example.com")
}
