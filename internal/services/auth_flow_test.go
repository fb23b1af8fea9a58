package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/chatters/internal/models"
)

var jane = models.ProfileDetails{FirstName: "Jane", LastName: "Doe", Username: "jane_d", Gender: "female", Age: "24"}

func TestSignUp_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := NewAuthFlow(store)
	assert.Equal(t, StateCredentials, f.State())

	require.NoError(t, f.BeginSignUp(ctx, "a@b.com", "Abcdef1!"))
	assert.Equal(t, StateProfileDetails, f.State())

	u, err := f.CompleteSignUp(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, f.State())
	assert.NotEmpty(t, u.ID)

	rec, err := store.FindUser(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "jane_d", rec.Username)
	assert.NotEqual(t, "Abcdef1!", rec.PasswordHash)

	sess, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, sess)

	// the new account authenticates with the sign-up password
	require.NoError(t, SignOut(ctx, store))
	got, err := NewAuthFlow(store).SignIn(ctx, "a@b.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestSignUp_EmailTakenCreatesNoDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	f := NewAuthFlow(store)
	require.NoError(t, f.BeginSignUp(ctx, "a@b.com", "Abcdef1!"))
	_, err := f.CompleteSignUp(ctx, jane)
	require.NoError(t, err)

	err = NewAuthFlow(store).BeginSignUp(ctx, "a@b.com", "Xyzxyz9#")
	assert.ErrorIs(t, err, ErrEmailTaken)

	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSignUp_EmailClaimedBetweenSteps(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, second := NewAuthFlow(store), NewAuthFlow(store)
	require.NoError(t, first.BeginSignUp(ctx, "a@b.com", "Abcdef1!"))
	require.NoError(t, second.BeginSignUp(ctx, "a@b.com", "Abcdef1!"))

	_, err := first.CompleteSignUp(ctx, jane)
	require.NoError(t, err)
	_, err = second.CompleteSignUp(ctx, jane)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, StateCredentials, second.State())

	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSignUp_WeakPassword(t *testing.T) {
	f := NewAuthFlow(newTestStore(t))
	err := f.BeginSignUp(context.Background(), "a@b.com", "password")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Equal(t, StateCredentials, f.State())
	assert.Contains(t, UserMessage(err), "security requirements")
}

func TestSignIn_Errors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := NewAuthFlow(store).SignIn(ctx, "nobody@b.com", "Abcdef1!")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, UserMessage(err), "create one")

	f := NewAuthFlow(store)
	require.NoError(t, f.BeginSignUp(ctx, "a@b.com", "Abcdef1!"))
	_, err = f.CompleteSignUp(ctx, jane)
	require.NoError(t, err)
	require.NoError(t, SignOut(ctx, store))

	_, err = NewAuthFlow(store).SignIn(ctx, "a@b.com", "Abcdef1?")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	sess, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = NewAuthFlow(store).SignIn(ctx, "", "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestCompleteSignUp_RequiresCredentialsStep(t *testing.T) {
	f := NewAuthFlow(newTestStore(t))
	_, err := f.CompleteSignUp(context.Background(), jane)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestAuthFlow_BackForgetsPending(t *testing.T) {
	f := NewAuthFlow(newTestStore(t))
	require.NoError(t, f.BeginSignUp(context.Background(), "a@b.com", "Abcdef1!"))
	assert.Equal(t, "a@b.com", f.PendingEmail())

	f.Back()
	assert.Equal(t, StateCredentials, f.State())
	assert.Empty(t, f.PendingEmail())
}

func TestCompleteSignUp_RequiresEveryProfileField(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := NewAuthFlow(store)
	require.NoError(t, f.BeginSignUp(ctx, "a@b.com", "Abcdef1!"))

	_, err := f.CompleteSignUp(ctx, models.ProfileDetails{})
	assert.ErrorIs(t, err, ErrEmptyInput)

	blanks := map[string]func(d *models.ProfileDetails){
		"first name": func(d *models.ProfileDetails) { d.FirstName = "  " },
		"last name":  func(d *models.ProfileDetails) { d.LastName = "" },
		"username":   func(d *models.ProfileDetails) { d.Username = "\t" },
		"gender":     func(d *models.ProfileDetails) { d.Gender = "" },
		"age":        func(d *models.ProfileDetails) { d.Age = " " },
	}
	for name, blank := range blanks {
		t.Run(name, func(t *testing.T) {
			d := jane
			blank(&d)
			_, err := f.CompleteSignUp(ctx, d)
			assert.ErrorIs(t, err, ErrEmptyInput)
			assert.Equal(t, StateProfileDetails, f.State())
		})
	}

	for _, age := range []string{"twenty", "0", "-3", "2.5"} {
		d := jane
		d.Age = age
		_, err := f.CompleteSignUp(ctx, d)
		assert.ErrorIs(t, err, ErrInvalidInput, age)
	}

	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	sess, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	d := jane
	d.FirstName = "  Jane "
	d.Age = " 24 "
	u, err := f.CompleteSignUp(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.FirstName)
	assert.Equal(t, "24", u.Age)
	assert.Equal(t, StateAuthenticated, f.State())
}
