package services

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyInput   = errors.New("required field is empty")

	ErrNotFound          = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrWeakPassword      = errors.New("password does not meet policy")
	ErrEmailTaken        = errors.New("email already registered")
	ErrWrongState        = errors.New("sign-up step out of order")
	ErrNotSignedIn       = errors.New("not signed in")

	ErrTurnInFlight  = errors.New("a practice turn is already in flight")
	ErrSessionClosed = errors.New("practice session closed")
	ErrNothingToSave = errors.New("practice transcript has no turns yet")
	ErrVoiceCapture  = errors.New("voice capture is not supported in this environment")
	ErrNoSuchSession = errors.New("practice session not found")
)

var userMessages = map[error]string{
	ErrNotFound:          "We couldn't find an account with that email address. Would you like to create one?",
	ErrInvalidCredential: "The password you entered is incorrect. Please double-check and try again.",
	ErrWeakPassword:      "Please make sure your password meets all the security requirements listed below.",
	ErrEmailTaken:        "This email is already registered. Try signing in to your existing account.",
	ErrWrongState:        "Please start by entering your email and password.",
	ErrNotSignedIn:       "Please sign in to continue.",
	ErrEmptyInput:        "Please fill in the required field.",
	ErrTurnInFlight:      "Hang on, your practice partner is still typing.",
	ErrSessionClosed:     "This practice session has ended.",
	ErrNothingToSave:     "Say something first, then save the session.",
	ErrNoSuchSession:     "That practice session has expired. Start a new one.",
	ErrVoiceCapture:      "Speech recognition is not supported in this browser.",
}

// UserMessage returns the wording shown to people for err, or "" when err
// is not one of the user-facing errors.
func UserMessage(err error) string {
	for target, msg := range userMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return ""
}
