package models

// User represents a signed-up member of a profile.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Gender    string `json:"gender"`
	Age       string `json:"age"`
}

// UserRecord is one row of the user table: the profile plus its credential.
type UserRecord struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// ProfileDetails is the second sign-up step.
type ProfileDetails struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Gender    string `json:"gender"`
	Age       string `json:"age"`
}

// Suggestion is one way to answer an incoming message.
type Suggestion struct {
	Vibe        string `json:"vibe"`        // Casual, Deep, Witty...
	Content     string `json:"content"`     // the reply text itself
	Explanation string `json:"explanation"` // why it works
}

// VibeAnalysis is the decoded tone of a message. Intensity is in [1, 10].
type VibeAnalysis struct {
	Tone            string `json:"tone"`
	HiddenMeaning   string `json:"hiddenMeaning"`
	SuggestedAction string `json:"suggestedAction"`
	Intensity       int    `json:"intensity"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAI    Role = "ai"
	RoleCoach Role = "coach"
)

// SandboxMessage is one line of a practice transcript.
type SandboxMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// SandboxReply is what the practice partner says back plus the coach's note.
type SandboxReply struct {
	Reply    string `json:"reply"`
	Feedback string `json:"feedback"`
}

type Intensity string

const (
	IntensityCasual     Intensity = "casual"
	IntensityMeaningful Intensity = "meaningful"
	IntensityFunny      Intensity = "funny"
)

func (i Intensity) Valid() bool {
	switch i {
	case IntensityCasual, IntensityMeaningful, IntensityFunny:
		return true
	}
	return false
}

// IcebreakerParams are transient request parameters; never persisted.
type IcebreakerParams struct {
	Context      string    `json:"context"`
	Relationship string    `json:"relationship"`
	Intensity    Intensity `json:"intensity"`
}

const DefaultRelationship = "Strangers"

// ContactForm is the payload of the contact view.
type ContactForm struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// MailDraft is a pre-filled message handed off to the user's mail client.
type MailDraft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	URL     string `json:"url"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type Preferences struct {
	Theme Theme `json:"theme"`
}
