package services

import (
	"encoding/json"
	"fmt"

	"github.com/markdave123-py/chatters/internal/core"
	"github.com/markdave123-py/chatters/internal/models"
)

const (
	suggestionCount = 3
	icebreakerCount = 5
)

const coachPersona = "You are Chatters.ai, a warm, practical social coach for introverts. Always answer in English."

func suggestionsPrompt(incoming, chatContext string) string {
	return fmt.Sprintf(`Incoming message: "%s". Context: "%s". As a social coach for an introvert, suggest %d diverse ways to respond in English. Provide output as a JSON array of objects with "vibe" (e.g., Casual, Deep, Witty), "content" (the actual text), and "explanation" (why this works).`,
		incoming, chatContext, suggestionCount)
}

func vibePrompt(message string) string {
	return fmt.Sprintf(`Analyze the vibe of this message: "%s". Is it sarcastic? Friendly? Passive-aggressive? Neutral? Provide analysis in English including tone analysis, hidden meaning, suggested action, and intensity (1-10).`, message)
}

func icebreakersPrompt(p models.IcebreakerParams) string {
	return fmt.Sprintf(`Generate %d %s icebreakers in English for this context: "%s" and relationship: "%s". Return as a JSON array of strings.`,
		icebreakerCount, p.Intensity, p.Context, p.Relationship)
}

func sandboxPrompt(history []models.SandboxMessage) string {
	turns, _ := json.Marshal(history)
	return fmt.Sprintf(`Act as a character the user is practicing talking to. History: %s. Reply in English naturally. Also, provide "feedback" as a social coach on their communication style in English.`, turns)
}

var (
	suggestionsSchema = core.ArrayOf(core.Object(
		"vibe", core.NonEmptyString(),
		"content", core.NonEmptyString(),
		"explanation", core.NonEmptyString(),
	), suggestionCount)

	vibeSchema = core.Object(
		"tone", core.String(),
		"hiddenMeaning", core.String(),
		"suggestedAction", core.String(),
		"intensity", core.Number(),
	)

	icebreakersSchema = core.ArrayOf(core.NonEmptyString(), icebreakerCount)

	sandboxSchema = core.Object(
		"reply", core.NonEmptyString(),
		"feedback", core.NonEmptyString(),
	)
)
