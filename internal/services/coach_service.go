package services

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"github.com/markdave123-py/chatters/internal/core"
	"github.com/markdave123-py/chatters/internal/models"
)

const (
	opSuggestions = "suggestions"
	opVibe        = "vibe"
	opIcebreakers = "icebreakers"
	opSandbox     = "sandbox"
)

// SandboxFallback keeps a practice conversation going when the model fails.
var SandboxFallback = models.SandboxReply{
	Reply:    "I didn't quite catch that.",
	Feedback: "Try to be a bit clearer in your intent.",
}

type CoachOptions struct {
	GenModel      string
	PracticeModel string
	Timeout       time.Duration
}

// CoachService shapes prompts for the model and turns its JSON into typed
// results. Model failures never surface as errors: each operation falls back
// to its empty result. Only input validation is reported to the caller.
type CoachService struct {
	llm  core.LLMProvider
	opts CoachOptions
}

func NewCoachService(llm core.LLMProvider, opts CoachOptions) *CoachService {
	return &CoachService{llm: llm, opts: opts}
}

func (c *CoachService) Provider() string { return c.llm.Name() }

// GetResponseSuggestions returns exactly three suggestions, or an empty list.
func (c *CoachService) GetResponseSuggestions(ctx context.Context, incoming, chatContext string) ([]models.Suggestion, error) {
	if strings.TrimSpace(incoming) == "" {
		return nil, ErrEmptyInput
	}

	var out []models.Suggestion
	ok := c.call(ctx, opSuggestions, core.GenerateRequest{
		Model:        c.opts.GenModel,
		SystemPrompt: coachPersona,
		Prompt:       suggestionsPrompt(incoming, chatContext),
		SchemaName:   "suggestions",
		Schema:       suggestionsSchema,
	}, &out)
	if !ok {
		return []models.Suggestion{}, nil
	}
	return lo.Slice(out, 0, suggestionCount), nil
}

// AnalyzeVibe returns nil when the model gave nothing usable.
func (c *CoachService) AnalyzeVibe(ctx context.Context, message string) (*models.VibeAnalysis, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyInput
	}

	var raw struct {
		Tone            string  `json:"tone"`
		HiddenMeaning   string  `json:"hiddenMeaning"`
		SuggestedAction string  `json:"suggestedAction"`
		Intensity       float64 `json:"intensity"`
	}
	ok := c.call(ctx, opVibe, core.GenerateRequest{
		Model:        c.opts.GenModel,
		SystemPrompt: coachPersona,
		Prompt:       vibePrompt(message),
		SchemaName:   "vibe_analysis",
		Schema:       vibeSchema,
	}, &raw)
	if !ok {
		return nil, nil
	}
	return &models.VibeAnalysis{
		Tone:            raw.Tone,
		HiddenMeaning:   raw.HiddenMeaning,
		SuggestedAction: raw.SuggestedAction,
		Intensity:       clampIntensity(raw.Intensity),
	}, nil
}

// GenerateIcebreakers returns exactly five openers, or an empty list.
func (c *CoachService) GenerateIcebreakers(ctx context.Context, p models.IcebreakerParams) ([]string, error) {
	p.Context = strings.TrimSpace(p.Context)
	if p.Context == "" {
		return nil, ErrEmptyInput
	}
	if strings.TrimSpace(p.Relationship) == "" {
		p.Relationship = models.DefaultRelationship
	}
	if p.Intensity == "" {
		p.Intensity = models.IntensityCasual
	}
	if !p.Intensity.Valid() {
		return nil, ErrInvalidInput
	}

	var out []string
	ok := c.call(ctx, opIcebreakers, core.GenerateRequest{
		Model:        c.opts.GenModel,
		SystemPrompt: coachPersona,
		Prompt:       icebreakersPrompt(p),
		SchemaName:   "icebreakers",
		Schema:       icebreakersSchema,
	}, &out)
	if !ok {
		return []string{}, nil
	}
	out = lo.Map(out, func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Slice(out, 0, icebreakerCount), nil
}

// GetSandboxFeedback plays the practice partner and coaches the user's last
// turn. It always returns a usable reply.
func (c *CoachService) GetSandboxFeedback(ctx context.Context, history []models.SandboxMessage) models.SandboxReply {
	var out models.SandboxReply
	ok := c.call(ctx, opSandbox, core.GenerateRequest{
		Model:        c.opts.PracticeModel,
		SystemPrompt: coachPersona,
		Prompt:       sandboxPrompt(history),
		SchemaName:   "sandbox_reply",
		Schema:       sandboxSchema,
	}, &out)
	if !ok {
		return SandboxFallback
	}
	return out
}

// call runs one model request and decodes it into out. It reports false, after
// logging and counting the outcome, for every kind of failure.
func (c *CoachService) call(ctx context.Context, op string, req core.GenerateRequest, out any) bool {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	entry := log.WithFields(log.Fields{"operation": op, "provider": c.llm.Name()})
	start := time.Now()
	body, err := c.llm.GenerateJSON(ctx, req)
	modelLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())

	fail := func(outcome string, err error) bool {
		modelRequests.WithLabelValues(op, outcome).Inc()
		entry.WithError(err).WithField("outcome", outcome).Warn("model request degraded to default")
		return false
	}

	if err != nil {
		return fail(outcomeProviderError, err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return fail(outcomeEmpty, core.ErrEmptyResponse)
	}

	res, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(req.Schema.JSONSchema()),
		gojsonschema.NewStringLoader(body),
	)
	if err != nil {
		return fail(outcomeMalformed, err)
	}
	if !res.Valid() {
		return fail(outcomeInvalid, schemaErrors(res.Errors()))
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fail(outcomeMalformed, err)
	}

	modelRequests.WithLabelValues(op, outcomeOK).Inc()
	entry.WithField("elapsed", time.Since(start)).Debug("model request ok")
	return true
}

type schemaError []gojsonschema.ResultError

func schemaErrors(errs []gojsonschema.ResultError) error { return schemaError(errs) }

func (e schemaError) Error() string {
	return strings.Join(lo.Map(e, func(r gojsonschema.ResultError, _ int) string { return r.String() }), "; ")
}

func clampIntensity(v float64) int {
	switch {
	case math.IsNaN(v), math.IsInf(v, -1):
		return 1
	case math.IsInf(v, 1):
		return 10
	}
	n := int(math.Round(v))
	return max(1, min(10, n))
}
