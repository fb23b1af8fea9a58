package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	log "github.com/sirupsen/logrus"

	"github.com/markdave123-py/chatters/internal/core"
)

// wrapKey holds non-object roots; OpenAI json_schema output must be an object.
const wrapKey = "result"

type OpenAILLM struct {
	client       *openai.Client
	defaultModel string
}

func NewOpenAILLM(apiKey, baseURL, model string) *OpenAILLM {
	var options []option.RequestOption
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	if apiKey == "" {
		log.Info("OPENAI_API_KEY is not set, will try unauthenticated access")
	} else {
		options = append(options, option.WithAPIKey(apiKey))
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(options...)
	return &OpenAILLM{client: &client, defaultModel: model}
}

func (o *OpenAILLM) Name() string { return "openai" }

func (o *OpenAILLM) GenerateJSON(ctx context.Context, req core.GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = o.defaultModel
	}

	schema, wrapped := openAISchema(req.Schema)
	name := req.SchemaName
	if name == "" {
		name = "reply"
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: schema,
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", core.ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	if !wrapped {
		return content, nil
	}
	return unwrapResult(content)
}

// openAISchema returns the JSON Schema to send and whether the root had to be
// wrapped in an object.
func openAISchema(s *core.Schema) (map[string]any, bool) {
	if s == nil {
		return map[string]any{"type": "object"}, false
	}
	if s.Type == core.TypeObject {
		return s.JSONSchema(), false
	}
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{wrapKey: s.JSONSchema()},
		"required":   []any{wrapKey},
	}, true
}

func unwrapResult(content string) (string, error) {
	if content == "" {
		return "", core.ErrEmptyResponse
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &env); err != nil {
		return "", fmt.Errorf("openai wrapped reply is not an object: %w", err)
	}
	raw, ok := env[wrapKey]
	if !ok {
		return "", fmt.Errorf("openai wrapped reply has no %q field", wrapKey)
	}
	return string(raw), nil
}

var _ core.LLMProvider = (*OpenAILLM)(nil)
