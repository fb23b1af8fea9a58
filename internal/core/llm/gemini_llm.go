package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/chatters/internal/core"
)

type GeminiLLM struct {
	client       *genai.Client
	defaultModel string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-3-flash-preview"
	}
	return &GeminiLLM{client: cl, defaultModel: modelName}, nil
}

func (g *GeminiLLM) Name() string { return "gemini" }

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// GenerateJSON asks for application/json output constrained by the request
// schema and returns the concatenated text parts of the first candidate.
func (g *GeminiLLM) GenerateJSON(ctx context.Context, req core.GenerateRequest) (string, error) {
	name := req.Model
	if name == "" {
		name = g.defaultModel
	}
	m := g.client.GenerativeModel(name)
	if req.SystemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}
	m.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		m.ResponseSchema = toGeminiSchema(req.Schema)
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", core.ErrEmptyResponse
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

func toGeminiSchema(s *core.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{Description: s.Description}
	switch s.Type {
	case core.TypeString:
		out.Type = genai.TypeString
	case core.TypeNumber:
		out.Type = genai.TypeNumber
	case core.TypeInteger:
		out.Type = genai.TypeInteger
	case core.TypeBoolean:
		out.Type = genai.TypeBoolean
	case core.TypeArray:
		out.Type = genai.TypeArray
		out.Items = toGeminiSchema(s.Items)
	case core.TypeObject:
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toGeminiSchema(p)
		}
		out.Required = append([]string(nil), s.Order...)
	}
	return out
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
