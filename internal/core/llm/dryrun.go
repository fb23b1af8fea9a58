package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/markdave123-py/chatters/internal/core"
)

// DryRun answers every request with placeholder JSON that satisfies the
// request schema. It never calls the network.
type DryRun struct{}

func NewDryRun() *DryRun { return &DryRun{} }

func (DryRun) Name() string { return "dryrun" }

func (DryRun) GenerateJSON(ctx context.Context, req core.GenerateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := json.Marshal(sampleValue(req.Schema, "value"))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func sampleValue(s *core.Schema, name string) any {
	if s == nil {
		return nil
	}
	switch s.Type {
	case core.TypeString:
		return fmt.Sprintf("dry run %s", name)
	case core.TypeNumber, core.TypeInteger:
		v := 5.0
		if s.Minimum != nil && v < *s.Minimum {
			v = *s.Minimum
		}
		if s.Maximum != nil && v > *s.Maximum {
			v = *s.Maximum
		}
		return v
	case core.TypeBoolean:
		return true
	case core.TypeArray:
		n := s.MinItems
		if n == 0 {
			n = 1
		}
		out := make([]any, n)
		for i := range out {
			out[i] = sampleValue(s.Items, fmt.Sprintf("%s %d", name, i+1))
		}
		return out
	case core.TypeObject:
		keys := make([]string, 0, len(s.Properties))
		for k := range s.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			out[k] = sampleValue(s.Properties[k], k)
		}
		return out
	}
	return nil
}

var _ core.LLMProvider = DryRun{}
