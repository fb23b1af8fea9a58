package services

import (
	"context"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/markdave123-py/chatters/internal/core"
	"github.com/markdave123-py/chatters/internal/core/kvstore"
)

func init() { BcryptCost = bcrypt.MinCost }

// fakeLLM answers every request through fn and counts the calls.
type fakeLLM struct {
	fn    func(ctx context.Context, req core.GenerateRequest) (string, error)
	calls atomic.Int32
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) GenerateJSON(ctx context.Context, req core.GenerateRequest) (string, error) {
	f.calls.Add(1)
	return f.fn(ctx, req)
}

func reply(body string) *fakeLLM {
	return &fakeLLM{fn: func(context.Context, core.GenerateRequest) (string, error) { return body, nil }}
}

func newTestStore(t *testing.T) *ProfileStore {
	t.Helper()
	return NewProfileStore(kvstore.NewMemoryStore(), StoreOptions{ProfileID: "p1", HistoryLimit: 200})
}
