package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// KVStore is the persistence boundary: text blobs under string keys.
// Implementations back it with memory, SQLite, Postgres, Redis or S3.
type KVStore interface {
	// Get returns found=false (and no error) when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// EventPublisher delivers domain events to a broker. Publishing is best
// effort; callers log and move on.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

// DocumentExtractor turns an uploaded document into a stream of text lines.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, g *errgroup.Group, r []byte, contentType string) (<-chan string, error)
}
