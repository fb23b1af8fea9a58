package objectclient

import (
	"bytes"
	"context"
	"errors"
	"path"

	"github.com/markdave123-py/chatters/internal/core"
)

// ObjectStore keeps each key as one JSON object in a bucket.
type ObjectStore struct {
	client ObjectClient
	bucket string
	prefix string
}

var _ core.KVStore = (*ObjectStore)(nil)

func NewObjectStore(client ObjectClient, bucket, prefix string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *ObjectStore) objectKey(key string) string {
	return path.Join(s.prefix, key+".json")
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.GetFile(ctx, s.bucket, s.objectKey(key))
	if errors.Is(err, ErrObjectNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *ObjectStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.UploadFile(ctx, s.bucket, s.objectKey(key), bytes.NewReader(value), "application/json")
	return err
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	return s.client.DeleteFile(ctx, s.bucket, s.objectKey(key))
}

func (s *ObjectStore) Close() error { return nil }
