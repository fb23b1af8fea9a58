package objectclient

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by GetFile when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
