package attachments

import (
	"bytes"
	"context"
	"strings"

	"code.sajari.com/docconv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/chatters/internal/core"
)

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.DocumentExtractor using sajari/docconv.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// ExtractText converts the upload and streams its non-blank lines. The
// conversion runs on g so a failure surfaces from g.Wait.
func (e *DocconvExtractor) ExtractText(ctx context.Context, g *errgroup.Group, r []byte, contentType string) (<-chan string, error) {
	out := make(chan string, 32)

	g.Go(func() error {
		defer close(out)

		res, err := docconv.Convert(bytes.NewReader(r), contentType, e.useReadability)
		if err != nil {
			log.WithError(err).WithField("content_type", contentType).Warn("attachment conversion failed")
			return ErrUnreadable
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if res.Body == "" {
			log.WithField("content_type", contentType).Debug("attachment produced no text")
		}

		return emitLines(ctx, out, res.Body)
	})

	return out, nil
}

// PlainExtractor handles text/plain uploads without docconv.
type PlainExtractor struct{}

func (PlainExtractor) ExtractText(ctx context.Context, g *errgroup.Group, r []byte, _ string) (<-chan string, error) {
	out := make(chan string, 32)
	g.Go(func() error {
		defer close(out)
		return emitLines(ctx, out, string(r))
	})
	return out, nil
}

func emitLines(ctx context.Context, out chan<- string, text string) error {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		select {
		case out <- line:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
