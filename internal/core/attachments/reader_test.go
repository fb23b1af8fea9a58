package attachments

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type fakeExtractor struct {
	lines []string
	err   error
}

func (f fakeExtractor) ExtractText(ctx context.Context, g *errgroup.Group, _ []byte, _ string) (<-chan string, error) {
	out := make(chan string)
	g.Go(func() error {
		defer close(out)
		for _, l := range f.lines {
			select {
			case out <- l:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return f.err
	})
	return out, nil
}

func TestReader_PlainTextSkipsBlankLines(t *testing.T) {
	r := NewReader(nil, 1024, 100)
	res, err := r.Read(context.Background(), []byte("Sam: hey\n\n  \nMe: hi there \n"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "Sam: hey\nMe: hi there", res.Text)
	assert.Equal(t, 2, res.Lines)
	assert.False(t, res.Truncated)
}

func TestReader_KeepsNewestLinesWithinLimit(t *testing.T) {
	r := NewReader(fakeExtractor{lines: []string{"aaaa", "bbbb", "cccc"}}, 0, 9)
	res, err := r.Read(context.Background(), []byte("x"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "bbbb\ncccc", res.Text)
	assert.True(t, res.Truncated)
}

func TestReader_CutsSingleOversizedLine(t *testing.T) {
	r := NewReader(fakeExtractor{lines: []string{strings.Repeat("a", 5) + "tail"}}, 0, 4)
	res, err := r.Read(context.Background(), []byte("x"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "tail", res.Text)
}

func TestReader_Rejections(t *testing.T) {
	r := NewReader(nil, 4, 100)
	_, err := r.Read(context.Background(), []byte("too big"), "text/plain")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = r.Read(context.Background(), []byte("ok"), "image/png")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = r.Read(context.Background(), []byte("\n\n"), "text/plain")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestReader_PropagatesExtractorFailure(t *testing.T) {
	boom := errors.New("boom")
	r := NewReader(fakeExtractor{lines: []string{"a"}, err: boom}, 0, 100)
	_, err := r.Read(context.Background(), []byte("x"), "application/pdf")
	assert.ErrorIs(t, err, boom)
}
