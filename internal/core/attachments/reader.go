package attachments

import (
	"context"
	"errors"
	"mime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/chatters/internal/core"
)

var (
	ErrTooLarge    = errors.New("attachment too large")
	ErrUnsupported = errors.New("unsupported attachment type")
	ErrUnreadable  = errors.New("attachment could not be read")
	ErrEmpty       = errors.New("attachment contains no text")
)

var supported = map[string]bool{
	"text/plain":         true,
	"text/html":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/rtf":    true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.oasis.opendocument.text":                                 true,
}

// Result is the context text pulled out of a chat export.
type Result struct {
	Text      string `json:"text"`
	Lines     int    `json:"lines"`
	Truncated bool   `json:"truncated"`
}

// Reader turns chat-export uploads into context text for the reply coach.
// The tail of the conversation is kept since it is what the reply answers.
type Reader struct {
	docs     core.DocumentExtractor
	plain    core.DocumentExtractor
	maxBytes int64
	maxChars int
}

func NewReader(docs core.DocumentExtractor, maxBytes int64, maxChars int) *Reader {
	return &Reader{docs: docs, plain: PlainExtractor{}, maxBytes: maxBytes, maxChars: maxChars}
}

func (r *Reader) MaxBytes() int64 { return r.maxBytes }

func (r *Reader) Read(ctx context.Context, data []byte, contentType string) (*Result, error) {
	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return nil, ErrTooLarge
	}
	ct := normalizeContentType(contentType)
	if !supported[ct] {
		return nil, ErrUnsupported
	}

	ex := r.docs
	if ct == "text/plain" || ex == nil {
		ex = r.plain
	}

	g, gctx := errgroup.WithContext(ctx)
	lines, err := ex.ExtractText(gctx, g, data, ct)
	if err != nil {
		return nil, err
	}
	res := collectTail(gctx, g, lines, r.maxChars)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if res.Text == "" {
		return nil, ErrEmpty
	}
	return res, nil
}

// collectTail drains lines on g and keeps the newest ones that fit in
// maxChars. The returned Result is complete once g.Wait returns.
func collectTail(ctx context.Context, g *errgroup.Group, lines <-chan string, maxChars int) *Result {
	res := &Result{}
	g.Go(func() error {
		var (
			buf   []string
			total int
		)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case line, ok := <-lines:
				if !ok {
					res.Text = strings.Join(buf, "\n")
					res.Lines = len(buf)
					return nil
				}
				buf = append(buf, line)
				total += len([]rune(line)) + 1
				for maxChars > 0 && total-1 > maxChars && len(buf) > 1 {
					total -= len([]rune(buf[0])) + 1
					buf = buf[1:]
					res.Truncated = true
				}
				if maxChars > 0 && total-1 > maxChars {
					rs := []rune(buf[0])
					buf[0] = string(rs[len(rs)-maxChars:])
					total = maxChars + 1
					res.Truncated = true
				}
			}
		}
	})
	return res
}

func normalizeContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}
