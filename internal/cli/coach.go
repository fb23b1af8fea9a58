package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/markdave123-py/chatters/internal/models"
)

type ReplyFlags struct {
	Context    string
	Attachment string
}

func (f *ReplyFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Context, "context", "", "Extra context about the conversation")
	fs.StringVar(&f.Attachment, "attachment", "", "Chat export whose text is added to the context")
}

func newReplyCommand(e *env) *cobra.Command {
	f := &ReplyFlags{}

	cmd := &cobra.Command{
		Use:   "reply MESSAGE",
		Short: "Suggest three replies to a message you received",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			incoming := strings.Join(args, " ")

			chatContext := f.Context
			if f.Attachment != "" {
				text, err := e.readAttachment(ctx, f.Attachment)
				if err != nil {
					return err
				}
				chatContext = strings.TrimSpace(chatContext + "\n" + text)
			}

			suggestions, err := e.core.Coach.GetResponseSuggestions(ctx, incoming, chatContext)
			if err != nil {
				return err
			}
			if len(suggestions) > 0 {
				e.save(ctx, models.ReplyPayload{Input: incoming, Context: chatContext, Suggestions: suggestions})
			}
			return e.print(suggestions, func(w io.Writer) {
				if len(suggestions) == 0 {
					fmt.Fprintln(w, "No suggestions this time. Try again in a moment.")
					return
				}
				for i, s := range suggestions {
					fmt.Fprintf(w, "%d. [%s] %s\n   %s\n", i+1, s.Vibe, s.Content, s.Explanation)
				}
			})
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}

func newVibeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "vibe MESSAGE",
		Short: "Decode the tone and subtext of a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			message := strings.Join(args, " ")

			a, err := e.core.Coach.AnalyzeVibe(ctx, message)
			if err != nil {
				return err
			}
			if a != nil {
				e.save(ctx, models.VibePayload{Message: message, Analysis: *a})
			}
			return e.print(a, func(w io.Writer) {
				if a == nil {
					fmt.Fprintln(w, "Couldn't read the vibe this time. Try again in a moment.")
					return
				}
				fmt.Fprintf(w, "Tone:      %s (%d/10)\nSubtext:   %s\nNext move: %s\n", a.Tone, a.Intensity, a.HiddenMeaning, a.SuggestedAction)
			})
		},
	}
}

func newIcebreakersCommand(e *env) *cobra.Command {
	p := &models.IcebreakerParams{}

	cmd := &cobra.Command{
		Use:   "icebreakers CONTEXT",
		Short: "Generate conversation starters for a situation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Context = strings.Join(args, " ")
			starters, err := e.core.Coach.GenerateIcebreakers(cmd.Context(), *p)
			if err != nil {
				return err
			}
			return e.print(starters, func(w io.Writer) {
				for i, s := range starters {
					fmt.Fprintf(w, "%d. %s\n", i+1, s)
				}
			})
		},
	}
	cmd.Flags().StringVar(&p.Relationship, "relationship", models.DefaultRelationship, "Who you are talking to")
	cmd.Flags().StringVar((*string)(&p.Intensity), "intensity", string(models.IntensityCasual), "casual, meaningful or funny")
	return cmd
}

// save records p for the signed-in user; anonymous use keeps no history.
func (e *env) save(ctx context.Context, p models.Payload) {
	u, err := e.store.GetSession(ctx)
	if err != nil || u == nil {
		return
	}
	if _, err := e.store.SaveHistoryItem(ctx, u.ID, models.NewStoredItem(p)); err != nil {
		log.WithError(err).Warn("save history item")
	}
}

func (e *env) readAttachment(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	res, err := e.core.Attachments.Read(ctx, data, contentType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if res.Truncated {
		log.WithField("file", path).Info("attachment truncated to its most recent lines")
	}
	return res.Text, nil
}
