package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

func newHistoryCommand(e *env) *cobra.Command {
	var itemType string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := e.user(ctx)
			if err != nil {
				return err
			}
			if itemType != "" && !models.ItemType(itemType).Valid() {
				return fmt.Errorf("%w: unknown type %q", services.ErrInvalidInput, itemType)
			}

			items, err := e.store.GetHistory(ctx, u.ID)
			if err != nil {
				return err
			}
			if itemType != "" {
				items = lo.Filter(items, func(it models.StoredItem, _ int) bool {
					return it.Type == models.ItemType(itemType)
				})
			}

			return e.print(items, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, "No history yet.")
					return
				}
				for _, it := range items {
					fmt.Fprintf(w, "%s  %-7s  %s\n", it.Timestamp.Format(time.DateTime), it.Type, summary(it))
				}
			})
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "", "Only show reply, vibe or sandbox items")
	return cmd
}

func summary(it models.StoredItem) string {
	switch d := it.Data.(type) {
	case models.ReplyPayload:
		return d.Input
	case models.VibePayload:
		return fmt.Sprintf("%s (%s)", d.Message, d.Analysis.Tone)
	case models.SandboxPayload:
		return fmt.Sprintf("%d messages", len(d.Messages))
	}
	return ""
}

func newContactCommand(e *env) *cobra.Command {
	form := &models.ContactForm{}

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Draft an email to the team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := services.ComposeMail(e.core.Config.ContactEmail, *form)
			if err != nil {
				return err
			}
			return e.print(draft, func(w io.Writer) {
				fmt.Fprintf(w, "Open this link to send your message:\n%s\n", draft.URL)
			})
		},
	}
	cmd.Flags().StringVar(&form.FullName, "name", "", "Your full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Where we can reply")
	cmd.Flags().StringVar(&form.Subject, "subject", "", "Subject")
	cmd.Flags().StringVar(&form.Message, "message", "", "Message")
	return cmd
}

func newThemeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(models.ThemeLight), string(models.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				if err := e.store.SetTheme(ctx, models.Theme(args[0])); err != nil {
					return err
				}
			}
			t, err := e.store.GetTheme(ctx)
			if err != nil {
				return err
			}
			return e.print(models.Preferences{Theme: t}, func(w io.Writer) {
				fmt.Fprintln(w, t)
			})
		},
	}
}

func newViewsCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the app's views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.store.GetSession(cmd.Context())
			if err != nil {
				return err
			}
			visible := lo.Filter(services.Views(), func(v services.View, _ int) bool {
				return !v.RequiresAuth || u != nil
			})
			return e.print(visible, func(w io.Writer) {
				for _, v := range visible {
					fmt.Fprintf(w, "%-12s %s\n", v.ID, v.Label)
				}
			})
		},
	}
}
