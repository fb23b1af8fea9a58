package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

const practiceHelp = "Type a line to reply. /save stores the transcript, /quit leaves."

func newPracticeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "practice",
		Short: "Roleplay a stressful conversation with a coach",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ps := services.NewPracticeSession(e.core.Coach, localProfile)
			defer ps.Close()

			for _, m := range ps.Messages() {
				printTurn(e.out, m)
			}
			fmt.Fprintln(e.out, practiceHelp)

			sc := bufio.NewScanner(e.in)
			for {
				fmt.Fprint(e.out, "> ")
				if !sc.Scan() {
					fmt.Fprintln(e.out)
					return sc.Err()
				}
				line := strings.TrimSpace(sc.Text())

				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/save":
					u, err := e.user(ctx)
					if err == nil {
						_, err = ps.Save(ctx, e.store, u)
					}
					if err != nil {
						fmt.Fprintln(e.out, describe(err))
						continue
					}
					fmt.Fprintln(e.out, "Session saved to your history.")
					continue
				}

				pair, err := ps.Send(ctx, line)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					fmt.Fprintln(e.out, describe(err))
					continue
				}
				for _, m := range pair {
					printTurn(e.out, m)
				}
			}
		},
	}
}

func printTurn(w io.Writer, m models.SandboxMessage) {
	switch m.Role {
	case models.RoleAI:
		fmt.Fprintf(w, "partner: %s\n", m.Text)
	case models.RoleCoach:
		fmt.Fprintf(w, "  coach: %s\n", m.Text)
	default:
		fmt.Fprintf(w, "    you: %s\n", m.Text)
	}
}
