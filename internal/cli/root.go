// Package cli is the terminal client. It acts as one local profile backed by
// the configured store (a SQLite file by default) and drives the same
// services as the HTTP API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/markdave123-py/chatters/internal/app"
	"github.com/markdave123-py/chatters/internal/config"
	"github.com/markdave123-py/chatters/internal/logging"
	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

const localProfile = "local"

// CoreBuilder opens storage and the model provider. Tests swap it out.
type CoreBuilder func(ctx context.Context, cfg *config.Config) (*app.Core, error)

type GlobalFlags struct {
	StoreDriver string
	SqlitePath  string
	Provider    string
	LogLevel    string
	JSON        bool
}

func (f *GlobalFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.StoreDriver, "store", f.StoreDriver, "Store driver (memory, sqlite, postgres, redis, s3)")
	fs.StringVar(&f.SqlitePath, "db", f.SqlitePath, "Path of the SQLite profile file")
	fs.StringVar(&f.Provider, "provider", f.Provider, "Model provider (gemini, openai, dryrun)")
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "Log level (trace,debug,info,warn,error)")
	fs.BoolVar(&f.JSON, "json", false, "Print results as JSON")
}

// env is what every subcommand works with once the root has started up.
type env struct {
	core  *app.Core
	store *services.ProfileStore
	out   io.Writer
	in    io.Reader
	json  bool
}

func (e *env) user(ctx context.Context) (*models.User, error) {
	u, err := e.store.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, services.ErrNotSignedIn
	}
	return u, nil
}

func (e *env) close() {
	if e.core != nil {
		e.core.Close()
		e.core = nil
	}
}

// signedOut fails when someone is already signed in to the local profile.
func (e *env) signedOut(ctx context.Context) error {
	u, err := e.store.GetSession(ctx)
	if err != nil {
		return err
	}
	if u != nil {
		return fmt.Errorf("already signed in as %s, run signout first", u.Email)
	}
	return nil
}

// print writes v as JSON with --json, otherwise calls human.
func (e *env) print(v any, human func(w io.Writer)) error {
	if e.json {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human(e.out)
	return nil
}

func NewRootCommand(build CoreBuilder) *cobra.Command {
	cfg := config.LoadConfig()
	f := &GlobalFlags{
		StoreDriver: cfg.StoreDriver,
		SqlitePath:  cfg.SqlitePath,
		Provider:    cfg.AIProvider,
		LogLevel:    cfg.LogLevel,
	}
	e := &env{}

	root := &cobra.Command{
		Use:           "chatters",
		Short:         "Chatters.ai social coach for introverts",
		Long:          "Reply suggestions, vibe decoding, icebreakers and roleplay practice, from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
				return nil
			}
			if err := logging.Setup(cmd.ErrOrStderr(), f.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			cfg.StoreDriver = f.StoreDriver
			cfg.SqlitePath = f.SqlitePath
			cfg.AIProvider = f.Provider
			if err := cfg.Validate(); err != nil {
				return err
			}

			c, err := build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			e.core = c
			e.store = c.Stores.For(localProfile)
			e.out = cmd.OutOrStdout()
			e.in = cmd.InOrStdin()
			e.json = f.JSON
			log.WithField("provider", c.LLM.Name()).Debug("ready")
			return nil
		},
	}
	f.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newSignUpCommand(e),
		newSignInCommand(e),
		newSignOutCommand(e),
		newWhoAmICommand(e),
		newPasswordCheckCommand(e),
		newReplyCommand(e),
		newVibeCommand(e),
		newIcebreakersCommand(e),
		newPracticeCommand(e),
		newHistoryCommand(e),
		newContactCommand(e),
		newThemeCommand(e),
		newViewsCommand(e),
	)
	// PostRun hooks are skipped when RunE fails, so the core is released here.
	for _, sub := range root.Commands() {
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			defer e.close()
			return run(cmd, args)
		}
	}
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(app.NewCore)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, describe(err))
		return 1
	}
	return 0
}

func describe(err error) string {
	if msg := services.UserMessage(err); msg != "" {
		return msg
	}
	return "error: " + err.Error()
}
