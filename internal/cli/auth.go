package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

type CredentialFlags struct {
	Email    string
	Password string
}

func (f *CredentialFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Email, "email", "", "Account email")
	fs.StringVar(&f.Password, "password", "", "Account password (read from stdin when empty)")
}

// resolve fills in a missing password from the first line of in.
func (f *CredentialFlags) resolve(in io.Reader) error {
	if f.Email == "" {
		return fmt.Errorf("%w: --email is required", services.ErrInvalidInput)
	}
	if f.Password != "" {
		return nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	f.Password = strings.TrimRight(line, "\r\n")
	return nil
}

type ProfileFlags struct {
	models.ProfileDetails
}

func (f *ProfileFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.FirstName, "first-name", "", "First name")
	fs.StringVar(&f.LastName, "last-name", "", "Last name")
	fs.StringVar(&f.Username, "username", "", "Username")
	fs.StringVar(&f.Gender, "gender", "", "Gender")
	fs.StringVar(&f.Age, "age", "", "Age")
}

func newSignUpCommand(e *env) *cobra.Command {
	creds := &CredentialFlags{}
	profile := &ProfileFlags{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.signedOut(cmd.Context()); err != nil {
				return err
			}
			if err := creds.resolve(e.in); err != nil {
				return err
			}
			flow := services.NewAuthFlow(e.store)
			if err := flow.BeginSignUp(cmd.Context(), creds.Email, creds.Password); err != nil {
				return err
			}
			u, err := flow.CompleteSignUp(cmd.Context(), profile.ProfileDetails)
			if err != nil {
				return err
			}
			return e.print(u, func(w io.Writer) {
				fmt.Fprintf(w, "Welcome, %s! You are signed in as %s.\n", u.FirstName, u.Email)
			})
		},
	}
	creds.BindFlags(cmd.Flags())
	profile.BindFlags(cmd.Flags())
	return cmd
}

func newSignInCommand(e *env) *cobra.Command {
	creds := &CredentialFlags{}

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.signedOut(cmd.Context()); err != nil {
				return err
			}
			if err := creds.resolve(e.in); err != nil {
				return err
			}
			u, err := services.NewAuthFlow(e.store).SignIn(cmd.Context(), creds.Email, creds.Password)
			if err != nil {
				return err
			}
			return e.print(u, func(w io.Writer) {
				fmt.Fprintf(w, "Signed in as %s.\n", u.Email)
			})
		},
	}
	creds.BindFlags(cmd.Flags())
	return cmd
}

func newSignOutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out of this profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.SignOut(cmd.Context(), e.store); err != nil {
				return err
			}
			return e.print(map[string]bool{"signedOut": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Signed out.")
			})
		},
	}
}

func newWhoAmICommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.store.GetSession(cmd.Context())
			if err != nil {
				return err
			}
			return e.print(map[string]any{"authenticated": u != nil, "user": u}, func(w io.Writer) {
				if u == nil {
					fmt.Fprintln(w, "Not signed in.")
					return
				}
				fmt.Fprintf(w, "%s %s <%s> (@%s)\n", u.FirstName, u.LastName, u.Email, u.Username)
			})
		},
	}
}

func newPasswordCheckCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "password-check PASSWORD",
		Short: "Show which password rules a candidate meets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := services.CheckPassword(args[0])
			return e.print(struct {
				services.PasswordCheck
				Valid bool `json:"valid"`
			}{c, c.OK()}, func(w io.Writer) {
				rules := []struct {
					ok    bool
					label string
				}{
					{c.Length, "at least 8 characters"},
					{c.Upper, "an uppercase letter"},
					{c.Lower, "a lowercase letter"},
					{c.Number, "a number"},
					{c.Special, "a special character (" + services.PasswordSymbols + ")"},
				}
				for _, r := range rules {
					mark := " "
					if r.ok {
						mark = "x"
					}
					fmt.Fprintf(w, "[%s] %s\n", mark, r.label)
				}
			})
		},
	}
}
