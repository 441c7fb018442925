package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/linkshort/internal/validate"
	"github.com/me/linkshort/pkg/gateway"
)

var errNotSignedIn = errors.New("not signed in; run 'linkshort login' first")

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the gateway",
		Long:  "Sign in with your username and password. Missing values are prompted for.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			user, err := p.ask("Username", username)
			if err != nil {
				return err
			}
			pass, err := p.ask("Password", password)
			if err != nil {
				return err
			}

			sess, err := sessions.Login(contextOf(cmd), user, pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", sess.Username())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted if omitted)")
	return cmd
}

func newSignupCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			user, err := p.ask("Username", username)
			if err != nil {
				return err
			}
			mail, err := p.ask("Email", email)
			if err != nil {
				return err
			}

			// Passwords typed at the prompt are confirmed.
			pass, err := p.ask("Password", password)
			if err != nil {
				return err
			}
			confirm, err := p.ask("Confirm password", password)
			if err != nil {
				return err
			}

			input := validate.Signup{Username: user, Email: mail, Password: pass, ConfirmPassword: confirm}
			if err := validate.Struct("Signup", input); err != nil {
				return err
			}

			sess, err := sessions.Signup(contextOf(cmd), user, pass, mail)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Signed in as %s\n", sess.Username())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if omitted)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (prompted if omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted and confirmed if omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wasSignedIn := sessions.State().Current().Present()
			sessions.Logout(contextOf(cmd))
			if wasSignedIn {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			}
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := sessions.State().Current()
			if !sess.Present() {
				return errNotSignedIn
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username:  %s\n", sess.Username())
			if !sess.User.CreatedAt.IsZero() {
				fmt.Fprintf(out, "Signed in: %s\n", humanize.Time(sess.User.CreatedAt))
			}
			fmt.Fprintf(out, "Gateway:   %s\n", cfg.GatewayURL)

			info, err := gateway.ParseTokenInfo(sess.Token)
			if err != nil {
				logger.Debug("token is not a readable JWT", "error", err)
				return nil
			}
			if !info.ExpiresAt.IsZero() {
				if info.IsExpired() {
					fmt.Fprintf(out, "Token:     expired %s\n", humanize.Time(info.ExpiresAt))
				} else {
					fmt.Fprintf(out, "Token:     expires %s (%s)\n", humanize.Time(info.ExpiresAt), info.ExpiresAt.Local().Format(time.RFC1123))
				}
			}
			return nil
		},
	}
}
