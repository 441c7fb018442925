package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/linkshort/pkg/model"
)

// requireSession fails commands that need a signed-in user.
func requireSession() error {
	if !sessions.State().Current().Present() {
		return errNotSignedIn
	}
	return nil
}

// commandError turns a rejected session into a hint to sign in again.
func commandError(action string, err error) error {
	if model.IsUnauthorized(err) {
		return fmt.Errorf("%s: session expired or revoked; run 'linkshort login' again", action)
	}
	return err
}

// shareURL prefers the gateway-provided short URL.
func shareURL(provided, code string) string {
	if provided != "" {
		return provided
	}
	return linkSvc.ShareURL(code)
}

func newShortenCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "shorten <url>",
		Short: "Create a short link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			link, err := linkSvc.Shorten(contextOf(cmd), args[0], alias)
			if err != nil {
				return commandError("shorten", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Short URL: %s\n", shareURL(link.ShortURL, link.ShortCode))
			fmt.Fprintf(out, "  Code:     %s\n", link.ShortCode)
			if link.ID != "" {
				fmt.Fprintf(out, "  ID:       %s\n", link.ID)
			}
			fmt.Fprintf(out, "  Original: %s\n", link.OriginalURL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&alias, "alias", "a", "", "Custom short code (3-32 letters, digits, '-' or '_')")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a short link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			if err := linkSvc.Delete(contextOf(cmd), args[0]); err != nil {
				return commandError("delete", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <code>",
		Short: "Check whether a short code is taken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := linkSvc.Check(contextOf(cmd), args[0])
			if err != nil {
				return err
			}
			if res.Exists {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is taken\n", res.ShortCode)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is available\n", res.ShortCode)
			}
			return nil
		},
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <code>",
		Short: "Show the URL a short code points to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := linkSvc.Resolve(contextOf(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), target.OriginalURL)
			return nil
		},
	}
}
