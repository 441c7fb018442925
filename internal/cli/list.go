package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your short links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			list, err := linkSvc.Refresh(contextOf(cmd))
			if err != nil {
				return commandError("list links", err)
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No links yet. Create one with 'linkshort shorten <url>'.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODE\tSHORT URL\tORIGINAL\tCLICKS\tCREATED")
			for _, l := range list {
				created := "-"
				if !l.CreatedAt.IsZero() {
					created = humanize.Time(l.CreatedAt.Time)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					l.ID, l.ShortCode, shareURL(l.ShortURL, l.ShortCode), l.OriginalURL,
					humanize.Comma(l.ClickCount), created)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s\n", english.Plural(len(list), "link", "links"))
			return nil
		},
	}
}
