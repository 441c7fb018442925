package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/linkshort/internal/qr"
	"github.com/me/linkshort/internal/validate"
)

func newQRCmd() *cobra.Command {
	var (
		out      string
		size     int
		terminal bool
	)

	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Generate a QR code for a short link",
		Long:  "Render the share URL of a short code as a PNG file or in the terminal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if err := validate.Struct("QR", validate.Code{ShortCode: code}); err != nil {
				return err
			}
			content := linkSvc.ShareURL(code)

			if terminal {
				art, err := qr.Terminal(content)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), art)
				fmt.Fprintln(cmd.OutOrStdout(), content)
				return nil
			}

			px := cfg.QRSize
			if cmd.Flags().Changed("size") {
				px = size
			}
			path := out
			if path == "" {
				path = qr.FileName(code)
			}
			if err := qr.WriteFile(content, px, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "QR code for %s saved to %s\n", content, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output PNG path (default qr-<code>.png)")
	cmd.Flags().IntVar(&size, "size", qr.DefaultSize, "Image size in pixels")
	cmd.Flags().BoolVar(&terminal, "terminal", false, "Print the QR code to the terminal instead of a file")
	return cmd
}
