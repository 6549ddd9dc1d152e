package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framepipe/framepipe/internal/fetch"
)

// newFetchCommand creates the fetch subcommand.
func newFetchCommand(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a file (e.g. a plugin or model weights) into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			dest, err := fetch.Download(cmd.Context(), args[0], dir, func(written, total int64) {
				if total > 0 {
					fmt.Fprintf(out, "\rprogress: %.2f%%", float64(written)/float64(total)*100)
				} else {
					fmt.Fprintf(out, "\rdownloaded: %d bytes", written)
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nsaved %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "o", ".", "Destination directory")
	return cmd
}
