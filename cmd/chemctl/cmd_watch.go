package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/shandysiswandi/chemvis/internal/client"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Upload CSV files as they appear in a directory",
		Long: `Watch a directory and upload every CSV file that is created or rewritten
in it. A file is uploaded once it has stopped changing for --settle.
Press Ctrl-C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", args[0])

			return c.Watch(cmd.Context(), args[0], settle, func(r client.WatchResult) {
				name := filepath.Base(r.Path)
				if r.Err != nil {
					fmt.Fprintf(out, "%s: %v\n", name, r.Err)
					return
				}
				fmt.Fprintf(out, "%s: dataset %d, %d records\n", name, r.Dataset.ID, r.Dataset.RecordCount)
			})
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", client.DefaultSettle, "how long a file must stay unchanged before upload")

	return cmd
}
