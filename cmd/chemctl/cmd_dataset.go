package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shandysiswandi/chemvis/internal/client"
	"github.com/spf13/cobra"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func newUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Upload an equipment CSV and print its summary",
		Long: `Upload a CSV with the columns Equipment Name, Type, Flowrate, Pressure and
Temperature. The server keeps the five most recent uploads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			name := filepath.Base(args[0])
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()

			progress := cmd.ErrOrStderr()
			pending := c.UploadAsync(ctx, args[0])
			started := time.Now()

			for frame := 0; ; frame++ {
				select {
				case <-ticker.C:
					fmt.Fprintf(progress, "\r%s uploading %s %s", spinnerFrames[frame%len(spinnerFrames)], name, time.Since(started).Truncate(100*time.Millisecond))
				case outcome := <-pending:
					fmt.Fprint(progress, "\r\033[K")
					if outcome.Err != nil {
						return outcome.Err
					}
					ds := outcome.Value
					return opts.render(cmd.OutOrStdout(), ds, func() string {
						return fmt.Sprintf("uploaded %s as dataset %d\n\n%s\n\n%s",
							ds.Filename, ds.ID,
							client.RenderSummary(ds.SummaryStats),
							client.RenderDistribution(ds.SummaryStats.TypeDistribution))
					})
				}
			}
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"ls"},
		Short:   "List the retained datasets, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}

			h, err := c.History(cmd.Context(), page, pageSize)
			if err != nil {
				return err
			}

			return opts.render(cmd.OutOrStdout(), h, func() string { return client.RenderHistory(h) })
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 50, "datasets per page (max 100)")

	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var pageSize int

	cmd := &cobra.Command{
		Use:   "show <dataset-id>",
		Short: "Show a dataset's summary, type distribution and records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, err := opts.client()
			if err != nil {
				return err
			}

			dash, err := c.Show(cmd.Context(), id, pageSize)
			if err != nil {
				return err
			}

			return opts.render(cmd.OutOrStdout(), dash, func() string { return client.RenderDashboard(dash) })
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 50, "records to show (max 100)")

	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report <dataset-id>",
		Short: "Download the PDF report of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, err := opts.client()
			if err != nil {
				return err
			}

			saved, err := downloadReport(cmd.Context(), c, id, out)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "report saved to %s\n", saved)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "file to write (default is the server's filename in the current dir)")

	return cmd
}

// downloadReport writes through a temp file in the target directory and
// renames it into place.
func downloadReport(ctx context.Context, c *client.Client, id int64, out string) (_ string, err error) {
	dir := "."
	if out != "" {
		dir = filepath.Dir(out)
	}

	tmp, err := os.CreateTemp(dir, ".chemctl-report-*")
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	name, err := c.Report(ctx, id, tmp)
	if err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	if out == "" {
		out = name
	}
	if err = os.Rename(tmp.Name(), out); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	return out, nil
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <dataset-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a dataset and its records",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, err := opts.client()
			if err != nil {
				return err
			}

			if err := c.Delete(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "dataset %d deleted\n", id)
			return nil
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("dataset id must be a positive number")
	}
	return id, nil
}
