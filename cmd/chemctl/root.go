package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shandysiswandi/chemvis/internal/client"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	defaultServer = "http://localhost:8080"

	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type rootOptions struct {
	server    string
	tokenFile string
	timeout   time.Duration
	output    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "chemctl",
		Short: "Upload and inspect chemical equipment datasets",
		Long: `chemctl talks to a chemvis server.

Log in once with 'chemctl login', then upload CSV files and browse the
summaries, records and PDF reports of the last datasets kept by the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch opts.output {
			case outputTable, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q, use table, json or yaml", opts.output)
			}
		},
	}

	server := os.Getenv("CHEMCTL_SERVER")
	if server == "" {
		server = defaultServer
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.server, "server", server, "chemvis server URL (env CHEMCTL_SERVER)")
	flags.StringVar(&opts.tokenFile, "token-file", "", "where the login token is kept (default is the user config dir)")
	flags.DurationVar(&opts.timeout, "timeout", 60*time.Second, "per request timeout")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format: table, json or yaml")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newUploadCmd(opts),
		newHistoryCmd(opts),
		newShowCmd(opts),
		newReportCmd(opts),
		newDeleteCmd(opts),
		newWatchCmd(opts),
	)

	root.SetErrPrefix("chemctl:")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nrun '%s --help' for usage", err, cmd.CommandPath())
	})

	return root
}

func (o *rootOptions) client() (*client.Client, error) {
	path := o.tokenFile
	if path == "" {
		p, err := client.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	return client.New(client.Options{
		BaseURL: o.server,
		Tokens:  client.NewFileTokenStore(path),
		HTTP:    &http.Client{Timeout: o.timeout},
	})
}

// render writes v in the selected format; table output uses the given
// renderer.
func (o *rootOptions) render(w io.Writer, v any, table func() string) error {
	switch o.output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, table())
		return err
	}
}
