package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and save the API token",
		Long: `Log in with a username and password. The token returned by the server is
saved so later commands are authenticated.

The password is read from --password, then CHEMCTL_PASSWORD, then prompted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}

			secret := password
			if secret == "" {
				secret = os.Getenv("CHEMCTL_PASSWORD")
			}
			if secret == "" {
				if secret, err = promptPassword(cmd); err != nil {
					return err
				}
			}

			session, err := c.Login(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}

			role := "user"
			if session.IsStaff {
				role = "staff"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", session.Username, role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")

	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no password given")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
