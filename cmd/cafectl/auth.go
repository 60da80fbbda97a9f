package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/apiclient"
)

func newLoginCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				printf(cmd.OutOrStdout(), "Email: ")
				line, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				email = strings.TrimSpace(line)
			}
			password, err := readPassword(cmd, in)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			sess, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.creds.RefreshToken = sess.RefreshToken
			a.creds.Email = email
			if sess.User != nil {
				printf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", sess.User.Email, sess.User.Role)
				return nil
			}
			printf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

// readPassword masks input on a terminal and reads a plain line otherwise.
func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	printf(cmd.OutOrStdout(), "Password: ")
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		printf(cmd.OutOrStdout(), "\n")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	printf(cmd.OutOrStdout(), "\n")
	return strings.TrimSpace(line), nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.client.Token() != "" {
				var apiErr *apiclient.Error
				if err := a.client.Logout(cmd.Context()); err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized) {
					return err
				}
			}
			a.client.SetToken("")
			a.creds = credentials{}
			a.signedOut = true
			printf(cmd.OutOrStdout(), "Logged out\n")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.client.Token() == "" {
				printf(cmd.OutOrStdout(), "Not logged in\n")
				return nil
			}
			var user *apiclient.User
			err := a.call(cmd.Context(), func() (err error) {
				user, err = a.client.Me(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s %s <%s> role=%s\n", user.FirstName, user.LastName, user.Email, user.Role)
			return nil
		},
	}
}
