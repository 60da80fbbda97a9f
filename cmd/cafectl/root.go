package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/apiclient"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/cart"
)

// app is the per-invocation state shared by every command.
type app struct {
	apiURL  string
	storage *cart.FileStorage
	creds   credentials
	client  *apiclient.Client

	// signedOut drops the browser session cookie on close.
	signedOut bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "cafectl",
		Short:         "Browse, order from and edit the café site from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	apiURL := os.Getenv(envAPIURL)
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", apiURL, "API base url (env "+envAPIURL+")")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newEditModeCmd(a),
		newEditCmd(a),
		newCartCmd(a),
		newCouponCmd(a),
		newCheckoutCmd(a),
	)
	return root
}

func (a *app) open() error {
	dir, err := resolveStateDir()
	if err != nil {
		return err
	}
	if a.storage, err = cart.NewFileStorage(dir); err != nil {
		return err
	}
	if a.creds, err = loadCredentials(a.storage); err != nil {
		return err
	}
	if a.client, err = apiclient.New(a.apiURL, apiclient.WithToken(a.creds.AccessToken)); err != nil {
		return err
	}
	a.client.SetCookies(a.creds.httpCookies())
	return nil
}

// close persists the token and the browser session cookie for the next run.
func (a *app) close() error {
	if a.client == nil {
		return nil
	}
	a.creds.AccessToken = a.client.Token()
	if a.signedOut {
		a.creds.Cookies = nil
	} else if cookies := a.client.Cookies(); len(cookies) > 0 {
		a.creds.Cookies = storedCookies(cookies)
	}
	return saveCredentials(a.storage, a.creds)
}

func (a *app) loadCart() *cart.Cart {
	return cart.Load(a.storage)
}

// call runs fn and, when the access token has expired, refreshes it once and retries.
func (a *app) call(ctx context.Context, fn func() error) error {
	err := fn()
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || a.creds.RefreshToken == "" {
		return err
	}
	sess, refreshErr := a.client.Refresh(ctx, a.creds.RefreshToken)
	if refreshErr != nil {
		return fmt.Errorf("session expired, run cafectl login: %w", err)
	}
	a.creds.RefreshToken = sess.RefreshToken
	return fn()
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
