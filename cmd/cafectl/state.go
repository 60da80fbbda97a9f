package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/cart"
)

const (
	envHome       = "CAFECTL_HOME"
	envAPIURL     = "CAFECTL_API_URL"
	defaultAPIURL = "http://localhost:8080/api/v1"
	credentialKey = "credentials"
)

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// credentials is what survives between invocations besides the cart.
type credentials struct {
	AccessToken  string         `json:"accessToken,omitempty"`
	RefreshToken string         `json:"refreshToken,omitempty"`
	Email        string         `json:"email,omitempty"`
	Cookies      []storedCookie `json:"cookies,omitempty"`
}

func (c credentials) httpCookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(c.Cookies))
	for _, ck := range c.Cookies {
		out = append(out, &http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

func storedCookies(cookies []*http.Cookie) []storedCookie {
	out := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		out = append(out, storedCookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

func resolveStateDir() (string, error) {
	if dir := os.Getenv(envHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".cafectl"), nil
}

func loadCredentials(storage cart.Storage) (credentials, error) {
	var creds credentials
	raw, err := storage.Load(credentialKey)
	if err != nil {
		return creds, fmt.Errorf("read credentials: %w", err)
	}
	if len(raw) == 0 {
		return creds, nil
	}
	if err := json.Unmarshal(raw, &creds); err != nil {
		return credentials{}, errors.New("credentials file is corrupt; run cafectl logout")
	}
	return creds, nil
}

func saveCredentials(storage cart.Storage, creds credentials) error {
	raw, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return storage.Save(credentialKey, raw)
}
