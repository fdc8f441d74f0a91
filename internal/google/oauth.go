package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// Scopes are the Google OAuth scopes the application requires: read-only
// mail access and full calendar access for event creation.
var Scopes = []string{
	gmail.GmailReadonlyScope,
	calendar.CalendarScope,
}

// CredentialsPath returns the path to the OAuth client credentials file.
// The REGCAL_CREDENTIALS environment variable overrides the default
// location in the user config directory.
func CredentialsPath() string {
	if p := os.Getenv("REGCAL_CREDENTIALS"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "credentials.json")
}

// TokenPath returns the path to the cached OAuth token file.
func TokenPath() string {
	return filepath.Join(cacheDir(), "token.json")
}

// LoadOAuthConfig parses the credentials file into an OAuth2 config with
// the application scopes.
func LoadOAuthConfig() (*oauth2.Config, error) {
	credPath := CredentialsPath()
	slurp, err := os.ReadFile(credPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", credPath, err)
	}

	conf, err := google.ConfigFromJSON(slurp, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", credPath, err)
	}
	return conf, nil
}

// HasToken reports whether a cached OAuth token exists.
func HasToken() bool {
	_, err := os.Stat(TokenPath())
	return err == nil
}

// SaveToken writes a token to the cache file.
func SaveToken(token *oauth2.Token) error {
	dir := cacheDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(TokenPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// InvalidateToken deletes the cached token file. Called when a refresh
// fails so the next run starts a fresh authorization flow.
func InvalidateToken() error {
	err := os.Remove(TokenPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// loadToken reads the cached token from disk.
func loadToken() (*oauth2.Token, error) {
	slurp, err := os.ReadFile(TokenPath())
	if err != nil {
		return nil, fmt.Errorf("no cached Google OAuth token found; run 'regcal auth' first")
	}

	var token oauth2.Token
	if err := json.Unmarshal(slurp, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// GetTokenSource returns an OAuth2 token source backed by the cached
// token. The returned source refreshes the access token as needed. If
// the cached token can no longer be refreshed, the stale file is deleted
// and an error is returned.
func GetTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	conf, err := LoadOAuthConfig()
	if err != nil {
		return nil, err
	}

	token, err := loadToken()
	if err != nil {
		return nil, err
	}

	ts := conf.TokenSource(ctx, token)
	if _, err := ts.Token(); err != nil {
		if rmErr := InvalidateToken(); rmErr == nil {
			return nil, fmt.Errorf("cached token is invalid and was removed, run 'regcal auth' to re-authenticate: %w", err)
		}
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}

	return ts, nil
}

// GetHTTPClientWithProvider returns an HTTP client authenticated with a
// token from the given provider. The client is configured to use
// HTTP/1.1 to avoid HTTP/2 protocol errors against the Google APIs.
func GetHTTPClientWithProvider(ctx context.Context, provider TokenProvider) (*http.Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := provider.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	conf, err := LoadOAuthConfig()
	if err != nil {
		return nil, err
	}

	ts := conf.TokenSource(ctx, token)
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client, nil
}

func configDir() string {
	if p := os.Getenv("REGCAL_CONFIG_DIR"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "regcal")
	}
	return filepath.Join(homeDir(), ".config", "regcal")
}

func cacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "regcal")
	}
	return filepath.Join(homeDir(), ".cache", "regcal")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}
