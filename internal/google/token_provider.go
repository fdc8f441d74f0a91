package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google
// APIs. This abstraction allows tests to stand in for the file-backed
// token cache.
type TokenProvider interface {
	// GetToken retrieves a valid OAuth token.
	GetToken(ctx context.Context) (*oauth2.Token, error)

	// HasToken checks whether a token is available.
	HasToken() bool
}

// FileTokenProvider provides tokens from the on-disk token cache.
type FileTokenProvider struct{}

// NewFileTokenProvider creates a new file-based token provider.
func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

// GetToken retrieves a token from the on-disk cache, refreshing it if
// necessary.
func (p *FileTokenProvider) GetToken(ctx context.Context) (*oauth2.Token, error) {
	ts, err := GetTokenSource(ctx)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}
	return token, nil
}

// HasToken checks whether a token file exists on disk.
func (p *FileTokenProvider) HasToken() bool {
	return HasToken()
}
