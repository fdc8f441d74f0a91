package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const redirectAddr = ":8066"
const redirectURL = "http://localhost:8066/"

// Authorize runs the browser-based OAuth2 authorization flow: it starts
// a localhost listener for the redirect, prints the consent URL,
// exchanges the returned code and caches the resulting token.
func Authorize(ctx context.Context) (*oauth2.Token, error) {
	conf, err := LoadOAuthConfig()
	if err != nil {
		return nil, err
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "invalid state", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Received authentication code. You can close this page now.")
		codeCh <- r.URL.Query().Get("code")
	})

	srv := &http.Server{Addr: redirectAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("redirect_uri", redirectURL),
	)
	fmt.Printf("Go to the following link in your browser:\n%v\n", authURL)

	var authCode string
	select {
	case authCode = <-codeCh:
	case err := <-errCh:
		return nil, fmt.Errorf("failed to start redirect listener: %w", err)
	case <-ctx.Done():
		_ = srv.Close()
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	token, err := conf.Exchange(ctx, authCode,
		oauth2.SetAuthURLParam("redirect_uri", redirectURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	if err := SaveToken(token); err != nil {
		return nil, err
	}
	return token, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
