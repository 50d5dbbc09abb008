package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"

	homedir "github.com/mitchellh/go-homedir"
)

const (
	// clientSecretsFile is the downloaded Google API credentials.json,
	// expected under the config dir.
	clientSecretsFile = "credentials.json"
	tokenFile         = "token.json"

	// localhostAuthPort is where the local server listens to capture the
	// OAuth redirect during interactive consent.
	localhostAuthPort = "6789"

	configDirName = "agenda"
)

// ConfigDir returns the directory holding credentials, the stored token,
// and the subscribed calendar list.
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", configDirName), nil
}

// loadOAuthConfig reads client secrets and pins the redirect to the local
// callback listener.
func loadOAuthConfig() (*oauth2.Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(dir, clientSecretsFile))
	if err != nil {
		return nil, fmt.Errorf("gcal: read client secrets: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("gcal: parse client secrets: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%s/oauth2callback", localhostAuthPort)
	return cfg, nil
}

func tokenPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokenFile), nil
}

// HasStoredToken reports whether a cached OAuth grant exists on disk,
// without validating it. Cheap signed-in signal for callers that do not
// need a full manager.
func HasStoredToken() bool {
	path, err := tokenPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("gcal: decode token %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("gcal: token dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("gcal: cache token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromWeb runs the interactive consent flow: a local listener captures
// the redirect, the user authorizes in a browser, and the code is exchanged
// for a token. Cancellation or timeout returns an error; the caller maps
// that to the signed-out state.
func tokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", localhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("gcal: listen on port %s: %w", localhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("gcal: authorization code not found in redirect")
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("gcal: callback server: %w", err)
		}
	}()
	defer server.Shutdown(context.Background())

	// AccessTypeOffline so a refresh token comes back with the grant.
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open the following URL in your browser to authorize agenda:\n%s\n", authURL)

	select {
	case authCode := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(exchangeCtx, authCode)
		if err != nil {
			return nil, fmt.Errorf("gcal: exchange code: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("gcal: authorization timed out")
	}
}
