package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenPath returns where tokens are cached below the data directory.
func TokenPath(dataDir string) string {
	return filepath.Join(dataDir, "auth", "msgraph_tokens.json")
}

// oauth2Config returns the oauth2.Config for Microsoft Graph using the
// provided tenant and client IDs.
func oauth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// loadToken loads a previously saved token. A missing file yields nil.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken persists a token to path.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Auth obtains Microsoft Graph credentials through the OAuth2 device code
// flow and caches them at TokenPath.
type Auth struct {
	TenantID  string
	ClientID  string
	TokenPath string
	// Out receives the sign-in instructions.
	Out    io.Writer
	Logger *slog.Logger
}

// HTTPClient returns an authenticated HTTP client for Microsoft Graph.
// It loads saved tokens, refreshes them if needed, or initiates a new
// device code flow if no valid token is available. Tokens refreshed while
// the client is in use are saved as well.
func (a Auth) HTTPClient(ctx context.Context) (*http.Client, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := oauth2Config(a.TenantID, a.ClientID)

	tok, err := loadToken(a.TokenPath)
	if err != nil {
		logger.Warn("ignoring cached token", "error", err)
		tok = nil
	}

	if tok == nil || (!tok.Valid() && tok.RefreshToken == "") {
		tok, err = a.deviceFlow(ctx, cfg)
		if err != nil {
			return nil, err
		}
	} else if !tok.Valid() {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err != nil {
			logger.Warn("token refresh failed, re-authenticating", "error", err)
			if refreshed, err = a.deviceFlow(ctx, cfg); err != nil {
				return nil, err
			}
		}
		tok = refreshed
	}
	if err := saveToken(a.TokenPath, tok); err != nil {
		logger.Warn("could not save token", "error", err)
	}

	ts := &savingTokenSource{ts: cfg.TokenSource(ctx, tok), path: a.TokenPath, logger: logger}
	return oauth2.NewClient(ctx, ts), nil
}

func (a Auth) deviceFlow(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	out := a.Out
	if out == nil {
		out = os.Stdout
	}
	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	tok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	return tok, nil
}

// savingTokenSource wraps a TokenSource and persists tokens it hands out
// when they change.
type savingTokenSource struct {
	ts     oauth2.TokenSource
	path   string
	logger *slog.Logger
	last   string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			s.logger.Warn("could not save refreshed token", "error", err)
		}
	}
	return tok, nil
}
