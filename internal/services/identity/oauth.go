package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/j-veylop/hackdash/internal/logger"
)

// DefaultAuthURL is the Hack Club OpenID provider.
const DefaultAuthURL = "https://auth.hackclub.com"

// DefaultScopes are the scopes the refresh token was granted with.
var DefaultScopes = []string{"openid", "profile", "email", "name", "slack_id"}

// OAuthConfig holds the client credentials for token refresh.
type OAuthConfig struct {
	HTTPClient   *http.Client
	AuthURL      string
	ClientID     string
	ClientSecret string
}

// Discovery is the subset of the OpenID configuration document in use.
type Discovery struct {
	Issuer           string `json:"issuer"`
	TokenEndpoint    string `json:"token_endpoint"`
	UserInfoEndpoint string `json:"userinfo_endpoint"`
}

// UserInfo represents the OpenID userinfo claims.
type UserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	SlackID string `json:"slack_id"`
}

func (c OAuthConfig) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c OAuthConfig) authURL() string {
	if c.AuthURL == "" {
		return DefaultAuthURL
	}
	return strings.TrimRight(c.AuthURL, "/")
}

// discover fetches the provider's OpenID configuration.
func (c OAuthConfig) discover(ctx context.Context) (*Discovery, error) {
	var d Discovery
	if err := c.getJSON(ctx, c.httpClient(), c.authURL()+"/.well-known/openid-configuration", &d); err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	if d.TokenEndpoint == "" || d.UserInfoEndpoint == "" {
		return nil, fmt.Errorf("discovery document is missing endpoints")
	}
	return &d, nil
}

// refresh exchanges refreshToken for an access token and reads the userinfo
// claims with it. The returned refresh token is non-empty when rotated.
func (c OAuthConfig) refresh(ctx context.Context, refreshToken string) (*UserInfo, string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient())

	disc, err := c.discover(ctx)
	if err != nil {
		return nil, "", err
	}

	oc := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       DefaultScopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  disc.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	token, err := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, "", fmt.Errorf("failed to refresh token: %w", err)
	}

	var info UserInfo
	if err := c.getJSON(ctx, oc.Client(ctx, token), disc.UserInfoEndpoint, &info); err != nil {
		return nil, "", fmt.Errorf("userinfo request failed: %w", err)
	}
	info.SlackID = strings.TrimSpace(info.SlackID)
	if info.SlackID == "" {
		return nil, "", fmt.Errorf("userinfo has no slack_id claim")
	}

	rotated := ""
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		rotated = token.RefreshToken
	}
	return &info, rotated, nil
}

func (c OAuthConfig) getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
