// internal/common/auth/keycloak.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"finportal/internal/common/config"
	"finportal/internal/common/errors"
	httpx "finportal/internal/common/http"
)

// KeycloakClient talks to the realm's OpenID Connect endpoints: hosted
// login, code exchange, token introspection and logout.
type KeycloakClient struct {
	realmURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	oauth        *oauth2.Config
}

// TokenInfo holds the information returned by the token introspection endpoint.
type TokenInfo struct {
	Active            bool               `json:"active"`
	Scope             string             `json:"scope,omitempty"`
	ClientID          string             `json:"client_id,omitempty"`
	Username          string             `json:"username,omitempty"`
	PreferredUsername string             `json:"preferred_username,omitempty"`
	Email             string             `json:"email,omitempty"`
	Name              string             `json:"name,omitempty"`
	TokenType         string             `json:"token_type,omitempty"`
	Exp               int64              `json:"exp,omitempty"`
	Iat               int64              `json:"iat,omitempty"`
	Sub               string             `json:"sub,omitempty"`
	Iss               string             `json:"iss,omitempty"`
	Role              string             `json:"role,omitempty"`
	RealmAccess       RoleSet            `json:"realm_access,omitempty"`
	ResourceAccess    map[string]RoleSet `json:"resource_access,omitempty"`
}

// RoleSet is Keycloak's {"roles": [...]} shape.
type RoleSet struct {
	Roles []string `json:"roles"`
}

// NewKeycloakClient builds a client for the configured realm. httpClient may
// be nil, in which case a 30s client is used.
func NewKeycloakClient(cfg config.KeycloakConfig, httpClient *httpx.Client) *KeycloakClient {
	if httpClient == nil {
		httpClient = httpx.NewClient(30 * time.Second)
	}
	realmURL := cfg.RealmURL()

	return &KeycloakClient{
		realmURL:     realmURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient.Standard(),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  realmURL + "/protocol/openid-connect/auth",
				TokenURL: realmURL + "/protocol/openid-connect/token",
			},
		},
	}
}

// RealmURL returns the issuer URL tokens from this realm carry.
func (k *KeycloakClient) RealmURL() string {
	return k.realmURL
}

// AuthCodeURL returns the hosted login URL carrying state.
func (k *KeycloakClient) AuthCodeURL(state string) string {
	return k.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens.
func (k *KeycloakClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, k.httpClient)
	token, err := k.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, errors.NewAuthenticationError(fmt.Sprintf("code exchange failed: %v", err))
	}
	return token, nil
}

// Logout revokes a user's refresh token.
func (k *KeycloakClient) Logout(ctx context.Context, refreshToken string) error {
	data := url.Values{}
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)
	data.Set("refresh_token", refreshToken)

	resp, err := k.postForm(ctx, k.realmURL+"/protocol/openid-connect/logout", data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		stdErr := errors.NewExternalServiceError("keycloak",
			fmt.Errorf("logout status %d: %s", resp.StatusCode, string(body)))
		stdErr.Retryable = httpx.IsTransientStatus(resp.StatusCode)
		return stdErr
	}
	return nil
}

// Introspect checks an access token with the realm and returns its claims.
func (k *KeycloakClient) Introspect(ctx context.Context, token string) (*TokenInfo, error) {
	data := url.Values{}
	data.Set("token", token)
	data.Set("token_type_hint", "access_token")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	resp, err := k.postForm(ctx, k.realmURL+"/protocol/openid-connect/token/introspect", data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewExternalServiceError("keycloak",
			fmt.Errorf("introspection status %d: %s", resp.StatusCode, string(body)))
	}

	var info TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.NewExternalServiceError("keycloak", fmt.Errorf("decode introspection: %w", err))
	}
	if !info.Active {
		return nil, errors.NewAuthenticationError("token is not active")
	}
	return &info, nil
}

func (k *KeycloakClient) postForm(ctx context.Context, endpoint string, data url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalServiceError("keycloak", err)
	}
	return resp, nil
}
