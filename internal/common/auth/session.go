package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"finportal/internal/common/config"
	"finportal/internal/common/errors"
)

// Principal is the authenticated caller as seen by the route gate.
type Principal struct {
	Subject string
	Email   string
	Name    string
	Roles   []string
}

// HasRole reports whether role is present, compared literally.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Verifier turns a session token into a Principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// Claims are the Keycloak access token claims the portal reads. A flat
// "role" claim (set by a protocol mapper) is honoured alongside realm roles
// and the roles of the portal's own client.
type Claims struct {
	jwt.RegisteredClaims
	Email             string             `json:"email,omitempty"`
	Name              string             `json:"name,omitempty"`
	PreferredUsername string             `json:"preferred_username,omitempty"`
	Role              string             `json:"role,omitempty"`
	RealmAccess       RoleSet            `json:"realm_access,omitempty"`
	ResourceAccess    map[string]RoleSet `json:"resource_access,omitempty"`
}

// collectRoles ignores roles granted on other clients of the realm.
func collectRoles(flat string, realm RoleSet, resources map[string]RoleSet, clientID string) []string {
	roles := make([]string, 0, len(realm.Roles)+1)
	if flat != "" {
		roles = append(roles, flat)
	}
	roles = append(roles, realm.Roles...)
	if clientID != "" {
		roles = append(roles, resources[clientID].Roles...)
	}
	return roles
}

// JWTVerifier validates RS256 access tokens locally against the realm key.
type JWTVerifier struct {
	key      *rsa.PublicKey
	issuer   string
	clientID string
}

// NewJWTVerifier parses publicKey, which may be a full PEM block or the bare
// base64 body Keycloak shows in the realm keys tab. Client roles are read
// for clientID only.
func NewJWTVerifier(publicKey, issuer, clientID string) (*JWTVerifier, error) {
	pemKey := strings.TrimSpace(publicKey)
	if !strings.HasPrefix(pemKey, "-----BEGIN") {
		pemKey = "-----BEGIN PUBLIC KEY-----\n" + pemKey + "\n-----END PUBLIC KEY-----"
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("parse realm public key: %w", err)
	}
	return &JWTVerifier{key: key, issuer: issuer, clientID: clientID}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, errors.NewAuthenticationError(err.Error())
	}
	if !token.Valid {
		return nil, errors.NewAuthenticationError("invalid token")
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}
	return &Principal{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    name,
		Roles:   collectRoles(claims.Role, claims.RealmAccess, claims.ResourceAccess, v.clientID),
	}, nil
}

// Introspector is the part of KeycloakClient IntrospectionVerifier needs.
type Introspector interface {
	Introspect(ctx context.Context, token string) (*TokenInfo, error)
}

// IntrospectionVerifier asks Keycloak about every token.
type IntrospectionVerifier struct {
	client   Introspector
	clientID string
}

func NewIntrospectionVerifier(client Introspector, clientID string) *IntrospectionVerifier {
	return &IntrospectionVerifier{client: client, clientID: clientID}
}

func (v *IntrospectionVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	info, err := v.client.Introspect(ctx, token)
	if err != nil {
		return nil, err
	}

	name := info.Name
	if name == "" {
		name = info.PreferredUsername
	}
	if name == "" {
		name = info.Username
	}
	return &Principal{
		Subject: info.Sub,
		Email:   info.Email,
		Name:    name,
		Roles:   collectRoles(info.Role, info.RealmAccess, info.ResourceAccess, v.clientID),
	}, nil
}

// NewVerifier verifies locally when a realm key is configured and falls back
// to introspection otherwise.
func NewVerifier(cfg config.KeycloakConfig, client Introspector) (Verifier, error) {
	if cfg.PublicKey != "" {
		return NewJWTVerifier(cfg.PublicKey, cfg.RealmURL(), cfg.ClientID)
	}
	if client == nil {
		return nil, fmt.Errorf("keycloak public key or introspection client required")
	}
	return NewIntrospectionVerifier(client, cfg.ClientID), nil
}
