package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken indicates the token is not a JWT and carries no readable claims.
var ErrOpaqueToken = errors.New("token is opaque")

// TokenInfo holds the claims the client can read from a gateway token.
// Nothing here is verified; it is for display only.
type TokenInfo struct {
	Subject   string
	Username  string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the token carries an expiry that has passed.
func (t *TokenInfo) IsExpired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// usernameClaims are checked in order; ASP.NET gateways use unique_name.
var usernameClaims = []string{"username", "unique_name", "preferred_username", "name"}

// ParseTokenInfo decodes the claims of a JWT bearer token without verifying
// its signature. Non-JWT tokens return ErrOpaqueToken.
func ParseTokenInfo(raw string) (*TokenInfo, error) {
	if raw == "" {
		return nil, ErrOpaqueToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrOpaqueToken
		}
		return nil, fmt.Errorf("parse token: %w", err)
	}

	info := &TokenInfo{}
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	for _, key := range usernameClaims {
		if v, ok := claims[key].(string); ok && v != "" {
			info.Username = v
			break
		}
	}
	if info.Username == "" {
		info.Username = info.Subject
	}
	return info, nil
}
