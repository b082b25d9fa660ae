package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthenticatedAudience is the audience of tokens issued to signed-in users
const AuthenticatedAudience = "authenticated"

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing sub in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims are the claims of a hosted-auth access token
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// TokenVerifier checks HS256 access tokens against the project's JWT secret
type TokenVerifier struct {
	secret []byte
	leeway time.Duration
}

// NewTokenVerifier creates a TokenVerifier. An empty secret disables local
// verification.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), leeway: 30 * time.Second}
}

// Enabled reports whether a secret is configured
func (v *TokenVerifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify validates the signature, expiry and audience of an access token
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	},
		jwt.WithAudience(AuthenticatedAudience),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Subject == "" {
		return nil, ErrMissingUserID
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// GetUserUUID parses the subject as the user id
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// RevocationKey identifies the token in the revocation list: the session id
// when present, otherwise the token id
func (c *Claims) RevocationKey() string {
	if c.SessionID != "" {
		return c.SessionID
	}
	return c.ID
}

// GetExpiresAtTime returns the token's expiration time as time.Time
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
