package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/infrastructure/config"
	supa "github.com/nedpals/supabase-go"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned when the hosted provider rejects a sign-in
var ErrInvalidCredentials = errors.New("invalid email or password")

// Session is a verified signed-in user
type Session struct {
	UserID    uuid.UUID
	Email     string
	Token     string
	ExpiresAt time.Time
	// RevocationKey identifies the session in the blacklist; empty for
	// sessions confirmed remotely
	RevocationKey string
}

// SignInResult is the token pair returned by the hosted provider
type SignInResult struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
}

// AuthClient is the part of the hosted auth API used here
type AuthClient interface {
	SignIn(ctx context.Context, credentials supa.UserCredentials) (*supa.AuthenticatedDetails, error)
	SignOut(ctx context.Context, userToken string) error
	User(ctx context.Context, userToken string) (*supa.User, error)
}

// Authenticator verifies sessions and passes sign-in and sign-out through to
// the hosted auth provider. Tokens are verified locally with the JWT secret
// when one is configured and remotely otherwise.
type Authenticator struct {
	client    AuthClient
	verifier  *TokenVerifier
	blacklist TokenBlacklist
	now       func() time.Time
	logger    *zap.Logger
}

// AuthenticatorOption configures an Authenticator
type AuthenticatorOption func(*Authenticator)

// WithAuthClient replaces the hosted auth client
func WithAuthClient(client AuthClient) AuthenticatorOption {
	return func(a *Authenticator) {
		a.client = client
	}
}

// WithBlacklist sets where signed-out sessions are remembered
func WithBlacklist(b TokenBlacklist) AuthenticatorOption {
	return func(a *Authenticator) {
		if b != nil {
			a.blacklist = b
		}
	}
}

// WithAuthLogger sets the logger
func WithAuthLogger(l *zap.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAuthenticator creates an Authenticator for the configured project
func NewAuthenticator(cfg config.SupabaseConfig, opts ...AuthenticatorOption) (*Authenticator, error) {
	a := &Authenticator{
		verifier:  NewTokenVerifier(cfg.JWTSecret),
		blacklist: NewInMemoryTokenBlacklist(),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		client := supa.CreateClient(cfg.URL, cfg.AnonKey)
		if client == nil {
			return nil, fmt.Errorf("failed to create supabase client for %q", cfg.URL)
		}
		a.client = client.Auth
	}
	return a, nil
}

// Verify resolves an access token to a session
func (a *Authenticator) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	if a.verifier.Enabled() {
		return a.verifyLocal(ctx, token)
	}
	return a.verifyRemote(ctx, token)
}

func (a *Authenticator) verifyLocal(ctx context.Context, token string) (*Session, error) {
	claims, err := a.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	key := claims.RevocationKey()
	if key != "" {
		revoked, err := a.blacklist.IsBlacklisted(ctx, key)
		if err != nil {
			a.logger.Warn("Token blacklist unavailable", zap.Error(err))
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrInvalidClaims
	}
	return &Session{
		UserID:        userID,
		Email:         claims.Email,
		Token:         token,
		ExpiresAt:     claims.GetExpiresAtTime(),
		RevocationKey: key,
	}, nil
}

func (a *Authenticator) verifyRemote(ctx context.Context, token string) (*Session, error) {
	user, err := a.client.User(ctx, token)
	if err != nil {
		a.logger.Debug("Remote session lookup failed", zap.Error(err))
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, ErrInvalidClaims
	}
	return &Session{UserID: userID, Email: user.Email, Token: token}, nil
}

// SignIn exchanges email and password for a token pair
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	details, err := a.client.SignIn(ctx, supa.UserCredentials{Email: email, Password: password})
	if err != nil {
		a.logger.Info("Sign-in rejected", zap.String("email", email), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	return &SignInResult{
		AccessToken:  details.AccessToken,
		RefreshToken: details.RefreshToken,
		TokenType:    details.TokenType,
		ExpiresAt:    a.now().Add(time.Duration(details.ExpiresIn) * time.Second),
		UserID:       details.User.ID,
		Email:        details.User.Email,
	}, nil
}

// SignOut ends the session at the provider and blacklists it locally until
// its token would have expired
func (a *Authenticator) SignOut(ctx context.Context, session *Session) error {
	if err := a.client.SignOut(ctx, session.Token); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	if session.RevocationKey == "" {
		return nil
	}
	ttl := session.ExpiresAt.Sub(a.now())
	if err := a.blacklist.AddToBlacklist(ctx, session.RevocationKey, ttl); err != nil {
		a.logger.Warn("Failed to blacklist signed-out session", zap.Error(err))
	}
	return nil
}
