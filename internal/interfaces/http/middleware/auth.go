package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/infrastructure/auth"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionKey    = "auth_session"
	UserIDKey     = "auth_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// SessionVerifier resolves a bearer token to a signed-in session
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Session, error)
}

// SessionAuth attaches the signed-in session to the request when a bearer
// token is present. Requests without a token continue anonymously so the
// services can answer with their own no-session error; a token that fails
// verification is rejected with 401.
func SessionAuth(verifier SessionVerifier, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		session, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, log, err, "Token verification failed")
			return
		}

		c.Set(SessionKey, session)
		c.Set(UserIDKey, session.UserID)

		ctx := logger.WithUserID(c.Request.Context(), session.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// abortUnauthorized ends the request with a 401 naming the token problem
func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, reason string) {
	logger.WithFallback(c.Request.Context(), log).Info("Session rejected",
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)

	code := dto.ErrCodeTokenInvalid
	message := "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		message = "Token has been revoked"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetSession returns the signed-in session, or nil for anonymous requests
func GetSession(c *gin.Context) *auth.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*auth.Session); ok {
			return s
		}
	}
	return nil
}

// GetUserID returns the signed-in user id, or uuid.Nil for anonymous requests
func GetUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
