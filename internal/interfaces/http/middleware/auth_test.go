package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/infrastructure/auth"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockSessionVerifier struct {
	mock.Mock
}

func (m *MockSessionVerifier) Verify(ctx context.Context, token string) (*auth.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func newAuthRouter(verifier SessionVerifier, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(SessionAuth(verifier, log))
	router.GET("/me", func(c *gin.Context) {
		session := GetSession(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":     GetUserID(c).String(),
			"has_session": session != nil,
			"log_user_id": logger.GetUserID(c.Request.Context()),
		})
	})
	return router
}

func TestSessionAuth(t *testing.T) {
	userID := uuid.New()

	t.Run("anonymous request continues without session", func(t *testing.T) {
		verifier := new(MockSessionVerifier)
		router := newAuthRouter(verifier, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, uuid.Nil.String(), body["user_id"])
		assert.Equal(t, false, body["has_session"])
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("valid token attaches the session", func(t *testing.T) {
		verifier := new(MockSessionVerifier)
		verifier.On("Verify", mock.Anything, "good-token").Return(&auth.Session{
			UserID:    userID,
			Email:     "owner@example.com",
			Token:     "good-token",
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)
		router := newAuthRouter(verifier, nil)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set(AuthHeaderKey, "Bearer good-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, true, body["has_session"])
		assert.Equal(t, userID.String(), body["log_user_id"])
		verifier.AssertExpectations(t)
	})

	t.Run("rejects a non-bearer header", func(t *testing.T) {
		verifier := new(MockSessionVerifier)
		router := newAuthRouter(verifier, nil)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeTokenInvalid)
	})

	t.Run("maps verification errors to token codes", func(t *testing.T) {
		tests := []struct {
			name    string
			err     error
			code    string
			message string
		}{
			{"expired", auth.ErrExpiredToken, dto.ErrCodeTokenExpired, "Token has expired"},
			{"revoked", auth.ErrTokenRevoked, dto.ErrCodeTokenInvalid, "Token has been revoked"},
			{"invalid", auth.ErrInvalidToken, dto.ErrCodeTokenInvalid, "Invalid token"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				core, logs := observer.New(zap.InfoLevel)
				verifier := new(MockSessionVerifier)
				verifier.On("Verify", mock.Anything, "bad-token").Return(nil, tt.err)
				router := newAuthRouter(verifier, zap.New(core))

				req := httptest.NewRequest("GET", "/me", nil)
				req.Header.Set(AuthHeaderKey, "Bearer bad-token")
				req.Header.Set(RequestIDHeader, "req-auth")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				require.Equal(t, http.StatusUnauthorized, w.Code)
				var resp dto.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.code, resp.Error.Code)
				assert.Equal(t, tt.message, resp.Error.Message)
				assert.Equal(t, "req-auth", resp.Error.RequestID)
				assert.Equal(t, 1, logs.FilterMessage("Session rejected").Len())
			})
		}
	})
}

func TestGetUserID_WrongType(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(UserIDKey, "not-a-uuid")

	assert.Equal(t, uuid.Nil, GetUserID(c))
	assert.Nil(t, GetSession(c))
}
