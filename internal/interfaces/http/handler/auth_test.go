package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/infrastructure/auth"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
	"github.com/invoicer/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSessionProvider is a mock implementation of SessionProvider
type MockSessionProvider struct {
	mock.Mock
}

func (m *MockSessionProvider) SignIn(ctx context.Context, email, password string) (*auth.SignInResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.SignInResult), args.Error(1)
}

func (m *MockSessionProvider) SignOut(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func setupAuthRouter(provider SessionProvider) *gin.Engine {
	verifier := &stubVerifier{sessions: map[string]*auth.Session{
		ownerToken: {UserID: ownerID, Email: "owner@example.com", Token: ownerToken, ExpiresAt: fixedNow.Add(time.Hour)},
	}}

	h := NewAuthHandler(provider)
	r := gin.New()
	r.Use(middleware.SessionAuth(verifier, zap.NewNop()))
	r.POST("/auth/sign-in", h.SignIn)
	r.POST("/auth/sign-out", h.SignOut)
	r.GET("/auth/me", h.Me)
	return r
}

func TestAuthHandler_SignIn(t *testing.T) {
	t.Run("returns the token pair", func(t *testing.T) {
		provider := new(MockSessionProvider)
		provider.On("SignIn", mock.Anything, "owner@example.com", "s3cret-pass").Return(&auth.SignInResult{
			AccessToken: "access",
			TokenType:   "bearer",
			UserID:      ownerID.String(),
			Email:       "owner@example.com",
		}, nil)
		env := &testEnv{router: setupAuthRouter(provider)}

		w := env.do(t, http.MethodPost, "/auth/sign-in", "", SignInRequest{Email: "owner@example.com", Password: "s3cret-pass"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "access", decode[auth.SignInResult](t, w).Data.AccessToken)
		provider.AssertExpectations(t)
	})

	t.Run("rejected credentials give 401", func(t *testing.T) {
		provider := new(MockSessionProvider)
		provider.On("SignIn", mock.Anything, "owner@example.com", "wrong-pass").Return(nil, auth.ErrInvalidCredentials)
		env := &testEnv{router: setupAuthRouter(provider)}

		w := env.do(t, http.MethodPost, "/auth/sign-in", "", SignInRequest{Email: "owner@example.com", Password: "wrong-pass"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidCredentials, decode[any](t, w).Error.Code)
	})

	t.Run("validates the email", func(t *testing.T) {
		provider := new(MockSessionProvider)
		env := &testEnv{router: setupAuthRouter(provider)}

		w := env.do(t, http.MethodPost, "/auth/sign-in", "", SignInRequest{Email: "owner", Password: "s3cret-pass"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		provider.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_SignOut(t *testing.T) {
	t.Run("ends the current session", func(t *testing.T) {
		provider := new(MockSessionProvider)
		provider.On("SignOut", mock.Anything, mock.MatchedBy(func(s *auth.Session) bool {
			return s.UserID == ownerID && s.Token == ownerToken
		})).Return(nil)
		env := &testEnv{router: setupAuthRouter(provider)}

		w := env.do(t, http.MethodPost, "/auth/sign-out", ownerToken, nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		provider.AssertExpectations(t)
	})

	t.Run("requires a session", func(t *testing.T) {
		env := &testEnv{router: setupAuthRouter(new(MockSessionProvider))}

		w := env.do(t, http.MethodPost, "/auth/sign-out", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeNoSession, decode[any](t, w).Error.Code)
	})

	t.Run("provider failure is a 500", func(t *testing.T) {
		provider := new(MockSessionProvider)
		provider.On("SignOut", mock.Anything, mock.Anything).Return(errors.New("provider down"))
		env := &testEnv{router: setupAuthRouter(provider)}

		w := env.do(t, http.MethodPost, "/auth/sign-out", ownerToken, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "provider down")
	})
}

func TestAuthHandler_Me(t *testing.T) {
	r := setupAuthRouter(new(MockSessionProvider))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[SessionResponse](t, w)
	assert.Equal(t, ownerID.String(), resp.Data.UserID)
	assert.Equal(t, "owner@example.com", resp.Data.Email)
	require.NotNil(t, resp.Data.ExpiresAt)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, decode[any](t, w).Error.Code)
}
