package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoicer/backend/internal/infrastructure/auth"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
	"github.com/invoicer/backend/internal/interfaces/http/middleware"
)

// SessionProvider signs users in and out with the hosted auth provider
type SessionProvider interface {
	SignIn(ctx context.Context, email, password string) (*auth.SignInResult, error)
	SignOut(ctx context.Context, session *auth.Session) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	provider SessionProvider
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(provider SessionProvider) *AuthHandler {
	return &AuthHandler{
		provider: provider,
	}
}

// SignInRequest represents sign-in credentials
// @Description Email and password of an existing account
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email" example:"owner@example.com"`
	Password string `json:"password" binding:"required,min=6,max=128" example:"s3cret-pass"`
}

// SessionResponse describes the signed-in user
// @Description Current session
type SessionResponse struct {
	UserID    string     `json:"user_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email     string     `json:"email" example:"owner@example.com"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SignIn godoc
// @ID           signIn
// @Summary      Sign in
// @Description  Exchanges email and password for an access token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Credentials"
// @Success      200 {object} APIResponse[auth.SignInResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.provider.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Unauthorized(c, dto.ErrCodeInvalidCredentials, "Invalid email or password")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SignOut godoc
// @ID           signOut
// @Summary      Sign out
// @Description  Ends the current session. The token is rejected from then on.
// @Tags         auth
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/sign-out [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		h.Unauthorized(c, dto.ErrCodeNoSession, "Not signed in")
		return
	}

	if err := h.provider.SignOut(c.Request.Context(), session); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me godoc
// @ID           getCurrentSession
// @Summary      Get the current session
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		h.Unauthorized(c, dto.ErrCodeNoSession, "Not signed in")
		return
	}

	resp := SessionResponse{
		UserID: session.UserID.String(),
		Email:  session.Email,
	}
	if !session.ExpiresAt.IsZero() {
		expiresAt := session.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	h.Success(c, resp)
}
