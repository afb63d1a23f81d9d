package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/czarnick89/workout-tracker/internal/service"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"omitempty,email,max=254"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is shared by token refresh and logout.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AccessTokenResponse struct {
	Access string `json:"access"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} ErrorEnvelope "Validation error (including a taken username)"
// @Router /auth/register/ [post]
func (h *AuthHandler) Register(c *gin.Context) error {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if _, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		return err
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "User registered successfully"})
	return nil
}

// Login godoc
// @Summary Obtain an access/refresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} TokenPairResponse
// @Failure 400 {object} ErrorEnvelope
// @Failure 401 {object} ErrorEnvelope "Invalid credentials"
// @Router /auth/token/ [post]
func (h *AuthHandler) Login(c *gin.Context) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, TokenPairResponse{Access: pair.Access, Refresh: pair.Refresh})
	return nil
}

// Refresh godoc
// @Summary Exchange a refresh token for a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param token body RefreshRequest true "Refresh token"
// @Success 200 {object} AccessTokenResponse
// @Failure 400 {object} ErrorEnvelope
// @Failure 401 {object} ErrorEnvelope "Invalid, expired or revoked token"
// @Router /auth/token/refresh/ [post]
func (h *AuthHandler) Refresh(c *gin.Context) error {
	var req RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	access, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return service.ErrAuthenticationFailed
		}
		return err
	}

	c.JSON(http.StatusOK, AccessTokenResponse{Access: access})
	return nil
}

// Logout godoc
// @Summary Revoke a refresh token
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param token body RefreshRequest true "Refresh token to revoke"
// @Success 205 {object} DetailResponse
// @Failure 400 {object} ErrorEnvelope "Missing or invalid refresh token"
// @Failure 401 {object} ErrorEnvelope
// @Router /auth/logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request.Context(), userID, req.Refresh); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return validation.Errors{"refresh": {"Invalid token"}}
		}
		return err
	}

	c.JSON(http.StatusResetContent, DetailResponse{Detail: "Logout successful"})
	return nil
}
