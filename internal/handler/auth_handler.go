package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"authdesk/internal/auth"
	"authdesk/internal/errors"
	"authdesk/internal/service"
)

// ClaimsContextKey is where the JWT middleware stores validated *auth.Claims.
const ClaimsContextKey = "user"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a signup form submission.
type SignupRequest struct {
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// LoginRequest represents a login form submission.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup form"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return badBody()
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "signup", errors.ErrMissingFields, errors.MsgSignupInternal)
	}

	result, err := h.authService.Signup(c.Request().Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		return h.fail(c, "signup", err, errors.MsgSignupInternal)
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		ID:    result.ID.String(),
		Email: result.Email,
		Token: result.Token,
	})
}

// Login godoc
// @Summary Verify credentials
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody()
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "login", errors.ErrMissingFields, errors.MsgLoginInternal)
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, "login", err, errors.MsgLoginInternal)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		ID:    result.ID.String(),
		Email: result.Email,
		Token: result.Token,
	})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authService.Me(c.Request().Context(), claimsFrom(c))
	if err != nil {
		return h.fail(c, "me", err, errors.MsgLoginInternal)
	}
	return c.JSON(http.StatusOK, AuthResponse{ID: user.ID.String(), Email: user.Email})
}

// Logout godoc
// @Summary Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), claimsFrom(c)); err != nil {
		return h.fail(c, "logout", err, errors.MsgLoginInternal)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

// fail maps err to a JSON error response. Internal causes are logged, never returned.
func (h *AuthHandler) fail(c echo.Context, op string, err error, internalMsg string) error {
	httpErr := errors.MapErrorToHTTP(err, internalMsg)
	if errors.IsInternal(err) {
		c.Logger().Errorf("error in %s handler: %v", op, err)
	}
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badBody() error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_BODY",
	})
}

func claimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ClaimsContextKey).(*auth.Claims)
	return claims
}
