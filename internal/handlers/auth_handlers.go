package handlers

import (
	"errors"
	"net/http"

	"casaops/internal/common"
	"casaops/internal/repositories"
	"casaops/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthHandlers struct {
	authService services.AuthServiceInterface
	userRepo    repositories.UserRepository
}

func NewAuthHandlers(authService services.AuthServiceInterface, userRepo repositories.UserRepository) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Signup registers a user. Omitting tenant_id creates a new tenant with
// this user as its owner.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		TenantID string `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenantID := uuid.Nil
	if req.TenantID != "" {
		parsed, err := common.ValidateUUID(req.TenantID, "tenant_id")
		if err != nil {
			return common.SendValidationError(c, "tenant_id", err.Error())
		}
		tenantID = parsed
	}

	user, token, err := h.authService.Signup(ctx, req.Email, req.Password, req.Name, tenantID)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Login authenticates with email and password.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendClientError(c, "Email and password are required")
	}

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return common.SendUnauthorizedError(c)
		}
		return common.SendServerError(c, "Login failed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}

	return c.JSON(http.StatusOK, user)
}
