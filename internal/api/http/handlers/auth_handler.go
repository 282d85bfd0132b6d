package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/maintenance-service/internal/api/dto"
	"github.com/fixdesk/maintenance-service/internal/service"
)

// AuthHandler exposes login endpoints for sub-admins and vendors.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginSubAdmin handles POST /auth/subadmins/login.
func (h *AuthHandler) LoginSubAdmin(c *fiber.Ctx) error {
	return h.login(c, h.authService.LoginSubAdmin)
}

// LoginVendor handles POST /auth/vendors/login.
func (h *AuthHandler) LoginVendor(c *fiber.Ctx) error {
	return h.login(c, h.authService.LoginVendor)
}

func (h *AuthHandler) login(c *fiber.Ctx, fn func(ctx context.Context, email, password string) (*service.LoginResult, error)) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}
	result, err := fn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
		SubjectID: result.SubjectID,
		Role:      result.Role,
	}})
}
