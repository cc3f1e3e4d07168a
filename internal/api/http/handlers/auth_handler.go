package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/flashmac/repair-tracker/internal/api/dto"
	"github.com/flashmac/repair-tracker/internal/service"
	apperrors "github.com/flashmac/repair-tracker/pkg/util"
)

// AuthHandler manages staff authentication endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		Email:     user.Email,
		Role:      string(user.Role),
	}})
}
