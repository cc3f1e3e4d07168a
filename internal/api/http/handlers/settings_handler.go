package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/flashmac/repair-tracker/internal/api/dto"
	"github.com/flashmac/repair-tracker/internal/repository"
	apperrors "github.com/flashmac/repair-tracker/pkg/util"
)

// SettingsHandler manages key-value settings endpoints.
type SettingsHandler struct {
	settings repository.SettingsRepository
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSetting GET /settings/:key. Absent keys return an empty value rather
// than 404; callers treat absence as "feature disabled".
func (h *SettingsHandler) GetSetting(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("key"))
	if key == "" {
		return apperrors.NewValidationError("key required", nil)
	}
	value, err := h.settings.Get(c.Context(), key)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SettingResponse{Key: key, Value: value}})
}

// UpdateSetting PUT /settings/:key.
func (h *SettingsHandler) UpdateSetting(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("key"))
	if key == "" {
		return apperrors.NewValidationError("key required", nil)
	}
	var req dto.UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.settings.Set(c.Context(), key, req.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SettingResponse{Key: key, Value: req.Value}})
}
