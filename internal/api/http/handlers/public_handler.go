package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/flashmac/repair-tracker/internal/api/dto"
	"github.com/flashmac/repair-tracker/internal/domain"
	"github.com/flashmac/repair-tracker/internal/service"
	apperrors "github.com/flashmac/repair-tracker/pkg/util"
)

// PublicHandler serves the unauthenticated customer surface: ticket intake
// and the status view linked from notification emails.
type PublicHandler struct {
	service *service.TicketService
}

// NewPublicHandler constructs handler.
func NewPublicHandler(ticketService *service.TicketService) *PublicHandler {
	return &PublicHandler{service: ticketService}
}

// CreateTicket POST /public/tickets.
func (h *PublicHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerEmail) == "" || strings.TrimSpace(req.DeviceType) == "" {
		return apperrors.NewValidationError("customer_name, customer_email, device_type required", nil)
	}

	// Public submissions always start at the beginning of the workflow.
	ticket, err := h.service.CreateTicket(c.Context(), service.TicketCreateInput{
		Description:   req.Description,
		Status:        domain.TicketStatusInserted,
		Priority:      domain.TicketPriorityMedium,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		DeviceType:    req.DeviceType,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CreateTicketResponse{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
	}})
}

// GetTicket GET /public/tickets/:id.
func (h *PublicHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PublicTicketResponse{
		TicketNumber: ticket.TicketNumber,
		Status:       ticket.Status,
		DeviceType:   ticket.DeviceType,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}})
}
