package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/flashmac/repair-tracker/internal/api/dto"
	"github.com/flashmac/repair-tracker/internal/auth"
	"github.com/flashmac/repair-tracker/internal/domain"
	"github.com/flashmac/repair-tracker/internal/repository"
	"github.com/flashmac/repair-tracker/internal/service"
	apperrors "github.com/flashmac/repair-tracker/pkg/util"
)

// TicketsHandler manages staff ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("staff user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.DeviceType) == "" {
		return apperrors.NewValidationError("customer_name and device_type required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), service.TicketCreateInput{
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		DeviceType:    req.DeviceType,
		Price:         req.Price,
		UserID:        principal.User.ID,
		AssignedTo:    req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CreateTicketResponse{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
	}})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	sort := repository.TicketSort{
		Field:     c.Query("sort", "created_at"),
		Ascending: c.Query("order", "desc") == "asc",
	}
	tickets, err := h.service.ListTickets(c.Context(), sort)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.Context(), c.Params("id"), service.TicketUpdateInput{
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		DeviceType:    req.DeviceType,
		Price:         req.Price,
		AssignedTo:    req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SweepStaleTickets POST /notifications/sweep.
func (h *TicketsHandler) SweepStaleTickets(c *fiber.Ctx) error {
	delivered := h.service.SweepStaleTickets(c.Context())
	return c.JSON(fiber.Map{"data": dto.SweepResponse{Delivered: delivered}})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:            ticket.ID,
		TicketNumber:  ticket.TicketNumber,
		Description:   ticket.Description,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		CustomerName:  ticket.CustomerName,
		CustomerEmail: ticket.CustomerEmail,
		CustomerPhone: ticket.CustomerPhone,
		DeviceType:    ticket.DeviceType,
		Price:         ticket.Price,
		UserID:        ticket.UserID,
		AssignedTo:    ticket.AssignedTo,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}
