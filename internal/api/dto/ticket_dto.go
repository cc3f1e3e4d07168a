package dto

import (
	"time"

	"github.com/flashmac/repair-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Description   string                `json:"description"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	CustomerName  string                `json:"customer_name"`
	CustomerEmail string                `json:"customer_email"`
	CustomerPhone *string               `json:"customer_phone"`
	DeviceType    string                `json:"device_type"`
	Price         *float64              `json:"price"`
	AssignedTo    *string               `json:"assigned_to"`
}

// CreateTicketResponse returns the identity of a new ticket.
type CreateTicketResponse struct {
	ID           string `json:"id"`
	TicketNumber string `json:"ticket_number"`
}

// UpdateTicketRequest is a partial patch; absent fields are left untouched.
type UpdateTicketRequest struct {
	Description   *string                `json:"description"`
	Status        *domain.TicketStatus   `json:"status"`
	Priority      *domain.TicketPriority `json:"priority"`
	CustomerName  *string                `json:"customer_name"`
	CustomerEmail *string                `json:"customer_email"`
	CustomerPhone *string                `json:"customer_phone"`
	DeviceType    *string                `json:"device_type"`
	Price         *float64               `json:"price"`
	AssignedTo    *string                `json:"assigned_to"`
}

// TicketResponse is the staff-facing ticket view.
type TicketResponse struct {
	ID            string                `json:"id"`
	TicketNumber  string                `json:"ticket_number"`
	Description   string                `json:"description"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	CustomerName  string                `json:"customer_name"`
	CustomerEmail string                `json:"customer_email"`
	CustomerPhone *string               `json:"customer_phone"`
	DeviceType    string                `json:"device_type"`
	Price         *float64              `json:"price"`
	UserID        string                `json:"user_id"`
	AssignedTo    *string               `json:"assigned_to"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// PublicTicketResponse is the reduced customer-facing view served without
// authentication; it exposes no contact details or pricing.
type PublicTicketResponse struct {
	TicketNumber string              `json:"ticket_number"`
	Status       domain.TicketStatus `json:"status"`
	DeviceType   string              `json:"device_type"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// SweepResponse reports the stale-ticket sweep outcome.
type SweepResponse struct {
	Delivered bool `json:"delivered"`
}
