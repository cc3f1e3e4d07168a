package events

import (
	"time"

	"github.com/flashmac/repair-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services. Payloads carry a
// snapshot of the ticket as persisted, so handlers never re-read state that
// the triggering request might still be mutating.
type Event struct {
	ID        string
	Type      EventType
	TicketID  string
	Timestamp time.Time
	Payload   interface{}
}

// TicketCreatedPayload carries the persisted ticket.
type TicketCreatedPayload struct {
	Ticket domain.Ticket
}

// TicketStatusChangedPayload carries the updated ticket and the status it
// held before the update.
type TicketStatusChangedPayload struct {
	Ticket    domain.Ticket
	OldStatus domain.TicketStatus
}
