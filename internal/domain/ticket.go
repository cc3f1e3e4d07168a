package domain

import "time"

// TicketStatus enumerates workflow states for repair tickets. The labels are
// the shop's customer-facing Italian wording and are stored verbatim.
type TicketStatus string

const (
	TicketStatusInserted       TicketStatus = "Ticket inserito"
	TicketStatusAssigning      TicketStatus = "In assegnazione al tecnico"
	TicketStatusInProgress     TicketStatus = "In lavorazione"
	TicketStatusPartsOrdered   TicketStatus = "Parti ordinate"
	TicketStatusReadyForPickup TicketStatus = "Pronto per il ritiro"
	TicketStatusClosed         TicketStatus = "Chiuso"
	TicketStatusQuoteSent      TicketStatus = "Preventivo inviato"
	TicketStatusQuoteAccepted  TicketStatus = "Preventivo accettato"
	TicketStatusRejected       TicketStatus = "Rifiutato"
)

// AllTicketStatuses lists every workflow state in workflow order.
// Transitions are not constrained: any status may follow any other.
var AllTicketStatuses = []TicketStatus{
	TicketStatusInserted,
	TicketStatusAssigning,
	TicketStatusInProgress,
	TicketStatusPartsOrdered,
	TicketStatusReadyForPickup,
	TicketStatusClosed,
	TicketStatusQuoteSent,
	TicketStatusQuoteAccepted,
	TicketStatusRejected,
}

// IsValidTicketStatus reports whether s is a known workflow state.
func IsValidTicketStatus(s TicketStatus) bool {
	for _, candidate := range AllTicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TicketPriority enumerates repair urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// IsValidTicketPriority reports whether p is a known priority.
func IsValidTicketPriority(p TicketPriority) bool {
	return p == TicketPriorityLow || p == TicketPriorityMedium || p == TicketPriorityHigh
}

// Ticket is the aggregate for device-repair requests.
type Ticket struct {
	ID            string
	TicketNumber  string
	Description   string
	Status        TicketStatus
	Priority      TicketPriority
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	DeviceType    string
	Price         *float64
	UserID        string
	AssignedTo    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
