package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flashmac/repair-tracker/internal/domain"
	"github.com/flashmac/repair-tracker/internal/events"
	"github.com/flashmac/repair-tracker/internal/repository"
)

// SweepRecorder stores bookkeeping about sweep runs.
type SweepRecorder interface {
	RecordStaleSweep(ctx context.Context, at time.Time) error
}

// TicketService coordinates ticket workflows. Mutations persist first and
// publish lifecycle events afterwards; notification outcome never affects
// the mutation result.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	notifier   *NotificationService
	sweeps     SweepRecorder
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	Dispatcher    events.Dispatcher
	Notifier      *NotificationService
	SweepRecorder SweepRecorder
	Logger        *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Description   string
	Status        domain.TicketStatus
	Priority      domain.TicketPriority
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	DeviceType    string
	Price         *float64
	UserID        string
	AssignedTo    *string
}

// TicketUpdateInput is a partial patch; nil fields are left untouched.
type TicketUpdateInput struct {
	Description   *string
	Status        *domain.TicketStatus
	Priority      *domain.TicketPriority
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	DeviceType    *string
	Price         *float64
	AssignedTo    *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		sweeps:     deps.SweepRecorder,
		logger:     deps.Logger,
	}
}

// CreateTicket persists a new repair ticket and fires the new-ticket
// notification without awaiting it. The returned identity is available as
// soon as the write is acknowledged.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		TicketNumber:  generateTicketNumber(time.Now()),
		Description:   strings.TrimSpace(input.Description),
		Status:        input.Status,
		Priority:      input.Priority,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		CustomerPhone: input.CustomerPhone,
		DeviceType:    strings.TrimSpace(input.DeviceType),
		Price:         input.Price,
		UserID:        input.UserID,
		AssignedTo:    input.AssignedTo,
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusInserted
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if !domain.IsValidTicketStatus(ticket.Status) {
		return nil, errors.New("unknown ticket status")
	}
	if !domain.IsValidTicketPriority(ticket.Priority) {
		return nil, errors.New("unknown ticket priority")
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{Ticket: *ticket},
	})
	return ticket, nil
}

// UpdateTicket applies a partial patch. When the patch carries a status that
// differs from the stored one, the post-update record is re-read and a
// status-changed event is fired in the same detached fashion as creation.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, patch TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := ticket.Status

	if patch.Description != nil {
		ticket.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if !domain.IsValidTicketStatus(*patch.Status) {
			return nil, errors.New("unknown ticket status")
		}
		ticket.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !domain.IsValidTicketPriority(*patch.Priority) {
			return nil, errors.New("unknown ticket priority")
		}
		ticket.Priority = *patch.Priority
	}
	if patch.CustomerName != nil {
		ticket.CustomerName = strings.TrimSpace(*patch.CustomerName)
	}
	if patch.CustomerEmail != nil {
		ticket.CustomerEmail = strings.TrimSpace(*patch.CustomerEmail)
	}
	if patch.CustomerPhone != nil {
		ticket.CustomerPhone = patch.CustomerPhone
	}
	if patch.DeviceType != nil {
		ticket.DeviceType = strings.TrimSpace(*patch.DeviceType)
	}
	if patch.Price != nil {
		ticket.Price = patch.Price
	}
	if patch.AssignedTo != nil {
		ticket.AssignedTo = patch.AssignedTo
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status != oldStatus {
		updated, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			s.logger.Error("failed to re-read ticket after status change", zap.String("ticket_id", id), zap.Error(err))
			return ticket, nil
		}
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: updated.ID,
			Payload:  events.TicketStatusChangedPayload{Ticket: *updated, OldStatus: oldStatus},
		})
		return updated, nil
	}
	return ticket, nil
}

// GetTicket fetches a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// ListTickets returns all tickets in the requested order.
func (s *TicketService) ListTickets(ctx context.Context, sort repository.TicketSort) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, sort)
}

// DeleteTicket removes a ticket permanently.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	return s.tickets.Delete(ctx, id)
}

// SweepStaleTickets runs the stale-ticket digest once and reports whether a
// digest was delivered. Scheduling is the caller's concern.
func (s *TicketService) SweepStaleTickets(ctx context.Context) bool {
	delivered := s.notifier.NotifyStaleTickets(ctx)
	if s.sweeps != nil {
		if err := s.sweeps.RecordStaleSweep(ctx, time.Now()); err != nil {
			s.logger.Warn("failed to record sweep time", zap.Error(err))
		}
	}
	return delivered
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// generateTicketNumber builds a human-readable number of the shape
// FM-<year>-<month>-<random 4 digits>. The suffix is not checked for
// uniqueness; collisions are an accepted weakness of the scheme.
func generateTicketNumber(now time.Time) string {
	return fmt.Sprintf("FM-%d-%02d-%04d", now.Year(), int(now.Month()), rand.Intn(10000))
}
