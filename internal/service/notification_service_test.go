package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flashmac/repair-tracker/internal/domain"
	"github.com/flashmac/repair-tracker/internal/mail"
	"github.com/flashmac/repair-tracker/internal/repository"
)

type fakeSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeSettings(values map[string]string) *fakeSettings {
	if values == nil {
		values = map[string]string{}
	}
	return &fakeSettings{values: values}
}

func (f *fakeSettings) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key], nil
}

func (f *fakeSettings) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	seq     int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	now := time.Now()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (f *fakeTicketRepo) List(_ context.Context, _ repository.TicketSort) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		result = append(result, ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) ListOpenCreatedBefore(_ context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.CreatedAt.Before(cutoff) && ticket.Status != domain.TicketStatusClosed {
			result = append(result, ticket)
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tickets, id)
	return nil
}

type fakeGateway struct {
	mu      sync.Mutex
	sent    []mail.Message
	results []bool
	failAll bool
	panics  bool
}

func (g *fakeGateway) Send(_ context.Context, msg mail.Message) bool {
	if g.panics {
		panic("gateway exploded")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg)
	if len(g.results) > 0 {
		result := g.results[0]
		g.results = g.results[1:]
		return result
	}
	return !g.failAll
}

func (g *fakeGateway) messages() []mail.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]mail.Message{}, g.sent...)
}

func newNotifier(settings *fakeSettings, tickets *fakeTicketRepo, gateway *fakeGateway) *NotificationService {
	return NewNotificationService(settings, tickets, gateway, "https://shop.example.com", zap.NewNop())
}

func sampleTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:            "ticket-1",
		TicketNumber:  "FM-2026-08-0042",
		Description:   "screen flickers",
		Status:        domain.TicketStatusInserted,
		Priority:      domain.TicketPriorityMedium,
		CustomerName:  "Jane",
		CustomerEmail: "jane@example.com",
		DeviceType:    "Laptop",
	}
}

func TestNotifyNewTicketDisabled(t *testing.T) {
	for name, values := range map[string]map[string]string{
		"flag absent":   {domain.SettingEmailAdminAddress: "ops@example.com"},
		"flag falsy":    {domain.SettingEmailNewTicket: "false", domain.SettingEmailAdminAddress: "ops@example.com"},
		"flag not true": {domain.SettingEmailNewTicket: "yes", domain.SettingEmailAdminAddress: "ops@example.com"},
		"no admin":      {domain.SettingEmailNewTicket: "true"},
	} {
		t.Run(name, func(t *testing.T) {
			gateway := &fakeGateway{}
			notifier := newNotifier(newFakeSettings(values), newFakeTicketRepo(), gateway)

			assert.False(t, notifier.NotifyNewTicket(context.Background(), sampleTicket()))
			assert.Empty(t, gateway.messages(), "gateway must not be invoked")
		})
	}
}

func TestNotifyNewTicketSendsToAdmin(t *testing.T) {
	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailNewTicket:    "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	})
	notifier := newNotifier(settings, newFakeTicketRepo(), gateway)

	require.True(t, notifier.NotifyNewTicket(context.Background(), sampleTicket()))

	msgs := gateway.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ops@example.com", msgs[0].To)
	assert.Equal(t, "New Repair Ticket: FM-2026-08-0042", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "Jane")
	assert.Contains(t, msgs[0].Body, "Laptop")
	assert.Contains(t, msgs[0].Body, "https://shop.example.com/tickets/ticket-1")
}

func TestNotifyStatusChangeSendsTwoMessages(t *testing.T) {
	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailStatusChange: "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	})
	notifier := newNotifier(settings, newFakeTicketRepo(), gateway)

	ticket := sampleTicket()
	ticket.Status = domain.TicketStatusInProgress
	require.True(t, notifier.NotifyStatusChange(context.Background(), ticket, domain.TicketStatusInserted))

	msgs := gateway.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "ops@example.com", msgs[0].To)
	assert.Contains(t, msgs[0].Body, "Ticket inserito")
	assert.Contains(t, msgs[0].Body, "In lavorazione")
	assert.Equal(t, "jane@example.com", msgs[1].To)
	assert.Contains(t, msgs[1].Body, "In lavorazione")
	assert.Contains(t, msgs[1].Body, "https://shop.example.com/public/tickets/ticket-1")
}

func TestNotifyStatusChangeBestEffortOr(t *testing.T) {
	settings := map[string]string{
		domain.SettingEmailStatusChange: "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	}

	// Admin copy fails, customer copy succeeds.
	gateway := &fakeGateway{results: []bool{false, true}}
	notifier := newNotifier(newFakeSettings(settings), newFakeTicketRepo(), gateway)
	assert.True(t, notifier.NotifyStatusChange(context.Background(), sampleTicket(), domain.TicketStatusInserted))

	// Both copies fail.
	gateway = &fakeGateway{failAll: true}
	notifier = newNotifier(newFakeSettings(settings), newFakeTicketRepo(), gateway)
	assert.False(t, notifier.NotifyStatusChange(context.Background(), sampleTicket(), domain.TicketStatusInserted))
	assert.Len(t, gateway.messages(), 2, "both sends are attempted independently")
}

func TestNotifyStatusChangeRequiresAdminAddress(t *testing.T) {
	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{domain.SettingEmailStatusChange: "true"})
	notifier := newNotifier(settings, newFakeTicketRepo(), gateway)

	assert.False(t, notifier.NotifyStatusChange(context.Background(), sampleTicket(), domain.TicketStatusInserted))
	assert.Empty(t, gateway.messages())
}

func TestNotifyStaleTicketsThreshold(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := newFakeTicketRepo()
	seed := func(number string, age time.Duration, status domain.TicketStatus) {
		ticket := &domain.Ticket{
			TicketNumber: number,
			Status:       status,
			CustomerName: "Jane",
			CreatedAt:    now.Add(-age),
		}
		require.NoError(t, repo.Create(context.Background(), ticket))
	}
	seed("FM-2026-08-0001", 8*24*time.Hour, domain.TicketStatusInProgress) // stale
	seed("FM-2026-08-0002", 8*24*time.Hour, domain.TicketStatusClosed)     // closed, excluded
	seed("FM-2026-08-0003", 5*24*time.Hour, domain.TicketStatusInserted)   // too recent

	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailOldTickets:     "true",
		domain.SettingEmailAdminAddress:   "ops@example.com",
		domain.SettingEmailOldTicketsDays: "7",
	})
	notifier := newNotifier(settings, repo, gateway)
	notifier.now = func() time.Time { return now }

	require.True(t, notifier.NotifyStaleTickets(context.Background()))

	msgs := gateway.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ops@example.com", msgs[0].To)
	assert.Equal(t, "1 Tickets Pending for More Than 7 Days", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "FM-2026-08-0001")
	assert.NotContains(t, msgs[0].Body, "FM-2026-08-0002")
	assert.NotContains(t, msgs[0].Body, "FM-2026-08-0003")
}

func TestNotifyStaleTicketsNothingToReport(t *testing.T) {
	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailOldTickets:   "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	})
	notifier := newNotifier(settings, newFakeTicketRepo(), gateway)

	assert.False(t, notifier.NotifyStaleTickets(context.Background()))
	assert.Empty(t, gateway.messages())
}

func TestNotifyStaleTicketsDefaultDays(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := newFakeTicketRepo()
	require.NoError(t, repo.Create(context.Background(), &domain.Ticket{
		TicketNumber: "FM-2026-08-0010",
		Status:       domain.TicketStatusInserted,
		CreatedAt:    now.Add(-8 * 24 * time.Hour),
	}))

	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailOldTickets:     "true",
		domain.SettingEmailAdminAddress:   "ops@example.com",
		domain.SettingEmailOldTicketsDays: "not-a-number",
	})
	notifier := newNotifier(settings, repo, gateway)
	notifier.now = func() time.Time { return now }

	require.True(t, notifier.NotifyStaleTickets(context.Background()))
	require.Len(t, gateway.messages(), 1)
	assert.Contains(t, gateway.messages()[0].Subject, "More Than 7 Days")
}

func TestNotificationPanicIsSwallowed(t *testing.T) {
	gateway := &fakeGateway{panics: true}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailNewTicket:    "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	})
	notifier := newNotifier(settings, newFakeTicketRepo(), gateway)

	assert.NotPanics(t, func() {
		assert.False(t, notifier.NotifyNewTicket(context.Background(), sampleTicket()))
	})
}
