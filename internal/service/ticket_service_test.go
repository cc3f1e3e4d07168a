package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flashmac/repair-tracker/internal/domain"
	"github.com/flashmac/repair-tracker/internal/events"
)

var ticketNumberPattern = regexp.MustCompile(`^FM-\d{4}-\d{2}-\d{4}$`)

func newTicketServiceFixture(gateway *fakeGateway, settings *fakeSettings) (*TicketService, *fakeTicketRepo) {
	repo := newFakeTicketRepo()
	notifier := newNotifier(settings, repo, gateway)
	dispatcher := events.NewAsyncDispatcher()
	notifier.RegisterHandlers(dispatcher)

	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Dispatcher: dispatcher,
		Notifier:   notifier,
		Logger:     zap.NewNop(),
	})
	return svc, repo
}

func TestGenerateTicketNumberShape(t *testing.T) {
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		number := generateTicketNumber(now)
		assert.Regexp(t, ticketNumberPattern, number)
		assert.Contains(t, number, "FM-2026-03-")
	}
}

func TestCreateTicketDefaultsAndIdentity(t *testing.T) {
	svc, _ := newTicketServiceFixture(&fakeGateway{}, newFakeSettings(nil))

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		CustomerName:  "Jane",
		CustomerEmail: "jane@example.com",
		DeviceType:    "Laptop",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Regexp(t, ticketNumberPattern, ticket.TicketNumber)
	assert.Equal(t, domain.TicketStatusInserted, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
}

func TestCreateTicketRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTicketServiceFixture(&fakeGateway{}, newFakeSettings(nil))

	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		CustomerName: "Jane",
		DeviceType:   "Laptop",
		Status:       domain.TicketStatus("Unknown"),
	})
	require.Error(t, err)
}

func TestCreateTicketSucceedsWhenDeliveryFails(t *testing.T) {
	gateway := &fakeGateway{failAll: true}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailNewTicket:    "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	})
	svc, _ := newTicketServiceFixture(gateway, settings)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		CustomerName:  "Jane",
		CustomerEmail: "jane@example.com",
		DeviceType:    "Laptop",
	})
	require.NoError(t, err, "creation success is independent of notification outcome")
	assert.Regexp(t, ticketNumberPattern, ticket.TicketNumber)

	// The attempt still happens in the background.
	require.Eventually(t, func() bool {
		return len(gateway.messages()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCreateTicketNotifiesAdmin(t *testing.T) {
	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailNewTicket:    "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	})
	svc, _ := newTicketServiceFixture(gateway, settings)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		CustomerName:  "Jane",
		CustomerEmail: "jane@example.com",
		DeviceType:    "Laptop",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(gateway.messages()) == 1
	}, time.Second, 10*time.Millisecond)

	msg := gateway.messages()[0]
	assert.Equal(t, "ops@example.com", msg.To)
	assert.Contains(t, msg.Subject, ticket.TicketNumber)
}

func TestUpdateTicketStatusChangeFiresNotification(t *testing.T) {
	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailStatusChange: "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	})
	svc, _ := newTicketServiceFixture(gateway, settings)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		CustomerName:  "Jane",
		CustomerEmail: "jane@example.com",
		DeviceType:    "Laptop",
	})
	require.NoError(t, err)

	newStatus := domain.TicketStatusInProgress
	updated, err := svc.UpdateTicket(context.Background(), ticket.ID, TicketUpdateInput{Status: &newStatus})
	require.NoError(t, err)
	assert.Equal(t, newStatus, updated.Status)

	// Two independent messages: admin and customer.
	require.Eventually(t, func() bool {
		return len(gateway.messages()) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestUpdateTicketUnchangedStatusStaysQuiet(t *testing.T) {
	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailStatusChange: "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	})
	svc, _ := newTicketServiceFixture(gateway, settings)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		CustomerName:  "Jane",
		CustomerEmail: "jane@example.com",
		DeviceType:    "Laptop",
	})
	require.NoError(t, err)

	sameStatus := ticket.Status
	desc := "new description"
	_, err = svc.UpdateTicket(context.Background(), ticket.ID, TicketUpdateInput{
		Status:      &sameStatus,
		Description: &desc,
	})
	require.NoError(t, err)

	_, err = svc.UpdateTicket(context.Background(), ticket.ID, TicketUpdateInput{Description: &desc})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, gateway.messages(), "no notification without a real status change")
}

func TestSweepStaleTicketsDelegates(t *testing.T) {
	now := time.Now()
	gateway := &fakeGateway{}
	settings := newFakeSettings(map[string]string{
		domain.SettingEmailOldTickets:   "true",
		domain.SettingEmailAdminAddress: "ops@example.com",
	})
	svc, repo := newTicketServiceFixture(gateway, settings)

	assert.False(t, svc.SweepStaleTickets(context.Background()), "nothing stale yet")

	require.NoError(t, repo.Create(context.Background(), &domain.Ticket{
		TicketNumber: "FM-2026-08-0077",
		Status:       domain.TicketStatusPartsOrdered,
		CustomerName: "Jane",
		CreatedAt:    now.Add(-10 * 24 * time.Hour),
	}))
	assert.True(t, svc.SweepStaleTickets(context.Background()))
	require.Len(t, gateway.messages(), 1)
	assert.Contains(t, gateway.messages()[0].Body, "FM-2026-08-0077")
}
