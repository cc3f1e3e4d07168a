package service

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flashmac/repair-tracker/internal/domain"
	"github.com/flashmac/repair-tracker/internal/events"
	"github.com/flashmac/repair-tracker/internal/mail"
	"github.com/flashmac/repair-tracker/internal/repository"
)

// MailGateway delivers rendered messages, best effort.
type MailGateway interface {
	Send(ctx context.Context, msg mail.Message) bool
}

// NotificationService decides, per domain event, whether a notification is
// due, to whom, and with what content, based on persisted settings. Every
// operation returns a delivered boolean and swallows all failures: nothing
// on this path may affect the ticket mutation that triggered it.
type NotificationService struct {
	settings repository.SettingsRepository
	tickets  repository.TicketRepository
	gateway  MailGateway
	baseURL  string
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(settings repository.SettingsRepository, tickets repository.TicketRepository, gateway MailGateway, baseURL string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		settings: settings,
		tickets:  tickets,
		gateway:  gateway,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterHandlers subscribes to ticket lifecycle events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	n.NotifyNewTicket(ctx, &payload.Ticket)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	n.NotifyStatusChange(ctx, &payload.Ticket, payload.OldStatus)
	return nil
}

// NotifyNewTicket emails the admin address about a freshly created ticket.
// Returns false when the feature is disabled, the admin address is missing,
// or delivery failed.
func (n *NotificationService) NotifyNewTicket(ctx context.Context, ticket *domain.Ticket) (delivered bool) {
	defer n.recoverToFalse("new ticket", &delivered)

	if !n.flagEnabled(ctx, domain.SettingEmailNewTicket) {
		n.logger.Debug("new ticket notifications disabled")
		return false
	}
	adminEmail := n.adminAddress(ctx)
	if adminEmail == "" {
		n.logger.Debug("admin email not configured")
		return false
	}

	return n.gateway.Send(ctx, mail.Message{
		To:      adminEmail,
		Subject: "New Repair Ticket: " + ticket.TicketNumber,
		Body:    n.renderNewTicketBody(ticket),
	})
}

// NotifyStatusChange emails the admin and the customer about a status
// transition. The two sends are independent; the result is true when at
// least one of them was delivered.
func (n *NotificationService) NotifyStatusChange(ctx context.Context, ticket *domain.Ticket, oldStatus domain.TicketStatus) (delivered bool) {
	defer n.recoverToFalse("status change", &delivered)

	if !n.flagEnabled(ctx, domain.SettingEmailStatusChange) {
		n.logger.Debug("status change notifications disabled")
		return false
	}
	adminEmail := n.adminAddress(ctx)
	if adminEmail == "" {
		n.logger.Debug("admin email not configured")
		return false
	}

	adminSent := n.gateway.Send(ctx, mail.Message{
		To:      adminEmail,
		Subject: "Ticket Status Updated: " + ticket.TicketNumber,
		Body:    n.renderStatusChangeAdminBody(ticket, oldStatus),
	})

	customerSent := n.gateway.Send(ctx, mail.Message{
		To:      ticket.CustomerEmail,
		Subject: "Your repair ticket status has been updated: " + ticket.TicketNumber,
		Body:    n.renderStatusChangeCustomerBody(ticket),
	})

	return adminSent || customerSent
}

// NotifyStaleTickets sends one digest email listing every open ticket older
// than the configured threshold. Returns false when the feature is disabled,
// the admin address is missing, nothing is stale, or delivery failed; the
// caller cannot distinguish those cases, which matches the settings UI's
// expectations.
func (n *NotificationService) NotifyStaleTickets(ctx context.Context) (delivered bool) {
	defer n.recoverToFalse("stale tickets", &delivered)

	if !n.flagEnabled(ctx, domain.SettingEmailOldTickets) {
		n.logger.Debug("stale ticket notifications disabled")
		return false
	}
	adminEmail := n.adminAddress(ctx)
	if adminEmail == "" {
		n.logger.Debug("admin email not configured")
		return false
	}

	days := n.staleDays(ctx)
	cutoff := n.now().AddDate(0, 0, -days)

	tickets, err := n.tickets.ListOpenCreatedBefore(ctx, cutoff)
	if err != nil {
		n.logger.Error("failed to query stale tickets", zap.Error(err))
		return false
	}
	if len(tickets) == 0 {
		n.logger.Debug("no stale tickets found")
		return false
	}

	subject := fmt.Sprintf("%d Tickets Pending for More Than %d Days", len(tickets), days)
	return n.gateway.Send(ctx, mail.Message{
		To:      adminEmail,
		Subject: subject,
		Body:    n.renderStaleTicketsBody(tickets, days),
	})
}

// flagEnabled treats only the stored value "true" as truthy; absence and
// read failures count as disabled.
func (n *NotificationService) flagEnabled(ctx context.Context, key string) bool {
	value, err := n.settings.Get(ctx, key)
	if err != nil {
		n.logger.Error("failed to read setting", zap.String("key", key), zap.Error(err))
		return false
	}
	return value == "true"
}

func (n *NotificationService) adminAddress(ctx context.Context) string {
	value, err := n.settings.Get(ctx, domain.SettingEmailAdminAddress)
	if err != nil {
		n.logger.Error("failed to read setting", zap.String("key", domain.SettingEmailAdminAddress), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(value)
}

func (n *NotificationService) staleDays(ctx context.Context) int {
	value, err := n.settings.Get(ctx, domain.SettingEmailOldTicketsDays)
	if err != nil || value == "" {
		return domain.DefaultOldTicketsDays
	}
	days, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || days <= 0 {
		return domain.DefaultOldTicketsDays
	}
	return days
}

func (n *NotificationService) recoverToFalse(operation string, delivered *bool) {
	if r := recover(); r != nil {
		n.logger.Error("notification dispatch panicked", zap.String("operation", operation), zap.Any("panic", r))
		*delivered = false
	}
}

func (n *NotificationService) adminTicketLink(id string) string {
	return n.baseURL + "/tickets/" + id
}

func (n *NotificationService) publicTicketLink(id string) string {
	return n.baseURL + "/public/tickets/" + id
}

func (n *NotificationService) renderNewTicketBody(ticket *domain.Ticket) string {
	var b strings.Builder
	b.WriteString("<h2>New Repair Ticket Created</h2>")
	writeField(&b, "Ticket Number", ticket.TicketNumber)
	writeField(&b, "Customer", ticket.CustomerName)
	writeField(&b, "Email", ticket.CustomerEmail)
	writeField(&b, "Device", ticket.DeviceType)
	writeField(&b, "Description", ticket.Description)
	writeField(&b, "Status", string(ticket.Status))
	writeField(&b, "Priority", string(ticket.Priority))
	fmt.Fprintf(&b, "<p>View ticket details at: <a href=%q>%s</a></p>",
		n.adminTicketLink(ticket.ID), html.EscapeString(n.adminTicketLink(ticket.ID)))
	return b.String()
}

func (n *NotificationService) renderStatusChangeAdminBody(ticket *domain.Ticket, oldStatus domain.TicketStatus) string {
	var b strings.Builder
	b.WriteString("<h2>Repair Ticket Status Updated</h2>")
	writeField(&b, "Ticket Number", ticket.TicketNumber)
	writeField(&b, "Customer", ticket.CustomerName)
	writeField(&b, "Status Changed", string(oldStatus)+" → "+string(ticket.Status))
	writeField(&b, "Device", ticket.DeviceType)
	fmt.Fprintf(&b, "<p>View ticket details at: <a href=%q>%s</a></p>",
		n.adminTicketLink(ticket.ID), html.EscapeString(n.adminTicketLink(ticket.ID)))
	return b.String()
}

func (n *NotificationService) renderStatusChangeCustomerBody(ticket *domain.Ticket) string {
	var b strings.Builder
	b.WriteString("<h2>Your Repair Ticket Status Has Been Updated</h2>")
	fmt.Fprintf(&b, "<p>Dear %s,</p>", html.EscapeString(ticket.CustomerName))
	b.WriteString("<p>Your repair ticket status has been updated:</p>")
	writeField(&b, "Ticket Number", ticket.TicketNumber)
	writeField(&b, "New Status", string(ticket.Status))
	writeField(&b, "Device", ticket.DeviceType)
	fmt.Fprintf(&b, "<p>You can view your ticket details at: <a href=%q>%s</a></p>",
		n.publicTicketLink(ticket.ID), html.EscapeString(n.publicTicketLink(ticket.ID)))
	b.WriteString("<p>Thank you for choosing our service.</p>")
	return b.String()
}

func (n *NotificationService) renderStaleTicketsBody(tickets []domain.Ticket, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Tickets Pending for More Than %d Days</h2>", days)
	fmt.Fprintf(&b, "<p>The following tickets have been open for more than %d days:</p>", days)
	b.WriteString(`<table style="border-collapse: collapse; width: 100%;"><thead><tr>`)
	for _, header := range []string{"Ticket Number", "Customer", "Status", "Created Date", "Action"} {
		fmt.Fprintf(&b, `<th style="padding: 8px; border: 1px solid #ddd; background-color: #f2f2f2;">%s</th>`, header)
	}
	b.WriteString("</tr></thead><tbody>")
	for i := range tickets {
		ticket := &tickets[i]
		b.WriteString("<tr>")
		writeCell(&b, ticket.TicketNumber)
		writeCell(&b, ticket.CustomerName)
		writeCell(&b, string(ticket.Status))
		writeCell(&b, ticket.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(&b, `<td style="padding: 8px; border: 1px solid #ddd;"><a href=%q>View</a></td>`,
			n.adminTicketLink(ticket.ID))
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<p><strong>%s:</strong> %s</p>", label, html.EscapeString(value))
}

func writeCell(b *strings.Builder, value string) {
	fmt.Fprintf(b, `<td style="padding: 8px; border: 1px solid #ddd;">%s</td>`, html.EscapeString(value))
}
