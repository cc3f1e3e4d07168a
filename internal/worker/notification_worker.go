package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flashmac/repair-tracker/internal/events"
	"github.com/flashmac/repair-tracker/internal/service"
)

// StartNotificationWorker subscribes notification handlers to ticket
// lifecycle events.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}

// StartStaleSweep runs the stale-ticket sweep on a fixed interval until the
// context is cancelled. A non-positive interval disables the loop; the sweep
// endpoint remains available for manual runs.
func StartStaleSweep(ctx context.Context, interval time.Duration, ticketService *service.TicketService, logger *zap.Logger) {
	if interval <= 0 || ticketService == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				delivered := ticketService.SweepStaleTickets(ctx)
				logger.Info("stale ticket sweep finished", zap.Bool("delivered", delivered))
			}
		}
	}()
}
