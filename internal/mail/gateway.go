package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/flashmac/repair-tracker/internal/config"
	"github.com/flashmac/repair-tracker/internal/observability"
)

// Message is a single outbound email. Body is pre-rendered HTML.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Provider is an outbound email transport. Send makes exactly one delivery
// attempt; retries across providers are the Gateway's concern.
type Provider interface {
	Name() string
	Send(ctx context.Context, from string, msg Message) error
}

// Gateway tries each configured provider in priority order until one succeeds.
type Gateway struct {
	providers []Provider
	from      string
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewGateway builds the provider chain once from available credentials.
// Providers missing their credential set are never constructed. Order is
// fixed: Resend, Mailgun, SendGrid, SMTP.
func NewGateway(cfg config.MailConfig, logger *zap.Logger, metrics *observability.Metrics) *Gateway {
	var providers []Provider
	if cfg.ResendAPIKey != "" {
		providers = append(providers, newResendProvider(cfg.ResendAPIKey, cfg.Timeout()))
	}
	if cfg.MailgunAPIKey != "" && cfg.MailgunDomain != "" {
		providers = append(providers, newMailgunProvider(cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.Timeout()))
	}
	if cfg.SendGridAPIKey != "" {
		providers = append(providers, newSendGridProvider(cfg.SendGridAPIKey, cfg.Timeout()))
	}
	if cfg.SMTPHost != "" {
		providers = append(providers, newSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword))
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	logger.Info("mail gateway initialized", zap.Strings("providers", names))

	return &Gateway{providers: providers, from: cfg.FromAddress, logger: logger, metrics: metrics}
}

// NewGatewayWithProviders wires an explicit provider chain.
func NewGatewayWithProviders(from string, logger *zap.Logger, metrics *observability.Metrics, providers ...Provider) *Gateway {
	return &Gateway{providers: providers, from: from, logger: logger, metrics: metrics}
}

// Send attempts delivery through the chain, stopping at the first success.
// It never returns an error: every failure is logged and swallowed into the
// boolean result. Zero configured providers yields false without any attempt.
func (g *Gateway) Send(ctx context.Context, msg Message) bool {
	if len(g.providers) == 0 {
		g.logger.Warn("no mail providers configured; dropping message",
			zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return false
	}

	for _, provider := range g.providers {
		err := provider.Send(ctx, g.from, msg)
		if g.metrics != nil {
			g.metrics.RecordMailAttempt(provider.Name(), err == nil)
		}
		if err == nil {
			g.logger.Info("email sent",
				zap.String("provider", provider.Name()),
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject))
			return true
		}
		g.logger.Error("mail provider failed",
			zap.String("provider", provider.Name()),
			zap.String("to", msg.To),
			zap.Error(err))
	}
	return false
}
