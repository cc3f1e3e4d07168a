package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flashmac/repair-tracker/internal/config"
	"github.com/flashmac/repair-tracker/internal/observability"
)

type stubProvider struct {
	name     string
	err      error
	attempts int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Send(_ context.Context, _ string, _ Message) error {
	p.attempts++
	return p.err
}

func testMessage() Message {
	return Message{To: "ops@example.com", Subject: "subject", Body: "<p>body</p>"}
}

func TestGatewayStopsAtFirstSuccess(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("boom")}
	b := &stubProvider{name: "b"}
	c := &stubProvider{name: "c"}
	gateway := NewGatewayWithProviders("noreply@example.com", zap.NewNop(), nil, a, b, c)

	require.True(t, gateway.Send(context.Background(), testMessage()))
	assert.Equal(t, 1, a.attempts)
	assert.Equal(t, 1, b.attempts)
	assert.Equal(t, 0, c.attempts, "later providers must not be attempted after a success")
}

func TestGatewayAllProvidersFail(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("boom")}
	b := &stubProvider{name: "b", err: errors.New("boom")}
	gateway := NewGatewayWithProviders("noreply@example.com", zap.NewNop(), nil, a, b)

	require.False(t, gateway.Send(context.Background(), testMessage()))
	assert.Equal(t, 1, a.attempts)
	assert.Equal(t, 1, b.attempts)
}

func TestGatewayNoProvidersConfigured(t *testing.T) {
	gateway := NewGatewayWithProviders("noreply@example.com", zap.NewNop(), nil)
	require.False(t, gateway.Send(context.Background(), testMessage()))
}

func TestGatewayRecordsMailMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	a := &stubProvider{name: "a", err: errors.New("boom")}
	b := &stubProvider{name: "b"}
	gateway := NewGatewayWithProviders("noreply@example.com", zap.NewNop(), metrics, a, b)

	require.True(t, gateway.Send(context.Background(), testMessage()))
	assert.Equal(t, int64(1), metrics.MailAttempts("a", false))
	assert.Equal(t, int64(1), metrics.MailAttempts("b", true))
}

func TestNewGatewayEligibility(t *testing.T) {
	logger := zap.NewNop()

	gateway := NewGateway(config.MailConfig{}, logger, nil)
	assert.Empty(t, gateway.providers)

	gateway = NewGateway(config.MailConfig{
		ResendAPIKey:   "rk",
		SendGridAPIKey: "sg",
		MailgunAPIKey:  "mg", // no domain: mailgun stays ineligible
	}, logger, nil)
	require.Len(t, gateway.providers, 2)
	assert.Equal(t, "resend", gateway.providers[0].Name())
	assert.Equal(t, "sendgrid", gateway.providers[1].Name())

	gateway = NewGateway(config.MailConfig{
		ResendAPIKey:   "rk",
		MailgunAPIKey:  "mg",
		MailgunDomain:  "mail.example.com",
		SendGridAPIKey: "sg",
		SMTPHost:       "smtp.example.com",
		SMTPPort:       587,
	}, logger, nil)
	require.Len(t, gateway.providers, 4)
	assert.Equal(t, "resend", gateway.providers[0].Name())
	assert.Equal(t, "mailgun", gateway.providers[1].Name())
	assert.Equal(t, "sendgrid", gateway.providers[2].Name())
	assert.Equal(t, "smtp", gateway.providers[3].Name())
}
