package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

// resendProvider delivers through the Resend REST API.
type resendProvider struct {
	apiKey string
	client *http.Client
}

func newResendProvider(apiKey string, timeout time.Duration) *resendProvider {
	return &resendProvider{apiKey: apiKey, client: &http.Client{Timeout: timeout}}
}

func (p *resendProvider) Name() string { return "resend" }

func (p *resendProvider) Send(ctx context.Context, from string, msg Message) error {
	payload := map[string]string{
		"from":    from,
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.Body,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	return doSend(p.client, req, "resend")
}

// mailgunProvider delivers through the Mailgun messages API for a domain.
type mailgunProvider struct {
	apiKey string
	domain string
	client *http.Client
}

func newMailgunProvider(apiKey, domain string, timeout time.Duration) *mailgunProvider {
	return &mailgunProvider{apiKey: apiKey, domain: domain, client: &http.Client{Timeout: timeout}}
}

func (p *mailgunProvider) Name() string { return "mailgun" }

func (p *mailgunProvider) Send(ctx context.Context, from string, msg Message) error {
	form := url.Values{}
	form.Set("from", from)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("html", msg.Body)

	endpoint := fmt.Sprintf("https://api.mailgun.net/v3/%s/messages", p.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", p.apiKey)
	return doSend(p.client, req, "mailgun")
}

// sendGridProvider delivers through the SendGrid v3 mail API.
type sendGridProvider struct {
	apiKey string
	client *http.Client
}

func newSendGridProvider(apiKey string, timeout time.Duration) *sendGridProvider {
	return &sendGridProvider{apiKey: apiKey, client: &http.Client{Timeout: timeout}}
}

func (p *sendGridProvider) Name() string { return "sendgrid" }

func (p *sendGridProvider) Send(ctx context.Context, from string, msg Message) error {
	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": msg.To}}},
		},
		"from":    map[string]string{"email": from},
		"subject": msg.Subject,
		"content": []map[string]string{
			{"type": "text/html", "value": msg.Body},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.sendgrid.com/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	return doSend(p.client, req, "sendgrid")
}

// smtpProvider delivers over SMTP, the lowest-priority fallback.
type smtpProvider struct {
	dialer *gomail.Dialer
}

func newSMTPProvider(host string, port int, user, password string) *smtpProvider {
	return &smtpProvider{dialer: gomail.NewDialer(host, port, user, password)}
}

func (p *smtpProvider) Name() string { return "smtp" }

func (p *smtpProvider) Send(ctx context.Context, from string, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)
	return p.dialer.DialAndSend(m)
}

func doSend(client *http.Client, req *http.Request, provider string) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s responded %d: %s", provider, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
