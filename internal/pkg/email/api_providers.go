// internal/pkg/email/api_providers.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
)

const resendEndpoint = "https://api.resend.com/emails"

// Resend API structures
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// ResendSender delivers email through the Resend HTTP API
type ResendSender struct {
	cfg      config.EmailConfig
	endpoint string
	client   *http.Client
}

// NewResendSender creates a Resend sender
func NewResendSender(cfg config.EmailConfig) *ResendSender {
	return &ResendSender{
		cfg:      cfg,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts the email to Resend
func (s *ResendSender) Send(ctx context.Context, email *Email) error {
	if s.cfg.APIKey == "" {
		return fmt.Errorf("Resend API key not configured")
	}

	jsonData, err := json.Marshal(ResendEmailRequest{
		From:    formatFrom(s.cfg),
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		ReplyTo: s.cfg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create Resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Resend API returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSender writes emails to the log instead of delivering them
type LogSender struct {
	log *logrus.Logger
}

// NewLogSender creates a log sender
func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the email
func (s *LogSender) Send(ctx context.Context, email *Email) error {
	s.log.WithFields(logrus.Fields{
		"to":       email.To,
		"subject":  email.Subject,
		"template": email.Template,
	}).Info("Email (log provider)")
	return nil
}
