package email

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Message is a plain-text email
type Message struct {
	To      []string
	Subject string
	Text    string
	ReplyTo string
}

// Sender defines the interface for delivering email
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type resendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendSender creates a Sender backed by the Resend API
func NewResendSender(apiKey, from string, logger *zap.Logger) Sender {
	return &resendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger.Named("resend"),
	}
}

func (s *resendSender) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("resend send failed: %w", err)
	}

	s.logger.Info("email sent", zap.String("message_id", sent.Id), zap.String("subject", msg.Subject))
	return sent.Id, nil
}

type noopSender struct {
	logger *zap.Logger
}

// NewNoopSender logs sends without delivering anything. Used when no API key
// is configured.
func NewNoopSender(logger *zap.Logger) Sender {
	return &noopSender{logger: logger.Named("email")}
}

func (s *noopSender) Send(_ context.Context, msg Message) (string, error) {
	s.logger.Debug("email not configured, skipping send", zap.String("subject", msg.Subject))
	return fmt.Sprintf("noop-%d", time.Now().UnixNano()), nil
}
