// Package notify sends the follow-up messages that accompany a successful
// submission. Failures here never undo the submission.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pharmacy-site/pkg/clients/email"
	"pharmacy-site/pkg/clients/twilio"
	"pharmacy-site/pkg/models"
	"pharmacy-site/pkg/utils"
)

// Notifier defines the follow-ups sent after submissions
type Notifier interface {
	ContactReceived(ctx context.Context, id string, c models.ContactRequest) error
	WaitlistJoined(ctx context.Context, entry models.WaitlistEntry) error
}

type notifierImpl struct {
	mail   email.Sender
	sms    twilio.Client
	staff  []string
	logger *zap.Logger
}

// New creates a Notifier. sms may be nil, in which case waitlist texts are
// skipped; an empty staff address skips contact emails.
func New(mail email.Sender, sms twilio.Client, staffEmail string, logger *zap.Logger) Notifier {
	n := &notifierImpl{mail: mail, sms: sms, logger: logger.Named("notify")}
	if staffEmail != "" {
		n.staff = []string{staffEmail}
	}
	return n
}

// ContactReceived emails staff a pointer to the new request. The message body
// stays in the backend since patients sometimes put health details in it.
func (n *notifierImpl) ContactReceived(ctx context.Context, id string, c models.ContactRequest) error {
	if len(n.staff) == 0 {
		return nil
	}
	text := fmt.Sprintf("A new contact request was submitted on the website.\n\nName: %s\nReason: %s\nReference: %s\n",
		strings.TrimSpace(c.Name), c.Reason, id)

	_, err := n.mail.Send(ctx, email.Message{
		To:      n.staff,
		Subject: "New website contact request (" + string(c.Reason) + ")",
		Text:    text,
		ReplyTo: strings.TrimSpace(c.Email),
	})
	if err != nil {
		return fmt.Errorf("error notifying staff: %w", err)
	}
	return nil
}

// WaitlistJoined texts an acknowledgement when the signup left a phone number.
func (n *notifierImpl) WaitlistJoined(ctx context.Context, entry models.WaitlistEntry) error {
	if n.sms == nil || entry.Phone == "" {
		return nil
	}
	to := E164(entry.Phone)
	if to == "" {
		return nil
	}
	if _, err := n.sms.SendSMS(to, "Thanks for joining our waitlist! We'll reach out as soon as a spot opens. Reply STOP to opt out."); err != nil {
		return fmt.Errorf("error texting waitlist signup %s: %w", utils.EmailRef(entry.Email), err)
	}
	return nil
}

// E164 formats a US phone number as +1XXXXXXXXXX, or returns "" when the
// number doesn't have 10 digits after an optional leading 1.
func E164(phone string) string {
	d := utils.DigitsOnly(phone)
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) != 10 {
		return ""
	}
	return "+1" + d
}
