package twilio

import (
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Client defines the interface for sending SMS through Twilio
type Client interface {
	SendSMS(to, body string) (string, error)
}

type clientImpl struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

// NewClient creates a new Twilio client
func NewClient(accountSid, authToken, from string, logger *zap.Logger) Client {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &clientImpl{
		client: client,
		from:   from,
		logger: logger.Named("twilio"),
	}
}

// SendSMS sends body to the E.164 number to and returns the message SID.
func (c *clientImpl) SendSMS(to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("error sending sms: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	c.logger.Info("sent sms", zap.String("sid", sid))
	return sid, nil
}
