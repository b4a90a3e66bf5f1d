package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// SMSSender delivers a plain text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TwilioSMS sends through the Twilio messages API. Numbers in E.164 form go
// over WhatsApp when a WhatsApp sender is configured.
type TwilioSMS struct {
	client       *twilio.RestClient
	from         string
	whatsappFrom string
	logger       *zap.Logger
}

func NewTwilioSMS(accountSID, authToken, from, whatsappFrom string, logger *zap.Logger) *TwilioSMS {
	return &TwilioSMS{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from:         from,
		whatsappFrom: whatsappFrom,
		logger:       logger,
	}
}

func (s *TwilioSMS) SendSMS(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if s.whatsappFrom != "" && strings.HasPrefix(to, "+") {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + s.whatsappFrom)
	} else {
		params.SetTo(to)
		params.SetFrom(s.from)
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	if resp.Sid != nil {
		s.logger.Debug("Message sent", zap.String("to", to), zap.String("sid", *resp.Sid))
	}
	return nil
}
