package services

import (
	"context"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"djagency-backend/config"
	"djagency-backend/logger"
)

const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
	ChannelLog      = "log"
)

// Notifier delivers a text message and reports the channel used
type Notifier interface {
	Send(ctx context.Context, phone, body string) (channel string, err error)
}

// NewNotifier returns a Twilio notifier when credentials are configured
func NewNotifier(cfg config.TwilioConfig) Notifier {
	if !cfg.Enabled() {
		return LogNotifier{}
	}
	return NewTwilioNotifier(cfg)
}

type TwilioNotifier struct {
	client         *twilio.RestClient
	phoneNumber    string
	whatsAppNumber string
}

func NewTwilioNotifier(cfg config.TwilioConfig) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		phoneNumber:    cfg.PhoneNumber,
		whatsAppNumber: cfg.WhatsAppNumber,
	}
}

// Send uses WhatsApp for E.164 numbers when a sender is configured, SMS otherwise
func (n *TwilioNotifier) Send(ctx context.Context, phone, body string) (string, error) {
	channel := ChannelSMS
	to, from := phone, n.phoneNumber
	if strings.HasPrefix(phone, "+") && n.whatsAppNumber != "" {
		channel = ChannelWhatsApp
		to = "whatsapp:" + phone
		from = "whatsapp:" + n.whatsAppNumber
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return channel, err
	}
	if resp.Sid != nil {
		logger.L().Info("message sent", zap.String("channel", channel), zap.String("sid", *resp.Sid))
	}
	return channel, nil
}

// LogNotifier only logs, used when no provider is configured
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, phone, body string) (string, error) {
	logger.L().Info("notification (not sent, no provider configured)",
		zap.String("phone", phone),
		zap.String("body", body))
	return ChannelLog, nil
}
