package services

import (
	"context"
	"errors"
	"sync"
)

type sentMessage struct {
	Phone, Body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (n *fakeNotifier) Send(ctx context.Context, phone, body string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{Phone: phone, Body: body})
	if n.fail {
		return ChannelSMS, errors.New("twilio unavailable")
	}
	return ChannelWhatsApp, nil
}
