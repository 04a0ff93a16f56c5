package main

import (
	"context"

	"i4.energy/across/gsmgw/modem"
)

//go:generate go tool mockgen -destination=mock_gateway_test.go -package=main . Gateway

// Gateway is the part of the modem driver used by the daemon.
type Gateway interface {
	SendSMS(ctx context.Context, number, text string) error
	ListSMS(ctx context.Context, filter modem.SMSFilter) ([]modem.SMS, error)
	GetAuthorizedSMS(ctx context.Context, pos, maxLen int, r modem.AuthRange) (modem.SMS, error)
	DeleteSMS(ctx context.Context, pos int) (bool, error)

	GetPhoneNumber(ctx context.Context, pos int) (string, error)
	WritePhoneNumber(ctx context.Context, pos int, number string) error
	DeletePhoneNumber(ctx context.Context, pos int) error

	Dial(ctx context.Context, number string) error
	HangUp(ctx context.Context) error

	Status() modem.Status
	LineState() modem.LineState
}

var _ Gateway = (*modem.Modem)(nil)
