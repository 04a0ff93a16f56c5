package modem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/gsmgw/modem"
)

func TestConfig(t *testing.T) {
	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		_, err := modem.NewConfigBuilder().Build()

		if err != modem.ErrNoDialer {
			t.Errorf("expected ErrNoDialer, got: %v", err)
		}
	})

	t.Run("Options are chainable", func(t *testing.T) {
		_, err := modem.NewConfigBuilder().
			WithDialer(modem.SerialDialer{PortName: "/dev/ttyUSB0"}).
			WithSimPIN("1234").
			WithBufferSize(512).
			WithRetryDelay(0).
			WithInitTimeout(0).
			WithAPN("iot.example").
			WithSMSDryRun(true).
			Build()
		require.NoError(t, err)
	})
}

func TestBufferSizeOption(t *testing.T) {
	// The buffer fills up right after the message body.
	transport := NewScript().Init().Respond("AT+CMGR=1", unreadHello).Build()
	m := newTestModem(t, transport, func(b *modem.ConfigBuilder) {
		b.WithBufferSize(len(unreadHello) - len("\r\n\r\nOK\r\n"))
	})

	sms, err := m.GetSMS(t.Context(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "Hello", sms.Text)
}
