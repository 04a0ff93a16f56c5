package modem_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"i4.energy/across/gsmgw/modem"
)

func buildConfig(t *testing.T, dialer modem.Dialer, configure ...func(*modem.ConfigBuilder)) modem.Config {
	t.Helper()

	builder := modem.NewConfigBuilder().
		WithDialer(dialer).
		WithClock(modem.NewTestClock())
	for _, fn := range configure {
		fn(builder)
	}
	config, err := builder.Build()
	require.NoError(t, err)
	return config
}

func dialerFor(t *testing.T, transport modem.Transport) modem.Dialer {
	ctrl := gomock.NewController(t)
	dialer := modem.NewMockDialer(ctrl)
	dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil)
	return dialer
}

func TestModemNew(t *testing.T) {
	t.Run("Initialization Success", func(t *testing.T) {
		transport := NewScript().Init().Build()

		m, err := modem.New(context.Background(), buildConfig(t, dialerFor(t, transport)))
		require.NoError(t, err)
		require.NotNil(t, m)

		assert.Equal(t, []string{"AT", "AT&F", "ATE0", "AT+SAPBR=0,1", "AT+CPIN?"}, transport.Written())
		assert.Equal(t, modem.LineFree, m.LineState())
		assert.False(t, m.IsInitialized(), "initialized is only set on registration")

		require.NoError(t, m.Close())
		assert.True(t, transport.Closed())
	})

	t.Run("ErrSIMPinRequired when SIM PIN is required but not provided", func(t *testing.T) {
		transport := NewScript().Probe().BootParams().SimPinRequired().Build()

		m, err := modem.New(context.Background(), buildConfig(t, dialerFor(t, transport)))
		if !errors.Is(err, modem.ErrSIMPinRequired) {
			t.Errorf("expected ErrSIMPinRequired, got: %v", err)
		}
		if m != nil {
			t.Error("New() should return nil modem when error occurs")
		}
		assert.True(t, transport.Closed(), "transport is closed when initialization fails")
	})

	t.Run("SIM PIN is entered when provided", func(t *testing.T) {
		transport := NewScript().Probe().BootParams().SimPinRequired().PinAccepted("1234").Build()

		config := buildConfig(t, dialerFor(t, transport), func(b *modem.ConfigBuilder) {
			b.WithSimPIN("1234")
		})
		m, err := modem.New(context.Background(), config)
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, 1, transport.Count(`AT+CPIN="1234"`))
		assert.Equal(t, 2, transport.Count("AT+CPIN?"))
	})

	t.Run("SIM that never becomes ready", func(t *testing.T) {
		transport := NewScript().Probe().BootParams().SimPinRequired().OK(`AT+CPIN="1234"`).Build()

		config := buildConfig(t, dialerFor(t, transport), func(b *modem.ConfigBuilder) {
			b.WithSimPIN("1234")
		})
		_, err := modem.New(context.Background(), config)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SIM not ready after 60 polls")
		assert.Equal(t, 61, transport.Count("AT+CPIN?"))
		assert.True(t, transport.Closed())
	})

	t.Run("Rejected PIN", func(t *testing.T) {
		transport := NewScript().Probe().BootParams().SimPinRequired().
			Respond(`AT+CPIN="0000"`, "\r\n+CME ERROR: 16\r\n").
			Build()

		config := buildConfig(t, dialerFor(t, transport), func(b *modem.ConfigBuilder) {
			b.WithSimPIN("0000")
		})
		_, err := modem.New(context.Background(), config)
		assert.ErrorIs(t, err, modem.ErrResponseMismatch)
	})

	t.Run("Silent modem", func(t *testing.T) {
		transport := modem.NewTestTransport()

		_, err := modem.New(context.Background(), buildConfig(t, dialerFor(t, transport)))
		assert.ErrorIs(t, err, modem.ErrNoResponse)
		assert.Equal(t, 5, transport.Count("AT"), "the probe is sent five times")
		assert.True(t, transport.Closed())
	})

	t.Run("Rejected boot parameter is skipped", func(t *testing.T) {
		transport := NewScript().Probe().OK("ATE0", "AT+SAPBR=0,1").SimReady().
			Respond("AT&F", errorResponse).
			Build()

		m, err := modem.New(context.Background(), buildConfig(t, dialerFor(t, transport)))
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, 1, transport.Count("AT&F"), "a rejected command is not retried")
	})

	t.Run("Dialer error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDialer := modem.NewMockDialer(ctrl)
		mockDialer.EXPECT().Dial(gomock.Any()).Return(nil, errors.New("connection failed"))

		m, err := modem.New(context.Background(), buildConfig(t, mockDialer))
		if err == nil {
			t.Error("expected error from dialer failure")
		}
		if m != nil {
			t.Error("New() should return nil modem when dialer fails")
		}
	})

	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		m, err := modem.New(context.Background(), modem.Config{})
		if !errors.Is(err, modem.ErrNoDialer) {
			t.Errorf("expected ErrNoDialer from New(), got: %v", err)
		}
		if m != nil {
			t.Error("New() should return nil modem when no dialer provided")
		}
	})

	t.Run("ErrNotInitialized on nil transport", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDialer := modem.NewMockDialer(ctrl)
		mockDialer.EXPECT().Dial(gomock.Any()).Return(nil, nil)

		_, err := modem.New(context.Background(), buildConfig(t, mockDialer))
		assert.ErrorIs(t, err, modem.ErrNotInitialized)
	})
}

func TestModemClose(t *testing.T) {
	transport := NewScript().Init().Build()
	m := newTestModem(t, transport)

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Close(), modem.ErrAlreadyClosed)

	t.Run("Operations fail after Close", func(t *testing.T) {
		assert.ErrorIs(t, m.Ready(context.Background()), modem.ErrAlreadyClosed)
		_, err := m.GetSMS(context.Background(), 1, 0)
		assert.ErrorIs(t, err, modem.ErrAlreadyClosed)
		assert.Empty(t, transport.Written())
	})
}

func TestModemReady(t *testing.T) {
	transport := NewScript().Init().Build()
	m := newTestModem(t, transport)

	require.NoError(t, m.Ready(context.Background()))
	assert.Equal(t, []string{"AT"}, transport.Written())
}

func TestLineBusy(t *testing.T) {
	transport := NewScript().Init().RegisteredParams().
		Respond("AT+CREG?", "\r\n+CREG: 0,1\r\n\r\nOK\r\n").
		Build()
	m := newTestModem(t, transport)
	ctx := context.Background()

	release, err := m.HoldLine(modem.LineData)
	require.NoError(t, err)
	assert.Equal(t, modem.LineData, m.LineState())

	t.Run("Operations return ErrLineBusy without writing", func(t *testing.T) {
		assert.ErrorIs(t, m.Ready(ctx), modem.ErrLineBusy)
		assert.ErrorIs(t, m.SendSMS(ctx, "+12025550123", "hi"), modem.ErrLineBusy)
		_, err := m.GetPhoneNumber(ctx, 1)
		assert.ErrorIs(t, err, modem.ErrLineBusy)
		_, err = m.HTTPGet(ctx, "http://example.com")
		assert.ErrorIs(t, err, modem.ErrLineBusy)

		reg, err := m.CheckRegistration(ctx)
		require.NoError(t, err)
		assert.Equal(t, modem.RegistrationLineBusy, reg)

		assert.Empty(t, transport.Written())
	})

	release()
	release()
	assert.Equal(t, modem.LineFree, m.LineState())
	assert.NoError(t, m.Ready(ctx))
}

func TestModemStatusFlags(t *testing.T) {
	m := newTestModem(t, NewScript().Init().Build())

	assert.Equal(t, modem.Status(0), m.Status())
	assert.False(t, m.IsUserButtonEnabled())

	m.EnableUserButton()
	assert.True(t, m.IsUserButtonEnabled())
	assert.Equal(t, "user-button", m.Status().String())

	m.DisableUserButton()
	assert.False(t, m.IsUserButtonEnabled())
	assert.Equal(t, "none", m.Status().String())
}
