package modem_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"i4.energy/across/gsmgw/modem"
)

const (
	okResponse    = "\r\nOK\r\n"
	errorResponse = "\r\nERROR\r\n"
)

// ScriptBuilder scripts the answers of a TestTransport, one modem
// dialogue step at a time.
type ScriptBuilder struct {
	transport *modem.TestTransport
}

func NewScript() *ScriptBuilder {
	return &ScriptBuilder{transport: modem.NewTestTransport()}
}

func (b *ScriptBuilder) Respond(cmd string, responses ...string) *ScriptBuilder {
	b.transport.Respond(cmd, responses...)
	return b
}

// OK makes every cmd answer OK.
func (b *ScriptBuilder) OK(cmds ...string) *ScriptBuilder {
	for _, cmd := range cmds {
		b.transport.Respond(cmd, okResponse)
	}
	return b
}

func (b *ScriptBuilder) Probe() *ScriptBuilder {
	return b.OK("AT")
}

func (b *ScriptBuilder) BootParams() *ScriptBuilder {
	return b.OK("AT&F", "ATE0", "AT+SAPBR=0,1")
}

func (b *ScriptBuilder) SimReady() *ScriptBuilder {
	return b.Respond("AT+CPIN?", "\r\n+CPIN: READY\r\n\r\nOK\r\n")
}

func (b *ScriptBuilder) SimPinRequired() *ScriptBuilder {
	return b.Respond("AT+CPIN?", "\r\n+CPIN: SIM PIN\r\n\r\nOK\r\n")
}

func (b *ScriptBuilder) PinAccepted(pin string) *ScriptBuilder {
	return b.OK(`AT+CPIN="` + pin + `"`).SimReady()
}

// Init scripts a module that starts with an unlocked SIM.
func (b *ScriptBuilder) Init() *ScriptBuilder {
	return b.Probe().BootParams().SimReady()
}

func (b *ScriptBuilder) RegisteredParams() *ScriptBuilder {
	return b.
		OK("AT+CLIP=1", "AT+CRC=1", "AT+CMEE=0", "AT+CMGF=1", `AT+CPBS="SM"`, "AT+CNMI=2,0").
		Respond(`AT+CPMS="SM","SM"`, "\r\n+CPMS: 0,30,0,30,0,30\r\n\r\nOK\r\n")
}

// Phonebook scripts the SIM phonebook. Positions without a number answer
// with an empty entry list.
func (b *ScriptBuilder) Phonebook(numbers map[int]string) *ScriptBuilder {
	for pos, number := range numbers {
		cmd := "AT+CPBR=" + strconv.Itoa(pos)
		if number == "" {
			b.transport.Respond(cmd, okResponse)
			continue
		}
		b.transport.Respond(cmd, "\r\n+CPBR: "+strconv.Itoa(pos)+`,"`+number+`",145,"Entry"`+"\r\n\r\nOK\r\n")
	}
	return b
}

func (b *ScriptBuilder) Build() *modem.TestTransport {
	return b.transport
}

// newTestModem initializes a Modem over transport on a virtual clock and
// forgets the initialization dialogue. The transport must be scripted
// with Init.
func newTestModem(t *testing.T, transport *modem.TestTransport, configure ...func(*modem.ConfigBuilder)) *modem.Modem {
	t.Helper()

	ctrl := gomock.NewController(t)
	dialer := modem.NewMockDialer(ctrl)
	dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil)

	builder := modem.NewConfigBuilder().
		WithDialer(dialer).
		WithClock(modem.NewTestClock()).
		WithLogger(zaptest.NewLogger(t))
	for _, fn := range configure {
		fn(builder)
	}

	config, err := builder.Build()
	require.NoError(t, err)

	m, err := modem.New(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	transport.ClearWritten()
	return m
}
