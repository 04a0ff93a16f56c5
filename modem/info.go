package modem

import (
	"context"
	"fmt"
	"time"

	"i4.energy/across/gsmgw/at"
)

const iccidLength = 20

var (
	cmdICCID = okCommand(at.CmdICCID, 500*time.Millisecond, 50*time.Millisecond, 5)
	cmdClock = Command{Text: at.CmdClock, Timeout: 5 * time.Second, InterChar: 100 * time.Millisecond, Expect: at.ClockRead, Attempts: 1}
)

// GetICCID returns the SIM card identifier.
func (m *Modem) GetICCID(ctx context.Context) (string, error) {
	release, err := m.hold(LineCommand)
	if err != nil {
		return "", err
	}
	defer release()

	outcome, err := m.at.SendAndWait(ctx, cmdICCID)
	if err != nil {
		return "", err
	}
	if err := outcome.Err(); err != nil {
		return "", err
	}

	// The identifier follows the leading CRLF of the response.
	resp := m.at.Buffer().Bytes()
	if len(resp) < len(at.CRLF)+iccidLength {
		return "", fmt.Errorf("ICCID response too short: %q", resp)
	}
	return string(resp[len(at.CRLF) : len(at.CRLF)+iccidLength]), nil
}

// GetDateTime returns the module clock as reported by AT+CCLK, for example
// "24/01/01,12:00:00+00".
func (m *Modem) GetDateTime(ctx context.Context) (string, error) {
	release, err := m.hold(LineCommand)
	if err != nil {
		return "", err
	}
	defer release()

	outcome, err := m.at.SendAndWait(ctx, cmdClock)
	if err != nil {
		return "", err
	}
	if err := outcome.Err(); err != nil {
		return "", err
	}

	value, ok := at.Quoted(m.at.Buffer().String())
	if !ok {
		return "", fmt.Errorf("malformed clock response: %q", m.at.Buffer().String())
	}
	return value, nil
}

// Echo switches command echo on or off.
func (m *Modem) Echo(ctx context.Context, on bool) error {
	text := at.CmdEchoOff
	if on {
		text = at.CmdEchoOn
	}
	return m.expect(ctx, okCommand(text, 500*time.Millisecond, 50*time.Millisecond, 1))
}
