package modem

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"i4.energy/across/gsmgw/at"
)

// HTTPMethod is the request method of an HTTP session run by the module.
type HTTPMethod int

const (
	HTTPGet  HTTPMethod = 0
	HTTPPost HTTPMethod = 1
)

func (m HTTPMethod) String() string {
	if m == HTTPPost {
		return "POST"
	}
	return "GET"
}

var (
	cmdBearerQuery   = okCommand(at.CmdBearerQuery, 900*time.Millisecond, 900*time.Millisecond, 5)
	cmdBearerOpen    = okCommand(at.CmdBearerOpen, 20*time.Second, 900*time.Millisecond, 5)
	cmdBearerGPRS    = okCommand(at.CmdBearerGPRS, 900*time.Millisecond, 500*time.Millisecond, 2)
	cmdHTTPInit      = okCommand(at.CmdHTTPInit, 900*time.Millisecond, 500*time.Millisecond, 5)
	cmdHTTPContextID = okCommand(at.CmdHTTPContextID, 900*time.Millisecond, 500*time.Millisecond, 5)
	cmdHTTPTerm      = okCommand(at.CmdHTTPTerm, 900*time.Millisecond, 500*time.Millisecond, 5)
)

const (
	httpActionTimeout   = 20 * time.Second
	httpActionInterChar = 500 * time.Millisecond
)

// SetupGPRS configures the packet data bearer with the configured APN.
func (m *Modem) SetupGPRS(ctx context.Context) error {
	release, err := m.hold(LineCommand)
	if err != nil {
		return err
	}
	defer release()

	apn := okCommand(at.BearerAPN(m.config.apn), 900*time.Millisecond, 500*time.Millisecond, 2)
	if err := m.sendAll(ctx, apn, cmdBearerGPRS); err != nil {
		return fmt.Errorf("setup GPRS: %w", err)
	}
	return nil
}

// HTTPGet fetches url through the module and returns the response body.
func (m *Modem) HTTPGet(ctx context.Context, url string) (string, error) {
	return m.httpRequest(ctx, HTTPGet, url)
}

// HTTPPost posts an empty body to url through the module and returns the
// response body.
func (m *Modem) HTTPPost(ctx context.Context, url string) (string, error) {
	return m.httpRequest(ctx, HTTPPost, url)
}

// httpRequest runs one HTTP session. Only a 200 status is a success. The
// session is terminated whatever the outcome, even when the bearer could
// not be opened.
func (m *Modem) httpRequest(ctx context.Context, method HTTPMethod, url string) (string, error) {
	release, err := m.hold(LineData)
	if err != nil {
		return "", err
	}
	defer release()

	defer func() {
		outcome, termErr := m.at.SendAndWait(ctx, cmdHTTPTerm)
		if termErr == nil {
			termErr = outcome.Err()
		}
		if termErr != nil {
			m.logger.Warn("HTTP session not terminated", zap.Error(termErr))
		}
	}()

	if err := m.openBearer(ctx); err != nil {
		return "", err
	}

	if err := m.sendAll(ctx, cmdHTTPInit, cmdHTTPContextID); err != nil {
		return "", fmt.Errorf("HTTP %v: %w", method, err)
	}

	// A rejected URL surfaces as a failed action.
	if _, err := m.query(ctx, at.HTTPURL(url), 900*time.Millisecond, 500*time.Millisecond); err != nil {
		return "", fmt.Errorf("HTTP %v: %w", method, err)
	}

	length, err := m.httpAction(ctx, method)
	if err != nil {
		return "", fmt.Errorf("HTTP %v %s: %w", method, url, err)
	}

	read := okCommand(at.HTTPReadAll(length), 1500*time.Millisecond, 500*time.Millisecond, 1)
	outcome, err := m.at.SendAndWait(ctx, read)
	if err != nil {
		return "", fmt.Errorf("HTTP %v read: %w", method, err)
	}
	if err := outcome.Err(); err != nil {
		return "", fmt.Errorf("HTTP %v read: %w", method, err)
	}
	return parseHTTPRead(m.at.Buffer().String()), nil
}

// openBearer opens the packet data bearer unless it is already connected.
// The caller holds the line.
func (m *Modem) openBearer(ctx context.Context) error {
	if _, err := m.at.SendAndWait(ctx, cmdBearerQuery); err != nil {
		return err
	}
	if m.at.Buffer().Contains(at.BearerConnected) {
		return nil
	}

	if _, err := m.at.SendAndWait(ctx, cmdBearerOpen); err != nil {
		return err
	}
	if _, err := m.at.SendAndWait(ctx, cmdBearerQuery); err != nil {
		return err
	}
	if !m.at.Buffer().Contains(at.BearerConnected) {
		return ErrBearerUnavailable
	}
	return nil
}

// httpAction starts the request and waits for its completion report
// "+HTTPACTION:<method>,<status>,<length>". It returns the body length.
func (m *Modem) httpAction(ctx context.Context, method HTTPMethod) (int, error) {
	success := at.HTTPActionOK(int(method))

	outcome, err := m.at.SendAndWait(ctx, okCommand(at.HTTPAction(int(method)), 1500*time.Millisecond, 500*time.Millisecond, 2))
	if err != nil {
		return 0, err
	}
	// The completion report may arrive in the same frame as the OK.
	if buf := m.at.Buffer(); !buf.Contains(success) && buf.Contains(at.HTTPActionReport) {
		return 0, fmt.Errorf("%w: action report %q", ErrResponseMismatch, strings.TrimSpace(buf.String()))
	}
	if outcome != ResponseMatched || !m.at.Buffer().Contains(success) {
		outcome, err = m.at.Expect(ctx, httpActionTimeout, httpActionInterChar, success)
		if err != nil {
			return 0, err
		}
		if outcome != ResponseMatched {
			return 0, fmt.Errorf("%w: action report %q", outcome.Err(), strings.TrimSpace(m.at.Buffer().String()))
		}
	}

	resp := m.at.Buffer().String()
	report := resp[strings.Index(resp, success)+len(success):]
	if !strings.HasPrefix(report, ",") {
		return 0, nil
	}
	return leadingInt(report[1:]), nil
}

// parseHTTPRead extracts the payload of an AT+HTTPREAD response:
//
//	\r\n+HTTPREAD:5\r\nHELLO\r\nOK\r\n
func parseHTTPRead(resp string) string {
	i := strings.Index(resp, at.HTTPRead)
	if i < 0 {
		return ""
	}
	rest := resp[i:]
	cr := strings.IndexByte(rest, '\r')
	if cr < 0 || cr+2 > len(rest) {
		return ""
	}
	payload := rest[cr+2:]
	if end := strings.IndexByte(payload, '\r'); end >= 0 {
		payload = payload[:end]
	}
	return payload
}

func (m *Modem) sendAll(ctx context.Context, cmds ...Command) error {
	for _, cmd := range cmds {
		outcome, err := m.at.SendAndWait(ctx, cmd)
		if err != nil {
			return err
		}
		if err := outcome.Err(); err != nil {
			return fmt.Errorf("%s: %w", cmd.Text, err)
		}
	}
	return nil
}
