package modem

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"i4.energy/across/gsmgw/at"
)

// Modem drives a SIM800-class GSM/GPS module over AT commands.
//
// All operations share one serial line. A Modem runs a single exchange at
// a time: an operation started while the line is held by another returns
// ErrLineBusy immediately instead of waiting. Operations are safe to call
// from multiple goroutines under that rule.
type Modem struct {
	// transport provides the physical connection to the modem (serial, TCP, etc.)
	transport Transport
	// config contains the modem configuration settings
	config Config
	logger *zap.Logger
	clock  Clock

	// line serializes access to at
	line CommLine
	at   *Dispatcher

	status        moduleStatus
	speakerVolume atomic.Int32
	closed        atomic.Bool
}

const (
	simReadyInterval = 500 * time.Millisecond
	simReadyPolls    = 60
)

var (
	cmdProbe     = Command{Text: at.CmdAt, Timeout: 900 * time.Millisecond, InterChar: 100 * time.Millisecond, Expect: at.OK, Attempts: 5}
	cmdReady     = Command{Text: at.CmdAt, Timeout: 200 * time.Millisecond, InterChar: 50 * time.Millisecond, Expect: at.OK, Attempts: 2}
	cmdSimStatus = Command{Text: at.CmdSimStatus, Timeout: 5 * time.Second, InterChar: 100 * time.Millisecond, Expect: "+CPIN:", Attempts: 3}
)

// New creates a new Modem instance with the given configuration.
// It establishes the transport connection, checks that the module answers,
// pushes the boot parameter set and unlocks the SIM when needed.
//
// Returns an error if the transport connection or modem initialization
// fails.
func New(ctx context.Context, config Config) (*Modem, error) {
	if config.dialer == nil {
		return nil, ErrNoDialer
	}
	config.setDefaults()

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	m := newModem(transport, config)

	initCtx, cancel := context.WithTimeout(ctx, config.initTimeout)
	defer cancel()

	if err := m.init(initCtx); err != nil {
		transport.Close()
		return nil, fmt.Errorf("initialize modem: %w", err)
	}

	return m, nil
}

func newModem(transport Transport, config Config) *Modem {
	return &Modem{
		transport: transport,
		config:    config,
		logger:    config.logger,
		clock:     config.clock,
		at: NewDispatcher(transport, DispatcherConfig{
			BufferSize: config.bufferSize,
			RetryDelay: config.retryDelay,
			Clock:      config.clock,
			Logger:     config.logger,
		}),
	}
}

// Close closes the transport connection. After calling Close(), the modem
// cannot be reused.
func (m *Modem) Close() error {
	if m.closed.Swap(true) {
		return ErrAlreadyClosed
	}
	if m.transport != nil {
		return m.transport.Close()
	}
	return nil
}

// Ready reports whether the module answers a plain AT.
func (m *Modem) Ready(ctx context.Context) error {
	return m.expect(ctx, cmdReady)
}

// LineState returns the current holder of the communication line.
func (m *Modem) LineState() LineState { return m.line.State() }

// init performs the initial setup sequence for the modem hardware.
// This method is called during New() and must complete successfully
// before the modem can be used.
func (m *Modem) init(ctx context.Context) error {
	if err := m.expect(ctx, cmdProbe); err != nil {
		return fmt.Errorf("modem not responding: %w", err)
	}

	if err := m.InitParam(ctx, ParamSetBoot); err != nil {
		return err
	}

	return m.unlockSIM(ctx)
}

func (m *Modem) unlockSIM(ctx context.Context) error {
	release, err := m.hold(LineCommand)
	if err != nil {
		return err
	}
	defer release()

	outcome, err := m.at.SendAndWait(ctx, cmdSimStatus)
	if err != nil {
		return fmt.Errorf("query SIM status: %w", err)
	}
	if outcome != ResponseMatched {
		return fmt.Errorf("query SIM status: %w", outcome.Err())
	}

	switch buf := m.at.Buffer(); {
	case buf.Contains(at.SimReady):
		return nil

	case buf.Contains(at.SimPin):
		if m.config.simPIN == "" {
			return ErrSIMPinRequired
		}
		enter := Command{Text: at.EnterPIN(m.config.simPIN), Timeout: 5 * time.Second, InterChar: 100 * time.Millisecond, Expect: at.OK, Attempts: 1}
		outcome, err := m.at.SendAndWait(ctx, enter)
		if err != nil {
			return fmt.Errorf("enter SIM PIN: %w", err)
		}
		if outcome != ResponseMatched {
			return fmt.Errorf("enter SIM PIN: %w", outcome.Err())
		}
		return m.waitForSIMReady(ctx)

	default:
		return fmt.Errorf("unsupported SIM state: %q", buf.String())
	}
}

// waitForSIMReady polls the SIM card status until it reports ready state.
// This is necessary after entering a SIM PIN, as the SIM card needs time
// to authenticate and become operational. The caller holds the line.
func (m *Modem) waitForSIMReady(ctx context.Context) error {
	for poll := 1; poll <= simReadyPolls; poll++ {
		m.clock.Sleep(simReadyInterval)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("SIM not ready: %w", err)
		}

		outcome, err := m.at.SendAndWait(ctx, cmdSimStatus)
		if err != nil {
			return fmt.Errorf("SIM status check failed: %w", err)
		}
		if outcome == ResponseMatched && m.at.Buffer().Contains(at.SimReady) {
			return nil
		}
	}
	return fmt.Errorf("SIM not ready after %d polls", simReadyPolls)
}

// hold acquires the line for one operation.
func (m *Modem) hold(state LineState) (func(), error) {
	if m.closed.Load() {
		return nil, ErrAlreadyClosed
	}
	if m.transport == nil {
		return nil, ErrNotInitialized
	}
	return m.line.Hold(state)
}

// exchange runs cmd while holding the line.
func (m *Modem) exchange(ctx context.Context, cmd Command) (CommandOutcome, error) {
	release, err := m.hold(LineCommand)
	if err != nil {
		return NoResponse, err
	}
	defer release()

	return m.at.SendAndWait(ctx, cmd)
}

// expect runs cmd and fails unless the expected token was received.
func (m *Modem) expect(ctx context.Context, cmd Command) error {
	outcome, err := m.exchange(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Text, err)
	}
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Text, err)
	}
	return nil
}

// query sends text and frames one response without retrying, for
// commands whose response is classified by the caller. The caller holds
// the line.
func (m *Modem) query(ctx context.Context, text string, timeout, interChar time.Duration) (FramingOutcome, error) {
	if err := m.at.Send(text); err != nil {
		return NotFinished, err
	}
	return m.at.Receive(ctx, timeout, interChar)
}
