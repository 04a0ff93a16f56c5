package modem

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"i4.energy/across/gsmgw/at"
)

// DefaultRetryDelay is the pause between two attempts of a command whose
// previous attempt got no response.
const DefaultRetryDelay = 500 * time.Millisecond

// CommandOutcome is the result of a command-response exchange.
type CommandOutcome int

const (
	// NoResponse means every attempt timed out without a single byte.
	NoResponse CommandOutcome = iota
	// ResponseMismatch means a response arrived without the expected token.
	ResponseMismatch
	// ResponseMatched means the response contained the expected token.
	ResponseMatched
)

func (o CommandOutcome) String() string {
	switch o {
	case NoResponse:
		return "no response"
	case ResponseMismatch:
		return "response mismatch"
	case ResponseMatched:
		return "response matched"
	default:
		return "unknown"
	}
}

// Err converts a failed outcome into ErrNoResponse or ErrResponseMismatch.
// It returns nil for ResponseMatched.
func (o CommandOutcome) Err() error {
	switch o {
	case ResponseMatched:
		return nil
	case ResponseMismatch:
		return ErrResponseMismatch
	default:
		return ErrNoResponse
	}
}

// Command describes one command-response exchange.
type Command struct {
	// Text is sent followed by a carriage return.
	Text string
	// Timeout bounds the wait for the first response byte.
	Timeout time.Duration
	// InterChar is the silence that ends the response.
	InterChar time.Duration
	// Expect is searched for in the response.
	Expect string
	// Attempts is the number of times the command is sent when the modem
	// stays silent. Values below 1 mean a single attempt.
	Attempts int
}

// PollStatus is the progress of a command started with Dispatcher.Begin.
type PollStatus int

const (
	Waiting PollStatus = iota
	Failed
	Matched
)

func (s PollStatus) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Failed:
		return "failed"
	case Matched:
		return "matched"
	default:
		return "unknown"
	}
}

// DispatcherConfig tunes a Dispatcher. Zero values select the defaults.
type DispatcherConfig struct {
	BufferSize int
	RetryDelay time.Duration
	Clock      Clock
	Logger     *zap.Logger
}

// Dispatcher runs command-response exchanges over a Transport.
//
// A Dispatcher is not safe for concurrent use. Callers serialize access by
// holding the CommLine for the duration of an exchange.
type Dispatcher struct {
	transport  Transport
	framer     *Framer
	buf        *ReceiveBuffer
	clock      Clock
	logger     *zap.Logger
	retryDelay time.Duration

	// state of the command started with Begin
	cmd       Command
	active    bool
	remaining int
	retrying  bool
	retryAt   time.Time
}

func NewDispatcher(t Transport, config DispatcherConfig) *Dispatcher {
	clock := config.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retryDelay := config.RetryDelay
	if retryDelay == 0 {
		retryDelay = DefaultRetryDelay
	}

	buf := NewReceiveBuffer(config.BufferSize)
	return &Dispatcher{
		transport:  t,
		framer:     NewFramer(t, buf, clock),
		buf:        buf,
		clock:      clock,
		logger:     logger,
		retryDelay: retryDelay,
	}
}

// Buffer returns the response of the last exchange.
func (d *Dispatcher) Buffer() *ReceiveBuffer { return d.buf }

// Send writes a command line. Bytes already waiting on the transport are
// discarded first so a late unsolicited message cannot be taken for the
// answer.
func (d *Dispatcher) Send(text string) error {
	if err := d.discardPending(); err != nil {
		return err
	}
	return d.Write([]byte(text + at.CR))
}

// Write sends raw bytes, such as a message body after the input prompt.
func (d *Dispatcher) Write(p []byte) error {
	n, err := d.transport.Write(p)
	if err != nil {
		return fmt.Errorf("write %q: %w", p, err)
	}
	if n < len(p) {
		return fmt.Errorf("write %q: %w", p, io.ErrShortWrite)
	}
	return nil
}

// Receive frames one response.
func (d *Dispatcher) Receive(ctx context.Context, timeout, interChar time.Duration) (FramingOutcome, error) {
	d.framer.Begin(timeout, interChar)
	return d.framer.Wait(ctx)
}

// Expect frames one response and searches it for token.
func (d *Dispatcher) Expect(ctx context.Context, timeout, interChar time.Duration, token string) (CommandOutcome, error) {
	outcome, err := d.Receive(ctx, timeout, interChar)
	if err != nil {
		return NoResponse, err
	}
	return d.classify(outcome, token), nil
}

// SendAndWait sends cmd and waits for its response. Only silence is
// retried: a response lacking the expected token is final.
func (d *Dispatcher) SendAndWait(ctx context.Context, cmd Command) (CommandOutcome, error) {
	attempts := max(cmd.Attempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			d.clock.Sleep(d.retryDelay)
			if err := ctx.Err(); err != nil {
				return NoResponse, err
			}
		}

		if err := d.Send(cmd.Text); err != nil {
			return NoResponse, err
		}
		outcome, err := d.Expect(ctx, cmd.Timeout, cmd.InterChar, cmd.Expect)
		if err != nil || outcome != NoResponse {
			d.logger.Debug("command completed",
				zap.String("command", cmd.Text),
				zap.Int("attempt", attempt),
				zap.Stringer("outcome", outcome),
				zap.Error(err))
			return outcome, err
		}

		d.logger.Debug("command got no response",
			zap.String("command", cmd.Text),
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts))
	}

	return NoResponse, nil
}

// Begin sends the first attempt of cmd without waiting for the response.
// Progress is driven by Poll.
func (d *Dispatcher) Begin(cmd Command) error {
	d.cmd = cmd
	d.active = true
	d.retrying = false
	d.remaining = max(cmd.Attempts, 1)
	return d.issue()
}

// Poll advances the command started with Begin without blocking. A timed
// out attempt is resent once the retry delay has elapsed, as long as
// attempts remain.
func (d *Dispatcher) Poll() (PollStatus, error) {
	if !d.active {
		return Failed, errNoCommand
	}

	if d.retrying {
		if d.clock.Now().Before(d.retryAt) {
			return Waiting, nil
		}
		d.retrying = false
		if err := d.issue(); err != nil {
			return Failed, err
		}
		return Waiting, nil
	}

	outcome, err := d.framer.Poll()
	if err != nil {
		d.active = false
		return Failed, err
	}

	switch outcome {
	case Finished:
		d.active = false
		if d.buf.Contains(d.cmd.Expect) {
			return Matched, nil
		}
		return Failed, nil
	case TimedOut:
		if d.remaining > 0 {
			d.retrying = true
			d.retryAt = d.clock.Now().Add(d.retryDelay)
			return Waiting, nil
		}
		d.active = false
		return Failed, nil
	}
	return Waiting, nil
}

func (d *Dispatcher) issue() error {
	d.remaining--
	if err := d.Send(d.cmd.Text); err != nil {
		d.active = false
		return err
	}
	d.framer.Begin(d.cmd.Timeout, d.cmd.InterChar)
	return nil
}

func (d *Dispatcher) classify(outcome FramingOutcome, token string) CommandOutcome {
	switch {
	case outcome != Finished:
		return NoResponse
	case d.buf.Contains(token):
		return ResponseMatched
	default:
		return ResponseMismatch
	}
}

func (d *Dispatcher) discardPending() error {
	n := d.transport.Buffered()
	for range n {
		if _, err := d.transport.ReadByte(); err != nil {
			return fmt.Errorf("discard stale input: %w", err)
		}
	}
	return nil
}
