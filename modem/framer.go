package modem

import (
	"context"
	"time"
)

// FramingOutcome is the state of a reception as seen by Framer.Poll.
type FramingOutcome int

const (
	// NotFinished means the reception is still in progress.
	NotFinished FramingOutcome = iota
	// Finished means bytes were received and the line went silent for at
	// least the inter-character timeout.
	Finished
	// TimedOut means no byte arrived within the initial timeout.
	TimedOut
)

func (o FramingOutcome) String() string {
	switch o {
	case NotFinished:
		return "not finished"
	case Finished:
		return "finished"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// framePollInterval is the pause between two polls in Framer.Wait.
const framePollInterval = time.Millisecond

type frameState int

const (
	frameIdle frameState = iota
	frameNotStarted
	frameStarted
	frameFinished
	frameTimedOut
)

// Framer decides when a response is complete. The modem protocol has no
// length prefix or reliable terminator, so a response ends when the line
// stays silent for the inter-character timeout after the last byte.
type Framer struct {
	src   ByteSource
	buf   *ReceiveBuffer
	clock Clock

	state     frameState
	initial   time.Duration
	interChar time.Duration
	began     time.Time
	lastByte  time.Time
}

// NewFramer creates a Framer reading from src into buf.
func NewFramer(src ByteSource, buf *ReceiveBuffer, clock Clock) *Framer {
	if clock == nil {
		clock = systemClock{}
	}
	return &Framer{src: src, buf: buf, clock: clock}
}

// Begin empties the buffer and arms a new reception. The first byte must
// arrive within initial; afterwards the reception finishes once no byte
// arrived for interChar.
func (f *Framer) Begin(initial, interChar time.Duration) {
	f.buf.Reset()
	f.initial = initial
	f.interChar = interChar
	f.began = f.clock.Now()
	f.state = frameNotStarted
}

// Poll advances the reception without blocking. Every byte available on
// the source is drained, even when the buffer is full. Finished and
// TimedOut are sticky until the next Begin.
func (f *Framer) Poll() (FramingOutcome, error) {
	switch f.state {
	case frameIdle:
		return NotFinished, errFramerIdle
	case frameFinished:
		return Finished, nil
	case frameTimedOut:
		return TimedOut, nil
	}

	received, err := f.drain()
	if err != nil {
		return NotFinished, err
	}

	now := f.clock.Now()
	if received {
		f.lastByte = now
		f.state = frameStarted
		return NotFinished, nil
	}

	switch f.state {
	case frameNotStarted:
		if now.Sub(f.began) >= f.initial {
			f.state = frameTimedOut
			return TimedOut, nil
		}
	case frameStarted:
		if now.Sub(f.lastByte) >= f.interChar {
			f.state = frameFinished
			return Finished, nil
		}
	}
	return NotFinished, nil
}

// Wait polls until the reception finishes or times out.
func (f *Framer) Wait(ctx context.Context) (FramingOutcome, error) {
	for {
		outcome, err := f.Poll()
		if err != nil || outcome != NotFinished {
			return outcome, err
		}
		if err := ctx.Err(); err != nil {
			return NotFinished, err
		}
		f.clock.Sleep(framePollInterval)
	}
}

// Buffer returns the buffer the Framer fills.
func (f *Framer) Buffer() *ReceiveBuffer { return f.buf }

func (f *Framer) drain() (bool, error) {
	n := f.src.Buffered()
	for i := 0; i < n; i++ {
		c, err := f.src.ReadByte()
		if err != nil {
			return i > 0, err
		}
		f.buf.Append(c)
	}
	return n > 0, nil
}
