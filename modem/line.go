package modem

import "go.uber.org/atomic"

// LineState tells who currently owns the communication line.
type LineState uint32

const (
	LineFree LineState = iota
	// LineCommand is held while a command-response exchange is running.
	LineCommand
	// LineData is held for multi-step sessions such as HTTP requests.
	LineData
)

func (s LineState) String() string {
	switch s {
	case LineFree:
		return "free"
	case LineCommand:
		return "in command"
	case LineData:
		return "in data"
	default:
		return "unknown"
	}
}

// CommLine is the advisory lock over the single modem serial line.
//
// Acquisition never blocks: an operation finding the line taken gives up
// with ErrLineBusy and leaves the state untouched.
type CommLine struct {
	state atomic.Uint32
}

// State returns the current holder.
func (l *CommLine) State() LineState { return LineState(l.state.Load()) }

// TryAcquire moves the line from LineFree to s. It reports false when the
// line is held or s is LineFree.
func (l *CommLine) TryAcquire(s LineState) bool {
	if s == LineFree {
		return false
	}
	return l.state.CompareAndSwap(uint32(LineFree), uint32(s))
}

// Release frees the line. Releasing a free line is a no-op.
func (l *CommLine) Release() { l.state.Store(uint32(LineFree)) }

// Hold acquires the line in state s and returns the function releasing it.
// The release function is safe to call more than once; only the first call
// has an effect, so an early explicit release followed by a deferred one
// does not free a line acquired by someone else in between.
func (l *CommLine) Hold(s LineState) (release func(), err error) {
	if !l.TryAcquire(s) {
		return nil, ErrLineBusy
	}
	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			l.Release()
		}
	}, nil
}
