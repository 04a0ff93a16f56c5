package modem

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// TestTransport is a scripted Transport for tests. Every command written to
// it is answered with the next response registered for that command; the
// last registered response keeps answering once the others are used up.
// Unscripted commands get no answer at all.
//
// A command is the written text up to a carriage return, or up to and
// including a Ctrl-Z or ESC terminating a message body.
type TestTransport struct {
	mu       sync.Mutex
	scripts  map[string][]string
	pending  []byte
	partial  []byte
	written  []string
	writeErr error
	failOnce map[string]error
	closed   bool
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{scripts: make(map[string][]string)}
}

// Respond queues responses for cmd. An empty response stands for silence.
func (t *TestTransport) Respond(cmd string, responses ...string) *TestTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scripts[cmd] = append(t.scripts[cmd], responses...)
	return t
}

// Feed makes data available for reading, as if sent by the modem
// unprompted.
func (t *TestTransport) Feed(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, data...)
}

// FailWrites makes every following Write fail with err.
func (t *TestTransport) FailWrites(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

// FailNextWrite makes the next write of cmd fail with err. The command is
// not recorded as written.
func (t *TestTransport) FailNextWrite(cmd string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failOnce == nil {
		t.failOnce = make(map[string]error)
	}
	t.failOnce[cmd] = err
}

// Written returns the commands written so far.
func (t *TestTransport) Written() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.written...)
}

// Count returns how many times cmd was written.
func (t *TestTransport) Count(cmd string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, w := range t.written {
		if w == cmd {
			n++
		}
	}
	return n
}

// ClearWritten forgets the commands written so far.
func (t *TestTransport) ClearWritten() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.written = nil
}

// Closed reports whether Close was called.
func (t *TestTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *TestTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, io.ErrClosedPipe
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	key := string(bytes.TrimSuffix(p, []byte("\r")))
	if err, ok := t.failOnce[key]; ok {
		delete(t.failOnce, key)
		return 0, err
	}

	t.partial = append(t.partial, p...)
	for {
		i := bytes.IndexAny(t.partial, "\r\x1a\x1b")
		if i < 0 {
			break
		}
		cmd := string(t.partial[:i])
		if t.partial[i] != '\r' {
			cmd = string(t.partial[:i+1])
		}
		t.partial = t.partial[i+1:]
		t.answer(cmd)
	}
	return len(p), nil
}

func (t *TestTransport) answer(cmd string) {
	t.written = append(t.written, cmd)

	queue := t.scripts[cmd]
	if len(queue) == 0 {
		return
	}
	t.pending = append(t.pending, queue[0]...)
	if len(queue) > 1 {
		t.scripts[cmd] = queue[1:]
	}
}

func (t *TestTransport) Buffered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *TestTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return 0, io.EOF
	}
	c := t.pending[0]
	t.pending = t.pending[1:]
	return c, nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// TestClock is a virtual Clock: Sleep advances the time instantly.
type TestClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewTestClock() *TestClock {
	return &TestClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *TestClock) Sleep(d time.Duration) { c.Advance(d) }

// Advance moves the clock forward by d.
func (c *TestClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
