package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -destination=mock_transport.go -package=modem . Transport,Dialer

// ByteSource is the receive side of a Transport.
type ByteSource interface {
	// Buffered returns the number of bytes that can be read without
	// blocking.
	Buffered() int
	// ReadByte returns the next received byte. It is only called while
	// Buffered reports pending bytes.
	ReadByte() (byte, error)
}

// Transport represents an established, bidirectional byte stream to a GSM modem.
//
// A Transport is assumed to be already connected and ready for use. The
// receive side is polled: callers ask how many bytes are pending and read
// exactly those, so no read ever blocks. Typical implementations wrap
// serial ports or TCP connections to emulators with NewStreamTransport.
type Transport interface {
	io.Writer
	ByteSource
	io.Closer
}

// Dialer opens a Transport to a GSM modem.
//
// Dialer abstracts how the modem connection is created (for example, via a
// serial port, TCP-based emulator, or test double) and is intended to be used
// during modem construction only. Once a Transport is obtained, the Dialer is
// no longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It may
	// perform blocking operations and should respect cancellation and deadlines
	// provided by the context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens a GSM modem over a serial port using go.bug.st/serial.
type SerialDialer struct {
	PortName string
	// BaudRate is used when Mode is nil. Zero selects 9600, the rate fixed
	// on the module during initialization.
	BaudRate int
	Mode     *serial.Mode
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("gsm: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("gsm: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud == 0 {
			baud = 9600
		}
		mode = &serial.Mode{
			BaudRate: baud,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("gsm: open %s: %w", d.PortName, err)
	}
	return NewStreamTransport(port), nil
}

// TCPDialer reaches a modem exported over TCP, such as a serial-to-network
// bridge or an emulator.
type TCPDialer struct {
	Address   string
	KeepAlive time.Duration
}

func (d TCPDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("gsm: context is nil")
	}
	if d.Address == "" {
		return nil, errors.New("gsm: address is required")
	}
	keepAlive := d.KeepAlive
	if keepAlive == 0 {
		keepAlive = 30 * time.Second
	}

	nd := net.Dialer{KeepAlive: keepAlive}
	conn, err := nd.DialContext(ctx, "tcp", d.Address)
	if err != nil {
		return nil, fmt.Errorf("gsm: dial %s: %w", d.Address, err)
	}
	return NewStreamTransport(conn), nil
}

// ParseDialer returns the Dialer for a connection string. "socket://host:port"
// and "tcp://host:port" dial over the network, anything else names a serial
// device.
func ParseDialer(link string, baudRate int) (Dialer, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("gsm: parse connection string %q: %w", link, err)
	}

	switch u.Scheme {
	case "socket", "tcp":
		return TCPDialer{Address: u.Host}, nil
	case "file", "":
		return SerialDialer{PortName: u.Path, BaudRate: baudRate}, nil
	default:
		return nil, fmt.Errorf("gsm: unsupported connection string %q", link)
	}
}

// streamTransport adapts a blocking stream to the polled Transport. A
// reader goroutine moves incoming bytes into a pending queue until the
// stream fails or is closed.
type streamTransport struct {
	rwc io.ReadWriteCloser

	mu      sync.Mutex
	pending []byte
	err     error

	done chan struct{}
}

// NewStreamTransport wraps rwc. Close must be called to stop the reader.
func NewStreamTransport(rwc io.ReadWriteCloser) Transport {
	t := &streamTransport{
		rwc:  rwc,
		done: make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *streamTransport) readLoop() {
	defer close(t.done)

	buf := make([]byte, 256)
	for {
		n, err := t.rwc.Read(buf)

		t.mu.Lock()
		t.pending = append(t.pending, buf[:n]...)
		if err != nil {
			t.err = err
			t.mu.Unlock()
			return
		}
		t.mu.Unlock()
	}
}

func (t *streamTransport) Write(p []byte) (int, error) {
	return t.rwc.Write(p)
}

func (t *streamTransport) Buffered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *streamTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.pending) == 0 {
		if t.err != nil {
			return 0, t.err
		}
		return 0, io.EOF
	}
	c := t.pending[0]
	t.pending = t.pending[1:]
	return c, nil
}

func (t *streamTransport) Close() error {
	err := t.rwc.Close()
	<-t.done
	return err
}
