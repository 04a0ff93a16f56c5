package modem

import "i4.energy/across/gsmgw/at"

// DefaultBufferSize is the receive capacity of a SIM800-class module's
// response buffer.
const DefaultBufferSize = 200

// ReceiveBuffer accumulates the bytes of a single framed response.
//
// The buffer has a fixed capacity. Bytes arriving after it is full are
// dropped, so a response longer than the capacity is silently truncated.
// The backing array always holds a 0x00 sentinel right after the logical
// contents, which keeps the contents usable by code expecting a terminated
// string.
type ReceiveBuffer struct {
	data []byte
	n    int
}

// NewReceiveBuffer allocates a buffer holding up to size bytes. A size
// below 1 selects DefaultBufferSize.
func NewReceiveBuffer(size int) *ReceiveBuffer {
	if size < 1 {
		size = DefaultBufferSize
	}
	return &ReceiveBuffer{data: make([]byte, size+1)}
}

// Reset empties the buffer.
func (b *ReceiveBuffer) Reset() {
	b.n = 0
	b.data[0] = 0
}

// Append stores c and reports whether it was kept.
func (b *ReceiveBuffer) Append(c byte) bool {
	if b.n >= b.Cap() {
		return false
	}
	b.data[b.n] = c
	b.n++
	b.data[b.n] = 0
	return true
}

// Len is the number of stored bytes.
func (b *ReceiveBuffer) Len() int { return b.n }

// Cap is the maximum number of bytes the buffer stores.
func (b *ReceiveBuffer) Cap() int { return len(b.data) - 1 }

// Full reports whether further bytes would be dropped.
func (b *ReceiveBuffer) Full() bool { return b.n == b.Cap() }

// Bytes returns the stored bytes. The slice aliases the buffer and is only
// valid until the next Reset.
func (b *ReceiveBuffer) Bytes() []byte { return b.data[:b.n:b.n] }

func (b *ReceiveBuffer) String() string { return string(b.data[:b.n]) }

// Contains reports whether token occurs in the stored bytes.
func (b *ReceiveBuffer) Contains(token string) bool {
	return at.Contains(b.Bytes(), token)
}
