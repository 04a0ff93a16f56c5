package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReceiveBuffer(t *testing.T) {
	t.Run("Default capacity", func(t *testing.T) {
		assert.Equal(t, DefaultBufferSize, NewReceiveBuffer(0).Cap())
	})

	t.Run("Drops bytes beyond capacity", func(t *testing.T) {
		buf := NewReceiveBuffer(4)
		for _, c := range []byte("OK\r\nERROR") {
			buf.Append(c)
		}

		assert.True(t, buf.Full())
		assert.Equal(t, 4, buf.Len())
		assert.Equal(t, "OK\r\n", buf.String())
		assert.False(t, buf.Append('X'))
	})

	t.Run("Keeps sentinel after contents", func(t *testing.T) {
		buf := NewReceiveBuffer(8)
		for _, c := range []byte("+CREG") {
			buf.Append(c)
		}

		assert.Equal(t, byte(0), buf.data[buf.Len()])
	})

	t.Run("Reset empties the buffer", func(t *testing.T) {
		buf := NewReceiveBuffer(8)
		buf.Append('O')
		buf.Append('K')
		buf.Reset()

		assert.Zero(t, buf.Len())
		assert.Empty(t, buf.Bytes())
		assert.False(t, buf.Contains("OK"))
	})

	t.Run("Contains searches logical contents only", func(t *testing.T) {
		buf := NewReceiveBuffer(8)
		for _, c := range []byte("+CPAS: 4") {
			buf.Append(c)
		}
		buf.Reset()
		for _, c := range []byte("+CP") {
			buf.Append(c)
		}

		assert.True(t, buf.Contains("+CP"))
		assert.False(t, buf.Contains("+CPAS"))
	})
}
