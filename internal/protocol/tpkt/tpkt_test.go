package tpkt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarmo/go-rdp/internal/cursor"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Length: 23}

	buf := make([]byte, h.Size())
	w := cursor.NewWriter(buf)
	require.NoError(t, h.Encode(w))
	require.Equal(t, []byte{0x03, 0x00, 0x00, 0x17}, w.Bytes())

	var parsed Header
	require.NoError(t, parsed.Decode(cursor.NewReader(w.Bytes())))
	require.Equal(t, h, parsed)
}

func TestHeaderDecodeWrongVersion(t *testing.T) {
	var h Header
	err := h.Decode(cursor.NewReader([]byte{0x02, 0x00, 0x00, 0x04}))
	require.Error(t, err)
}

func TestHeaderDecodeLengthTooShort(t *testing.T) {
	var h Header
	err := h.Decode(cursor.NewReader([]byte{0x03, 0x00, 0x00, 0x02}))
	require.Error(t, err)
}

func TestFrameLength(t *testing.T) {
	length, ok := FrameLength([]byte{0x03, 0x00, 0x00, 0x2A})
	require.True(t, ok)
	require.Equal(t, 0x2A, length)
}

func TestFrameLengthShortPrefix(t *testing.T) {
	_, ok := FrameLength([]byte{0x03, 0x00})
	require.False(t, ok)
}
