package x224

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarmo/go-rdp/internal/cursor"
)

func TestConnectionRequestEncode(t *testing.T) {
	req := ConnectionRequest{
		DstRef:      0x1234,
		SrcRef:      0x5678,
		ClassOption: 0x01,
		UserData:    []byte{0xAA, 0xBB},
	}

	buf := make([]byte, req.Size())
	w := cursor.NewWriter(buf)
	require.NoError(t, req.Encode(w))
	require.Equal(t, []byte{0x08, 0xE0, 0x12, 0x34, 0x56, 0x78, 0x01, 0xAA, 0xBB}, w.Bytes())
}

func TestConnectionRequestEncodeNoUserData(t *testing.T) {
	req := ConnectionRequest{ClassOption: 0}

	buf := make([]byte, req.Size())
	w := cursor.NewWriter(buf)
	require.NoError(t, req.Encode(w))
	require.Equal(t, []byte{0x06, 0xE0, 0x00, 0x00, 0x00, 0x00, 0x00}, w.Bytes())
}

func TestConnectionConfirmDecode(t *testing.T) {
	input := []byte{
		0x0e, 0xd0, 0x00, 0x00,
		0x12, 0x34, 0x00,
		0x02, 0x00, 0x08, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	var cc ConnectionConfirm
	require.NoError(t, cc.Decode(cursor.NewReader(input)))
	require.Equal(t, uint16(0), cc.DstRef)
	require.Equal(t, uint16(0x1234), cc.SrcRef)
	require.Equal(t, uint8(0), cc.ClassOption)
	require.Len(t, cc.UserData, 8)
}

func TestConnectionConfirmDecodeWrongCode(t *testing.T) {
	input := []byte{
		0x0e, 0xE0, 0x00, 0x00,
		0x12, 0x34, 0x00,
		0x02, 0x00, 0x08, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	var cc ConnectionConfirm
	err := cc.Decode(cursor.NewReader(input))
	require.Error(t, err)
}

func TestConnectionConfirmDecodeShortLI(t *testing.T) {
	input := []byte{0x03, 0xd0, 0x00}

	var cc ConnectionConfirm
	err := cc.Decode(cursor.NewReader(input))
	require.Error(t, err)
}

func TestConnectionConfirmDecodeTruncated(t *testing.T) {
	input := []byte{0x0e, 0xd0, 0x00, 0x00, 0x12}

	var cc ConnectionConfirm
	err := cc.Decode(cursor.NewReader(input))
	require.Error(t, err)
}

func TestDataTPDURoundTrip(t *testing.T) {
	d := DataTPDU{UserData: []byte{0x01, 0x02, 0x03, 0x04, 0x05}}

	buf := make([]byte, d.Size())
	w := cursor.NewWriter(buf)
	require.NoError(t, d.Encode(w))
	require.Equal(t, []byte{0x02, 0xF0, 0x80, 0x01, 0x02, 0x03, 0x04, 0x05}, w.Bytes())

	var parsed DataTPDU
	require.NoError(t, parsed.Decode(cursor.NewReader(w.Bytes())))
	require.Equal(t, d.UserData, parsed.UserData)
}

func TestDataTPDUDecodeWrongLI(t *testing.T) {
	var d DataTPDU
	err := d.Decode(cursor.NewReader([]byte{0x03, 0xF0, 0x80}))
	require.Error(t, err)
}
