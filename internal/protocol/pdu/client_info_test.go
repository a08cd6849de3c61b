package pdu

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ClientInfo_Serialize_NoSecurityHeader(t *testing.T) {
	info := NewClientInfo("DOMAIN", "alice", "hunter2")

	wire := info.Serialize(false)

	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(wire[0:4]))
	flags := binary.LittleEndian.Uint32(wire[4:8])
	require.NotZero(t, flags&InfoUnicode)
	require.NotZero(t, flags&InfoDisableCtrlAltDel)
	require.NotZero(t, flags&InfoMouse)
}

func Test_ClientInfo_Serialize_WithSecurityHeader(t *testing.T) {
	info := NewClientInfo("", "bob", "s3cr3t")

	plain := info.Serialize(false)
	wrapped := info.Serialize(true)

	// Wrapping adds the fixed security header (flags + flagsHi), nothing else.
	require.Equal(t, len(plain)+4, len(wrapped))
}

func Test_ClientInfo_Serialize_EmptyFieldsRoundTripLength(t *testing.T) {
	info := NewClientInfo("", "", "")
	wire := info.Serialize(false)

	// CodePage(4) + Flags(4) + 5 string-length fields(2 each) + 5 empty
	// null-terminated strings(2 each) + 5 extraInfo address/dir fields(2
	// each) + 172-byte time zone + sessionId(4) + performanceFlags(4).
	require.Equal(t, 4+4+5*2+5*2+5*2+172+4+4, len(wire))
}
