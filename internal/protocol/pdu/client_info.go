package pdu

import (
	"bytes"
	"encoding/binary"

	"github.com/rcarmo/go-rdp/internal/codec"
)

// Client Info flags (MS-RDPBCGR 2.2.1.11.1.1, INFO_*).
const (
	InfoMouse               uint32 = 0x00000001
	InfoDisableCtrlAltDel   uint32 = 0x00000002
	InfoUnicode             uint32 = 0x00000010
	InfoMaximizeShell       uint32 = 0x00000020
	InfoLogonNotify         uint32 = 0x00000040
	InfoCompression         uint32 = 0x00000080
	InfoEnableWindowsKey    uint32 = 0x00000100
	InfoLogonErrors         uint32 = 0x00000400
	InfoMouseHasWheel       uint32 = 0x00020000
	InfoPasswordIsScPin     uint32 = 0x00040000
	InfoNoAudioPlayback     uint32 = 0x00080000
	InfoRail                uint32 = 0x00200000
)

// secInfoPkt is SEC_INFO_PKT, the security header flag every Client Info PDU
// carries when a security header is present at all (MS-RDPBCGR 2.2.1.11).
const secInfoPkt uint16 = 0x0040

// ClientInfo is the TS_INFO_PACKET (MS-RDPBCGR 2.2.1.11.1.1): the client's
// logon credentials and session preferences, sent once during the Secure
// Settings Exchange phase. Every string is transmitted UTF-16LE with a
// trailing null code unit, per the wire format's null-terminated convention.
type ClientInfo struct {
	CodePage       uint32
	Flags          uint32
	Domain         string
	UserName       string
	Password       string
	AlternateShell string
	WorkingDir     string
}

// NewClientInfo builds a Client Info PDU with the flags this client always
// sets: mouse present, Ctrl+Alt+Del disabled server-side (the client handles
// it locally), Unicode strings, and logon error notification.
func NewClientInfo(domain, username, password string) *ClientInfo {
	return &ClientInfo{
		Flags:    InfoMouse | InfoDisableCtrlAltDel | InfoUnicode | InfoLogonNotify | InfoLogonErrors,
		Domain:   domain,
		UserName: username,
		Password: password,
	}
}

func nullTerminatedUnicode(s string) []byte {
	return append(codec.Encode(s), 0, 0)
}

// Serialize encodes the PDU to wire format. includeSecurityHeader must be
// false when Enhanced RDP Security (TLS/CredSSP) is in effect: MS-RDPBCGR
// 2.2.1.11.1.1 forbids the security header once the external security
// protocol is already providing confidentiality.
func (info *ClientInfo) Serialize(includeSecurityHeader bool) []byte {
	domain := nullTerminatedUnicode(info.Domain)
	username := nullTerminatedUnicode(info.UserName)
	password := nullTerminatedUnicode(info.Password)
	shell := nullTerminatedUnicode(info.AlternateShell)
	workingDir := nullTerminatedUnicode(info.WorkingDir)

	body := new(bytes.Buffer)
	_ = binary.Write(body, binary.LittleEndian, info.CodePage)
	_ = binary.Write(body, binary.LittleEndian, info.Flags)
	_ = binary.Write(body, binary.LittleEndian, uint16(len(domain)-2))   // #nosec G115
	_ = binary.Write(body, binary.LittleEndian, uint16(len(username)-2)) // #nosec G115
	_ = binary.Write(body, binary.LittleEndian, uint16(len(password)-2)) // #nosec G115
	_ = binary.Write(body, binary.LittleEndian, uint16(len(shell)-2))    // #nosec G115
	_ = binary.Write(body, binary.LittleEndian, uint16(len(workingDir)-2))
	body.Write(domain)
	body.Write(username)
	body.Write(password)
	body.Write(shell)
	body.Write(workingDir)

	// extraInfo (TS_EXTENDED_INFO_PACKET): CLIENT_ADDRESS_FAMILY_INET with an
	// empty address and directory; the time zone, session id and performance
	// flags are zero.
	_ = binary.Write(body, binary.LittleEndian, uint16(0x0002)) // clientAddressFamily AF_INET
	_ = binary.Write(body, binary.LittleEndian, uint16(2))      // cbClientAddress (empty, null-terminated)
	body.Write([]byte{0, 0})
	_ = binary.Write(body, binary.LittleEndian, uint16(2)) // cbClientDir (empty, null-terminated)
	body.Write([]byte{0, 0})
	body.Write(make([]byte, 172)) // clientTimeZone, left zeroed (UTC, no DST adjustment)
	_ = binary.Write(body, binary.LittleEndian, uint32(0)) // clientSessionId
	_ = binary.Write(body, binary.LittleEndian, uint32(0)) // performanceFlags

	if !includeSecurityHeader {
		return body.Bytes()
	}
	return codec.WrapSecurityFlag(secInfoPkt, body.Bytes())
}
