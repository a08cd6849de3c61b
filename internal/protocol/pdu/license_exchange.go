package pdu

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"

	"github.com/rcarmo/go-rdp/internal/auth"
	"github.com/rcarmo/go-rdp/internal/codec"
)

// License message types, the preamble MsgType field (MS-RDPELE 2.2.2).
const (
	LicenseMsgLicenseRequest            uint8 = 0x01
	LicenseMsgPlatformChallenge         uint8 = 0x02
	LicenseMsgNewLicense                uint8 = 0x03
	LicenseMsgUpgradeLicense            uint8 = 0x04
	LicenseMsgLicenseInfo               uint8 = 0x12
	LicenseMsgNewLicenseRequest         uint8 = 0x13
	LicenseMsgPlatformChallengeResponse uint8 = 0x15
	LicenseMsgErrorAlert                uint8 = 0xFF
)

// licenseSecurityFlag is SEC_LICENSE_PKT, the bit every licensing PDU's
// security header must carry.
const licenseSecurityFlag uint16 = 0x0080

// platformIDThisClient is the PLATFORM_CHALLENGE_RESPONSE/NEW_LICENSE_REQUEST
// platform id this client reports: the WINNT_POST_52 OS tag with an image id
// of zero.
const platformIDThisClient uint32 = 0x05000000 // CLIENT_OS_ID_WINNT_POST_52, no CLIENT_IMAGE_ID bits

// LicenseProductInfo is the TS_LICENSE_PRODUCT_INFO structure (MS-RDPELE 2.2.2.1.1).
type LicenseProductInfo struct {
	Version     uint32
	CompanyName []byte
	ProductID   []byte
}

func (p *LicenseProductInfo) Deserialize(wire io.Reader) error {
	if err := binary.Read(wire, binary.LittleEndian, &p.Version); err != nil {
		return err
	}

	var companyNameLen uint32
	if err := binary.Read(wire, binary.LittleEndian, &companyNameLen); err != nil {
		return err
	}
	p.CompanyName = make([]byte, companyNameLen)
	if _, err := io.ReadFull(wire, p.CompanyName); err != nil {
		return err
	}

	var productIDLen uint32
	if err := binary.Read(wire, binary.LittleEndian, &productIDLen); err != nil {
		return err
	}
	p.ProductID = make([]byte, productIDLen)
	if _, err := io.ReadFull(wire, p.ProductID); err != nil {
		return err
	}

	return nil
}

// ServerLicenseRequest is the TS_LICENSE_REQUEST message (MS-RDPELE 2.2.2.1),
// the server's opening move of the licensing sub-sequence.
type ServerLicenseRequest struct {
	ServerRandom      [32]byte
	ProductInfo       LicenseProductInfo
	KeyExchangeList   LicensingBinaryBlob
	ServerCertificate LicensingBinaryBlob
	ScopeList         []LicensingBinaryBlob
}

func (r *ServerLicenseRequest) Deserialize(wire io.Reader) error {
	if err := binary.Read(wire, binary.LittleEndian, &r.ServerRandom); err != nil {
		return err
	}
	if err := r.ProductInfo.Deserialize(wire); err != nil {
		return err
	}
	if err := r.KeyExchangeList.Deserialize(wire); err != nil {
		return err
	}
	if err := r.ServerCertificate.Deserialize(wire); err != nil {
		return err
	}

	var scopeCount uint32
	if err := binary.Read(wire, binary.LittleEndian, &scopeCount); err != nil {
		return err
	}
	r.ScopeList = make([]LicensingBinaryBlob, scopeCount)
	for i := range r.ScopeList {
		if err := r.ScopeList[i].Deserialize(wire); err != nil {
			return err
		}
	}

	return nil
}

// ServerPlatformChallenge is the TS_PLATFORM_CHALLENGE message (MS-RDPELE 2.2.2.4).
type ServerPlatformChallenge struct {
	EncryptedPlatformChallenge LicensingBinaryBlob
	MACData                    [16]byte
}

func (c *ServerPlatformChallenge) Deserialize(wire io.Reader) error {
	if err := c.EncryptedPlatformChallenge.Deserialize(wire); err != nil {
		return err
	}
	return binary.Read(wire, binary.LittleEndian, &c.MACData)
}

// ServerNewLicense is the TS_NEW_LICENSE message (MS-RDPELE 2.2.2.6): the
// issued license blob, opaque to this client.
type ServerNewLicense struct {
	EncryptedLicenseInfo LicensingBinaryBlob
	MACData              [16]byte
}

func (l *ServerNewLicense) Deserialize(wire io.Reader) error {
	if err := l.EncryptedLicenseInfo.Deserialize(wire); err != nil {
		return err
	}
	return binary.Read(wire, binary.LittleEndian, &l.MACData)
}

// LicenseMessage is the tagged union of every server licensing message a
// client may receive, dispatched by the preamble's MsgType. A message type
// this client does not recognize still decodes the preamble successfully
// (server licensing is optional) with every typed field left nil.
type LicenseMessage struct {
	Preamble LicensingPreamble

	LicenseRequest    *ServerLicenseRequest
	PlatformChallenge *ServerPlatformChallenge
	NewLicense        *ServerNewLicense
	ErrorAlert        *LicensingErrorMessage
}

// DeserializeLicenseMessage reads the RDP security header, the licensing
// preamble, and the message body it introduces.
func DeserializeLicenseMessage(wire io.Reader) (*LicenseMessage, error) {
	securityFlag, err := codec.UnwrapSecurityFlag(wire)
	if err != nil {
		return nil, err
	}
	if securityFlag&licenseSecurityFlag == 0 {
		return nil, errors.New("bad license header")
	}

	msg := &LicenseMessage{}
	if err := msg.Preamble.Deserialize(wire); err != nil {
		return nil, err
	}

	switch msg.Preamble.MsgType {
	case LicenseMsgLicenseRequest:
		msg.LicenseRequest = &ServerLicenseRequest{}
		return msg, msg.LicenseRequest.Deserialize(wire)
	case LicenseMsgPlatformChallenge:
		msg.PlatformChallenge = &ServerPlatformChallenge{}
		return msg, msg.PlatformChallenge.Deserialize(wire)
	case LicenseMsgNewLicense:
		msg.NewLicense = &ServerNewLicense{}
		return msg, msg.NewLicense.Deserialize(wire)
	case LicenseMsgErrorAlert:
		msg.ErrorAlert = &LicensingErrorMessage{}
		return msg, msg.ErrorAlert.Deserialize(wire)
	default:
		return msg, nil
	}
}

// licenseBlob serializes a LICENSE_BINARY_BLOB for a client message.
func licenseBlob(blobType uint16, data []byte) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, blobType)
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(data))) // #nosec G115
	buf.Write(data)
	return buf.Bytes()
}

const (
	licenseBlobTypeRandom uint16 = 0x0001
	licenseBlobTypeOther  uint16 = 0x0010
)

// ClientNewLicenseRequest is the client's TS_NEW_LICENSE_REQUEST message
// (MS-RDPELE 2.2.2.2), sent the first time a user connects to a license
// server that has never issued this client a license. Without a real
// session key exchange (this client only supports TLS/CredSSP security,
// never standard RDP security) EncryptedPreMasterSecret carries ClientRandom
// unencrypted; a license server accepts this and falls back to the
// unencrypted-blob path it already needs for non-RDP-security clients.
type ClientNewLicenseRequest struct {
	ClientRandom [32]byte
	Username     string
	Domain       string
}

func NewClientNewLicenseRequest(username, domain string) *ClientNewLicenseRequest {
	req := &ClientNewLicenseRequest{Username: username, Domain: domain}
	_, _ = rand.Read(req.ClientRandom[:])
	return req
}

func (r *ClientNewLicenseRequest) Serialize() []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, binary.LittleEndian, uint32(1)) // KEY_EXCHANGE_ALG_RSA
	_ = binary.Write(body, binary.LittleEndian, platformIDThisClient)
	_ = binary.Write(body, binary.LittleEndian, r.ClientRandom)
	body.Write(licenseBlob(licenseBlobTypeRandom, r.ClientRandom[:]))
	body.Write(licenseBlob(licenseBlobTypeOther, append([]byte(r.Username), 0)))
	body.Write(licenseBlob(licenseBlobTypeOther, append([]byte(r.Domain), 0)))

	return wrapLicenseMessage(LicenseMsgNewLicenseRequest, body.Bytes())
}

// ClientHardwareID computes the simplified TS_LICENSE_CLIENT_HWID the
// PLATFORM_CHALLENGE_RESPONSE carries: PlatformId followed by a 16-byte
// digest binding it to the session's client random. The real MS-RDPELE
// hardware-id derivation keys an RC4 stream with a session key produced
// during standard RDP security's key exchange; this client never performs
// that exchange (TLS/CredSSP only), so it substitutes an MD4 digest of the
// same input material, reusing the one hash primitive already carried by
// this module's auth package.
func ClientHardwareID(clientRandom [32]byte) [20]byte {
	var hwid [20]byte
	binary.LittleEndian.PutUint32(hwid[0:4], platformIDThisClient)
	copy(hwid[4:], auth.MD4(clientRandom[:]))
	return hwid
}

// ClientPlatformChallengeResponse is the client's TS_PLATFORM_CHALLENGE_RESPONSE
// message (MS-RDPELE 2.2.2.5).
type ClientPlatformChallengeResponse struct {
	ClientRandom      [32]byte
	PlatformChallenge []byte
}

func (r *ClientPlatformChallengeResponse) Serialize() []byte {
	hwid := ClientHardwareID(r.ClientRandom)

	body := new(bytes.Buffer)
	body.Write(licenseBlob(licenseBlobTypeOther, r.PlatformChallenge))
	body.Write(licenseBlob(licenseBlobTypeOther, hwid[:]))
	_ = binary.Write(body, binary.LittleEndian, [16]byte{}) // MACData, left zero without a derived session key

	return wrapLicenseMessage(LicenseMsgPlatformChallengeResponse, body.Bytes())
}

// wrapLicenseMessage prefixes a licensing message body with its preamble and
// the RDP security header every licensing PDU carries.
func wrapLicenseMessage(msgType uint8, body []byte) []byte {
	preamble := new(bytes.Buffer)
	_ = binary.Write(preamble, binary.LittleEndian, msgType)
	_ = binary.Write(preamble, binary.LittleEndian, uint8(0x03)) // PREAMBLE_VERSION_3
	_ = binary.Write(preamble, binary.LittleEndian, uint16(4+len(body)))

	return codec.WrapSecurityFlag(licenseSecurityFlag, append(preamble.Bytes(), body...))
}
