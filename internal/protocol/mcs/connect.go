package mcs

import (
	"bytes"
	"errors"
	"io"

	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/protocol/encoding"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// ConnectPDUApplication identifies which BER APPLICATION-tagged PDU a
// ConnectPDU wraps. T.125 defines four; only connectInitial and
// connectResponse appear in the RDP connection sequence.
type ConnectPDUApplication uint8

const (
	connectInitial    ConnectPDUApplication = 101
	connectResponse   ConnectPDUApplication = 102
	connectAdditional ConnectPDUApplication = 103
	connectResult     ConnectPDUApplication = 104
)

// ClientConnectInitial is the T.125 Connect-Initial: the BER-encoded body
// of the first PDU sent over the X.224 connection, carrying the GCC
// Conference Create Request as its userData.
type ClientConnectInitial struct {
	calledDomainSelector  []byte
	callingDomainSelector []byte
	upwardFlag            bool
	targetParameters      domainParameters
	minimumParameters     domainParameters
	maximumParameters     domainParameters
	userData              []byte
}

// NewClientMCSConnectInitial builds a Connect-Initial with the domain
// parameter triplet MS-RDPBCGR clients send: generous maximums, the
// legacy 1056-byte minimum PDU size floor, and protocol version 2
// throughout.
func NewClientMCSConnectInitial(userData []byte) *ClientConnectInitial {
	return &ClientConnectInitial{
		calledDomainSelector:  []byte{0x01},
		callingDomainSelector: []byte{0x01},
		upwardFlag:            true,
		targetParameters: domainParameters{
			maxChannelIds:   34,
			maxUserIds:      2,
			maxTokenIds:     0,
			numPriorities:   1,
			minThroughput:   0,
			maxHeight:       1,
			maxMCSPDUsize:   65535,
			protocolVersion: 2,
		},
		minimumParameters: domainParameters{
			maxChannelIds:   1,
			maxUserIds:      1,
			maxTokenIds:     1,
			numPriorities:   1,
			minThroughput:   0,
			maxHeight:       1,
			maxMCSPDUsize:   1056,
			protocolVersion: 2,
		},
		maximumParameters: domainParameters{
			maxChannelIds:   65535,
			maxUserIds:      65535,
			maxTokenIds:     65535,
			numPriorities:   1,
			minThroughput:   0,
			maxHeight:       1,
			maxMCSPDUsize:   65535,
			protocolVersion: 2,
		},
		userData: userData,
	}
}

// NewClientConnectInitialPDU wraps a ClientConnectInitial in its
// APPLICATION-tagged ConnectPDU envelope, for callers outside this package
// that only see PDU values, never the Application tag constants.
func NewClientConnectInitialPDU(clientData *ClientConnectInitial) *ConnectPDU {
	return &ConnectPDU{Application: connectInitial, ClientConnectInitial: clientData}
}

func (pdu *ClientConnectInitial) Serialize() []byte {
	w := new(bytes.Buffer)

	encoding.BerWriteOctetString(pdu.calledDomainSelector, w)
	encoding.BerWriteOctetString(pdu.callingDomainSelector, w)
	encoding.BerWriteBoolean(pdu.upwardFlag, w)
	encoding.BerWriteSequence(pdu.targetParameters.Serialize(), w)
	encoding.BerWriteSequence(pdu.minimumParameters.Serialize(), w)
	encoding.BerWriteSequence(pdu.maximumParameters.Serialize(), w)
	encoding.BerWriteOctetString(pdu.userData, w)

	return w.Bytes()
}

// readDomainParameters validates the BER SEQUENCE tag wrapping a
// domainParameters block and parses the fields inside it.
func readDomainParameters(wire io.Reader) (domainParameters, error) {
	var params domainParameters

	isSequence, err := encoding.BerReadUniversalTag(encoding.TagSequence, true, wire)
	if err != nil {
		return params, err
	}
	if !isSequence {
		return params, errors.New("mcs: expected BER sequence tag for domain parameters")
	}

	length, err := encoding.BerReadLength(wire)
	if err != nil {
		return params, err
	}

	err = params.Deserialize(io.LimitReader(wire, int64(length)))
	return params, err
}

// ServerConnectResponse is the T.125 Connect-Response: the server's reply
// to Connect-Initial, carrying the negotiated domain parameters and the
// GCC Conference Create Response as its userData.
type ServerConnectResponse struct {
	Result           uint8
	CalledConnectId  int
	DomainParameters domainParameters
	UserData         []byte
}

func (pdu *ServerConnectResponse) Deserialize(wire io.Reader) error {
	var err error

	pdu.Result, err = encoding.BerReadEnumerated(wire)
	if err != nil {
		return err
	}

	pdu.CalledConnectId, err = encoding.BerReadInteger(wire)
	if err != nil {
		return err
	}

	pdu.DomainParameters, err = readDomainParameters(wire)
	if err != nil {
		return err
	}

	pdu.UserData, err = io.ReadAll(wire)
	return err
}

// ConnectPDU is the BER APPLICATION-tagged envelope around a
// ClientConnectInitial or ServerConnectResponse.
type ConnectPDU struct {
	Application ConnectPDUApplication

	ClientConnectInitial  *ClientConnectInitial
	ServerConnectResponse *ServerConnectResponse
}

func (pdu *ConnectPDU) Serialize() []byte {
	var body []byte

	switch pdu.Application {
	case connectInitial:
		body = pdu.ClientConnectInitial.Serialize()
	case connectResponse:
		// Only ever constructed on decode in this client; nothing to
		// serialize for this direction.
	}

	w := new(bytes.Buffer)
	encoding.BerWriteApplicationTag(uint8(pdu.Application), len(body), w)
	w.Write(body)

	return w.Bytes()
}

func (pdu *ConnectPDU) Deserialize(wire io.Reader) error {
	tag, err := encoding.BerReadApplicationTag(wire)
	if err != nil {
		return err
	}

	if _, err := encoding.BerReadLength(wire); err != nil {
		return err
	}

	pdu.Application = ConnectPDUApplication(tag)

	switch pdu.Application {
	case connectResponse:
		pdu.ServerConnectResponse = &ServerConnectResponse{}
		return pdu.ServerConnectResponse.Deserialize(wire)
	default:
		return ErrUnknownConnectApplication
	}
}

// Cursor bridge: Connect-Initial/Connect-Response framing is BER, out of
// scope to reimplement from scratch, so the wire logic above stays as a
// Serialize/Deserialize pair and only the module boundary speaks Cursor.

func (pdu *ConnectPDU) Name() string { return "mcs.ConnectPDU" }

func (pdu *ConnectPDU) Size() int { return len(pdu.Serialize()) }

func (pdu *ConnectPDU) Encode(dst *cursor.Writer) error {
	if _, err := dst.Write(pdu.Serialize()); err != nil {
		return rdperr.Encode("mcs.ConnectPDU", err)
	}
	return nil
}

func (pdu *ConnectPDU) Decode(src *cursor.Reader) error {
	if err := pdu.Deserialize(src); err != nil {
		return rdperr.Decode("mcs.ConnectPDU", err)
	}
	return nil
}
