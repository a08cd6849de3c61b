package mcs

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/protocol/encoding"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// DomainMCSPDU choice bytes. T.125 packs the application tag into the high
// bits of a single leading byte; confirm PDUs additionally carry a fixed
// low-order suffix this module treats as part of the literal constant
// rather than deriving it, since it is not documented and only matters for
// byte-exact matching.
const (
	erectDomainRequest          uint8 = 0x04
	disconnectProviderUltimatum uint8 = 0x20
	attachUserRequest           uint8 = 0x28
	attachUserConfirm           uint8 = 0x2e
	channelJoinRequest          uint8 = 0x38
	channelJoinConfirm          uint8 = 0x3e

	// SendDataRequest and SendDataIndication are exported: the connector
	// and sub-sequences need to recognize them when routing received PDUs.
	SendDataRequest    uint8 = 0x64
	SendDataIndication uint8 = 0x68
)

// ClientAttachUserRequest is the T.125 Attach User Request: empty body.
type ClientAttachUserRequest struct{}

func (r *ClientAttachUserRequest) Serialize() []byte { return nil }

// NewErectDomainRequestPDU builds the DomainPDU wrapping a Client Erect
// Domain Request, for callers outside this package (the channel join
// sub-sequence) that only see PDU values, never the Application tag bytes.
func NewErectDomainRequestPDU() *DomainPDU {
	return &DomainPDU{
		Application:              erectDomainRequest,
		ClientErectDomainRequest: &ClientErectDomainRequest{},
	}
}

// NewAttachUserRequestPDU builds the DomainPDU wrapping a Client Attach
// User Request.
func NewAttachUserRequestPDU() *DomainPDU {
	return &DomainPDU{
		Application:             attachUserRequest,
		ClientAttachUserRequest: &ClientAttachUserRequest{},
	}
}

// NewChannelJoinRequestPDU builds the DomainPDU wrapping a Client Channel
// Join Request for the given initiator (the user id assigned by Attach
// User Confirm) and target channel id.
func NewChannelJoinRequestPDU(initiator, channelID uint16) *DomainPDU {
	return &DomainPDU{
		Application: channelJoinRequest,
		ClientChannelJoinRequest: &ClientChannelJoinRequest{
			Initiator: initiator,
			ChannelId: channelID,
		},
	}
}

// ServerAttachUserConfirm is the T.125 Attach User Confirm.
type ServerAttachUserConfirm struct {
	Result    uint8
	Initiator uint16
}

func (r *ServerAttachUserConfirm) Deserialize(wire io.Reader) error {
	result, err := encoding.PerReadEnumerates(wire)
	if err != nil {
		return err
	}
	r.Result = result

	r.Initiator, err = encoding.PerReadInteger16(1001, wire)
	return err
}

// ClientChannelJoinRequest is the T.125 Channel Join Request.
type ClientChannelJoinRequest struct {
	Initiator uint16
	ChannelId uint16
}

func (r *ClientChannelJoinRequest) Serialize() []byte {
	w := new(bytes.Buffer)
	encoding.PerWriteInteger16(r.Initiator, 1001, w)
	encoding.PerWriteInteger16(r.ChannelId, 0, w)
	return w.Bytes()
}

// ServerChannelJoinConfirm is the T.125 Channel Join Confirm.
type ServerChannelJoinConfirm struct {
	Result    uint8
	Initiator uint16
	Requested uint16
	ChannelId uint16
}

func (r *ServerChannelJoinConfirm) Deserialize(wire io.Reader) error {
	result, err := encoding.PerReadEnumerates(wire)
	if err != nil {
		return err
	}
	r.Result = result

	if r.Initiator, err = encoding.PerReadInteger16(1001, wire); err != nil {
		return err
	}
	if r.Requested, err = encoding.PerReadInteger16(0, wire); err != nil {
		return err
	}
	r.ChannelId, err = encoding.PerReadInteger16(0, wire)
	if err == io.EOF {
		// channelId is optional; a confirm that ends after the requested
		// id decodes with ChannelId left at zero.
		return nil
	}
	return err
}

// DomainPDU is the tagged union of every DomainMCSPDU this module sends or
// receives. Exactly one of the pointer fields is populated, selected by
// Application.
type DomainPDU struct {
	Application uint8

	ClientErectDomainRequest *ClientErectDomainRequest
	ClientAttachUserRequest  *ClientAttachUserRequest
	ServerAttachUserConfirm  *ServerAttachUserConfirm
	ClientChannelJoinRequest *ClientChannelJoinRequest
	ServerChannelJoinConfirm *ServerChannelJoinConfirm
	ClientSendDataRequest    *ClientSendDataRequest
	ServerSendDataIndication *ServerSendDataIndication
}

func (pdu *DomainPDU) Serialize() []byte {
	w := new(bytes.Buffer)
	w.WriteByte(pdu.Application)

	switch pdu.Application {
	case erectDomainRequest:
		w.Write(pdu.ClientErectDomainRequest.Serialize())
	case attachUserRequest:
		w.Write(pdu.ClientAttachUserRequest.Serialize())
	case channelJoinRequest:
		w.Write(pdu.ClientChannelJoinRequest.Serialize())
	case SendDataRequest:
		w.Write(pdu.ClientSendDataRequest.Serialize())
	}

	return w.Bytes()
}

func (pdu *DomainPDU) Deserialize(wire io.Reader) error {
	var choice uint8
	if err := binary.Read(wire, binary.BigEndian, &choice); err != nil {
		return err
	}
	pdu.Application = choice

	switch choice {
	case disconnectProviderUltimatum:
		return ErrDisconnectUltimatum
	case attachUserConfirm:
		pdu.ServerAttachUserConfirm = &ServerAttachUserConfirm{}
		return pdu.ServerAttachUserConfirm.Deserialize(wire)
	case channelJoinConfirm:
		pdu.ServerChannelJoinConfirm = &ServerChannelJoinConfirm{}
		return pdu.ServerChannelJoinConfirm.Deserialize(wire)
	case SendDataIndication:
		pdu.ServerSendDataIndication = &ServerSendDataIndication{}
		return pdu.ServerSendDataIndication.Deserialize(wire)
	case SendDataRequest:
		pdu.ClientSendDataRequest = &ClientSendDataRequest{}
		return pdu.ClientSendDataRequest.Deserialize(wire)
	default:
		return ErrUnknownDomainApplication
	}
}

// Cursor bridge: DomainMCSPDU framing is PER, out of scope to reimplement
// from scratch, so the wire logic above stays as a Serialize/Deserialize
// pair and only the module boundary speaks Cursor.

func (pdu *DomainPDU) Name() string { return "mcs.DomainPDU" }

func (pdu *DomainPDU) Size() int { return len(pdu.Serialize()) }

func (pdu *DomainPDU) Encode(dst *cursor.Writer) error {
	if _, err := dst.Write(pdu.Serialize()); err != nil {
		return rdperr.Encode("mcs.DomainPDU", err)
	}
	return nil
}

func (pdu *DomainPDU) Decode(src *cursor.Reader) error {
	if err := pdu.Deserialize(src); err != nil {
		return rdperr.Decode("mcs.DomainPDU", err)
	}
	return nil
}
