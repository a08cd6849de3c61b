package mcs

import (
	"io"

	"github.com/rcarmo/go-rdp/internal/protocol/encoding"
)

// ServerSendDataIndication is the T.125 Send Data Indication: the envelope
// every server-to-client PDU after channel join arrives inside. Once the
// fixed header is parsed, the remaining bytes of wire are the PDU payload.
type ServerSendDataIndication struct {
	Initiator uint16
	ChannelId uint16
}

func (d *ServerSendDataIndication) Deserialize(wire io.Reader) error {
	var err error

	d.Initiator, err = encoding.PerReadInteger16(1001, wire)
	if err != nil {
		return err
	}

	d.ChannelId, err = encoding.PerReadInteger16(0, wire)
	if err != nil {
		return err
	}

	_, err = encoding.PerReadEnumerates(wire)
	if err != nil {
		return err
	}

	_, err = encoding.BerReadLength(wire)
	if err != nil {
		return err
	}

	return nil
}
