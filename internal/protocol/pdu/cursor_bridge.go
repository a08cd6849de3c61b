package pdu

import (
	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// Cursor bridges for the share-control/share-data headers. Their framing is
// small and fixed-size, but the Serialize/Deserialize pair is shared with
// every PDU that embeds a header, so the bridge stays thin rather than
// duplicating the field layout in Cursor form.

func (header *ShareControlHeader) Name() string { return "pdu.ShareControlHeader" }

func (header *ShareControlHeader) Size() int { return len(header.Serialize()) }

func (header *ShareControlHeader) Encode(dst *cursor.Writer) error {
	if _, err := dst.Write(header.Serialize()); err != nil {
		return rdperr.Encode("pdu.ShareControlHeader", err)
	}
	return nil
}

func (header *ShareControlHeader) Decode(src *cursor.Reader) error {
	if err := header.Deserialize(src); err != nil {
		return rdperr.Decode("pdu.ShareControlHeader", err)
	}
	return nil
}

func (header *ShareDataHeader) Name() string { return "pdu.ShareDataHeader" }

func (header *ShareDataHeader) Size() int { return len(header.Serialize()) }

func (header *ShareDataHeader) Encode(dst *cursor.Writer) error {
	if _, err := dst.Write(header.Serialize()); err != nil {
		return rdperr.Encode("pdu.ShareDataHeader", err)
	}
	return nil
}

func (header *ShareDataHeader) Decode(src *cursor.Reader) error {
	if err := header.Deserialize(src); err != nil {
		return rdperr.Decode("pdu.ShareDataHeader", err)
	}
	return nil
}

func (pdu *ClientConnectionRequest) Name() string { return "pdu.ClientConnectionRequest" }

func (pdu *ClientConnectionRequest) Size() int { return len(pdu.Serialize()) }

func (pdu *ClientConnectionRequest) Encode(dst *cursor.Writer) error {
	if _, err := dst.Write(pdu.Serialize()); err != nil {
		return rdperr.Encode("pdu.ClientConnectionRequest", err)
	}
	return nil
}

func (pdu *ServerConnectionConfirm) Name() string { return "pdu.ServerConnectionConfirm" }

func (pdu *ServerConnectionConfirm) Decode(src *cursor.Reader) error {
	if err := pdu.Deserialize(src); err != nil {
		return rdperr.Decode("pdu.ServerConnectionConfirm", err)
	}
	return nil
}
