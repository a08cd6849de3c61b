package connector

import (
	"bytes"

	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/protocol/x224"
	"github.com/rcarmo/go-rdp/internal/protocol/tpkt"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// frameX224 wraps a single cursor.Encoder (a Connection Request or a Data
// TPDU) in its TPKT envelope, producing a complete frame ready to write to
// the transport.
func frameX224(part cursor.Encoder) ([]byte, error) {
	total := tpkt.HeaderLen + part.Size()
	buf := make([]byte, total)
	w := cursor.NewWriter(buf)

	if err := (&tpkt.Header{Length: uint16(total)}).Encode(w); err != nil { // #nosec G115
		return nil, rdperr.Encode("connector", err)
	}
	if err := part.Encode(w); err != nil {
		return nil, rdperr.Encode("connector", err)
	}
	return w.Bytes(), nil
}

// frameData wraps an already-serialized higher-layer payload (an MCS
// ConnectPDU, DomainPDU, or Send Data Request) in an X.224 Data TPDU and a
// TPKT header: the envelope every PDU after the connection phase travels in.
func frameData(payload []byte) ([]byte, error) {
	return frameX224(&x224.DataTPDU{UserData: payload})
}

// unframe strips the TPKT header from a complete frame and returns the
// X.224 TPDU bytes (still including the TPDU's own LI/code/ref fields).
func unframe(frame []byte) ([]byte, error) {
	r := cursor.NewReader(frame)
	var h tpkt.Header
	if err := h.Decode(r); err != nil {
		return nil, rdperr.Decode("connector", err)
	}
	return frame[tpkt.HeaderLen:], nil
}

// unframeData strips TPKT + X.224 Data TPDU framing, returning the payload.
func unframeData(frame []byte) ([]byte, error) {
	x224Bytes, err := unframe(frame)
	if err != nil {
		return nil, err
	}
	var d x224.DataTPDU
	if err := d.Decode(cursor.NewReader(x224Bytes)); err != nil {
		return nil, rdperr.Decode("connector", err)
	}
	return d.UserData, nil
}

// bodyReader is a small convenience so callers of the io.Reader-based
// Deserialize methods in the pdu/mcs/gcc packages don't each wrap their own
// bytes.Reader.
func bodyReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
