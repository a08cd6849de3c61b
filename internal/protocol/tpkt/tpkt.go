// Package tpkt implements TPKT framing (RFC 1006), the outermost envelope
// around every PDU exchanged before the RDP connection switches to
// fastpath: a fixed 4-byte header (version, reserved, big-endian total
// length) in front of the X.224 TPDU.
package tpkt

import (
	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

const (
	// HeaderLen is the size of the TPKT header itself.
	HeaderLen = 4
	version   = 3
)

// Header is the 4-byte TPKT envelope. Length is the total size of the
// frame, header included.
type Header struct {
	Length uint16
}

func (h *Header) Name() string { return "tpkt.Header" }

func (h *Header) Size() int { return HeaderLen }

func (h *Header) Encode(dst *cursor.Writer) error {
	if err := dst.WriteU8(version); err != nil {
		return rdperr.Encode("tpkt.Header", err)
	}
	if err := dst.WriteU8(0); err != nil { // reserved
		return rdperr.Encode("tpkt.Header", err)
	}
	if err := dst.WriteU16BE(h.Length); err != nil {
		return rdperr.Encode("tpkt.Header", err)
	}
	return nil
}

func (h *Header) Decode(src *cursor.Reader) error {
	v, err := src.ReadU8()
	if err != nil {
		return rdperr.Decode("tpkt.Header", err)
	}
	if v != version {
		return rdperr.InvalidField("tpkt.Header", "version", "expected 3")
	}
	if _, err := src.ReadU8(); err != nil { // reserved, not validated
		return rdperr.Decode("tpkt.Header", err)
	}
	if h.Length, err = src.ReadU16BE(); err != nil {
		return rdperr.Decode("tpkt.Header", err)
	}
	if int(h.Length) < HeaderLen {
		return rdperr.InvalidField("tpkt.Header", "length", "shorter than the header itself")
	}
	return nil
}

// FrameLength is the Framing Hint for TPKT-wrapped PDUs: given at least
// HeaderLen bytes of a frame prefix, it returns the total frame length
// (header included). ok is false when prefix is too short to decide yet.
func FrameLength(prefix []byte) (length int, ok bool) {
	if len(prefix) < HeaderLen {
		return 0, false
	}
	var h Header
	if err := h.Decode(cursor.NewReader(prefix[:HeaderLen])); err != nil {
		return 0, false
	}
	return int(h.Length), true
}
