// Package egfx implements the MS-RDPEGFX Graphics Pipeline Virtual Channel
// command PDU layer: the RDPGFX_HEADER envelope and the command set carried
// inside it (surface lifecycle, cache management, frame bracketing,
// capability negotiation).
package egfx

import (
	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// Point is an RDPGFX_POINT16 (MS-RDPEGFX 2.2.4.1): a signed destination
// offset used by surface-to-surface and cache-to-surface copies.
type Point struct {
	X int16
	Y int16
}

const pointSize = 4

func (p Point) Name() string { return "egfx.Point" }
func (p Point) Size() int    { return pointSize }

func (p Point) Encode(dst *cursor.Writer) error {
	if err := dst.WriteU16(uint16(p.X)); err != nil {
		return rdperr.Encode("egfx.Point", err)
	}
	if err := dst.WriteU16(uint16(p.Y)); err != nil {
		return rdperr.Encode("egfx.Point", err)
	}
	return nil
}

func (p *Point) Decode(src *cursor.Reader) error {
	x, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode("egfx.Point", err)
	}
	y, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode("egfx.Point", err)
	}
	p.X, p.Y = int16(x), int16(y)
	return nil
}

// Color is an RDPGFX_COLOR (MS-RDPEGFX 2.2.2.4.1): a BGRA quad used as the
// solid fill pixel value.
type Color struct {
	B, G, R, XA uint8
}

const colorSize = 4

func (c Color) Name() string { return "egfx.Color" }
func (c Color) Size() int    { return colorSize }

func (c Color) Encode(dst *cursor.Writer) error {
	for _, b := range []uint8{c.B, c.G, c.R, c.XA} {
		if err := dst.WriteU8(b); err != nil {
			return rdperr.Encode("egfx.Color", err)
		}
	}
	return nil
}

func (c *Color) Decode(src *cursor.Reader) error {
	bs := make([]uint8, 4)
	for i := range bs {
		v, err := src.ReadU8()
		if err != nil {
			return rdperr.Decode("egfx.Color", err)
		}
		bs[i] = v
	}
	c.B, c.G, c.R, c.XA = bs[0], bs[1], bs[2], bs[3]
	return nil
}

// PixelFormat is an RDPGFX pixel format tag (MS-RDPEGFX 2.2.2.4).
type PixelFormat uint8

const (
	PixelFormatXRGB8888 PixelFormat = 0x20
	PixelFormatARGB8888 PixelFormat = 0x21
)

func (f PixelFormat) Valid() bool {
	return f == PixelFormatXRGB8888 || f == PixelFormatARGB8888
}

// InclusiveRectangle is an RDPGFX_RECT16 (MS-RDPEGFX 2.2.2.1): a rectangle
// whose right/bottom edges are part of the region it bounds, unlike the
// half-open rectangles used elsewhere in MS-RDPBCGR.
type InclusiveRectangle struct {
	Left, Top, Right, Bottom uint16
}

const inclusiveRectangleSize = 8

func (r InclusiveRectangle) Name() string { return "egfx.InclusiveRectangle" }
func (r InclusiveRectangle) Size() int    { return inclusiveRectangleSize }

func (r InclusiveRectangle) Encode(dst *cursor.Writer) error {
	for _, v := range []uint16{r.Left, r.Top, r.Right, r.Bottom} {
		if err := dst.WriteU16(v); err != nil {
			return rdperr.Encode("egfx.InclusiveRectangle", err)
		}
	}
	return nil
}

func (r *InclusiveRectangle) Decode(src *cursor.Reader) error {
	vs := make([]uint16, 4)
	for i := range vs {
		v, err := src.ReadU16()
		if err != nil {
			return rdperr.Decode("egfx.InclusiveRectangle", err)
		}
		vs[i] = v
	}
	r.Left, r.Top, r.Right, r.Bottom = vs[0], vs[1], vs[2], vs[3]
	return nil
}

// MonitorDef is a TS_MONITOR_DEF (MS-RDPBCGR 2.2.1.3.6), reused by
// ResetGraphicsPdu to describe the client's current monitor layout.
type MonitorDef struct {
	Left, Top, Right, Bottom int32
	Flags                    uint32
}

const monitorDefSize = 20

func (m MonitorDef) Name() string { return "egfx.MonitorDef" }
func (m MonitorDef) Size() int    { return monitorDefSize }

func (m MonitorDef) Encode(dst *cursor.Writer) error {
	for _, v := range []int32{m.Left, m.Top, m.Right, m.Bottom} {
		if err := dst.WriteU32(uint32(v)); err != nil {
			return rdperr.Encode("egfx.MonitorDef", err)
		}
	}
	if err := dst.WriteU32(m.Flags); err != nil {
		return rdperr.Encode("egfx.MonitorDef", err)
	}
	return nil
}

func (m *MonitorDef) Decode(src *cursor.Reader) error {
	vs := make([]uint32, 5)
	for i := range vs {
		v, err := src.ReadU32()
		if err != nil {
			return rdperr.Decode("egfx.MonitorDef", err)
		}
		vs[i] = v
	}
	m.Left, m.Top, m.Right, m.Bottom = int32(vs[0]), int32(vs[1]), int32(vs[2]), int32(vs[3])
	m.Flags = vs[4]
	return nil
}

// Timestamp is the packed 32-bit RDPGFX_START_FRAME_PDU timestamp
// (MS-RDPEGFX 2.2.2.8.1): milliseconds in bits [0,10), seconds in [10,16),
// minutes in [16,22), hours in [22,32).
type Timestamp struct {
	Milliseconds uint16
	Seconds      uint8
	Minutes      uint8
	Hours        uint16
}

func (t Timestamp) pack() uint32 {
	return uint32(t.Milliseconds&0x3ff) |
		uint32(t.Seconds&0x3f)<<10 |
		uint32(t.Minutes&0x3f)<<16 |
		uint32(t.Hours&0x3ff)<<22
}

func unpackTimestamp(v uint32) Timestamp {
	return Timestamp{
		Milliseconds: uint16(v & 0x3ff),
		Seconds:      uint8((v >> 10) & 0x3f),
		Minutes:      uint8((v >> 16) & 0x3f),
		Hours:        uint16((v >> 22) & 0x3ff),
	}
}

// Codec1Type identifies the first-generation bitmap codec carried by a
// WireToSurface1Pdu.
type Codec1Type uint16

const (
	Codec1Uncompressed Codec1Type = 0x0
	Codec1RemoteFx     Codec1Type = 0x3
	Codec1ClearCodec   Codec1Type = 0x8
	Codec1Planar       Codec1Type = 0xa
	Codec1Avc420       Codec1Type = 0xb
	Codec1Alpha        Codec1Type = 0xc
	Codec1Avc444       Codec1Type = 0xe
	Codec1Avc444v2     Codec1Type = 0xf
)

// Codec2Type identifies the second-generation bitmap codec carried by a
// WireToSurface2Pdu. RemoteFX Progressive is the only member MS-RDPEGFX
// defines.
type Codec2Type uint16

const Codec2RemoteFxProgressive Codec2Type = 0x9

// QueueDepth is the three-way encoding RDPGFX_FRAME_ACKNOWLEDGE_PDU packs
// into a single uint32 field (MS-RDPEGFX 2.2.2.11).
type QueueDepth struct {
	Unavailable bool
	Suspend     bool
	// AvailableBytes holds the raw queue depth when neither Unavailable nor
	// Suspend is set.
	AvailableBytes uint32
}

const (
	queueDepthUnavailable uint32 = 0x00000000
	queueDepthSuspend     uint32 = 0xFFFFFFFF
)

func (q QueueDepth) pack() uint32 {
	switch {
	case q.Unavailable:
		return queueDepthUnavailable
	case q.Suspend:
		return queueDepthSuspend
	default:
		return q.AvailableBytes
	}
}

func unpackQueueDepth(v uint32) QueueDepth {
	switch v {
	case queueDepthUnavailable:
		return QueueDepth{Unavailable: true}
	case queueDepthSuspend:
		return QueueDepth{Suspend: true}
	default:
		return QueueDepth{AvailableBytes: v}
	}
}
