package egfx

import (
	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/logging"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// CmdID identifies the command carried by a GfxPdu (MS-RDPEGFX 2.2.1).
type CmdID uint16

const (
	CmdWireToSurface1          CmdID = 0x01
	CmdWireToSurface2          CmdID = 0x02
	CmdDeleteEncodingContext   CmdID = 0x03
	CmdSolidFill               CmdID = 0x04
	CmdSurfaceToSurface        CmdID = 0x05
	CmdSurfaceToCache          CmdID = 0x06
	CmdCacheToSurface          CmdID = 0x07
	CmdEvictCacheEntry         CmdID = 0x08
	CmdCreateSurface           CmdID = 0x09
	CmdDeleteSurface           CmdID = 0x0A
	CmdStartFrame              CmdID = 0x0B
	CmdEndFrame                CmdID = 0x0C
	CmdFrameAcknowledge        CmdID = 0x0D
	CmdResetGraphics           CmdID = 0x0E
	CmdMapSurfaceToOutput      CmdID = 0x0F
	CmdCacheImportOffer        CmdID = 0x10
	CmdCacheImportReply        CmdID = 0x11
	CmdCapabilitiesAdvertise   CmdID = 0x12
	CmdCapabilitiesConfirm     CmdID = 0x13
	CmdMapSurfaceToWindow      CmdID = 0x15
	CmdQoeFrameAcknowledge     CmdID = 0x16
	CmdMapSurfaceToScaledOutput CmdID = 0x17
	CmdMapSurfaceToScaledWindow CmdID = 0x18
)

const (
	headerFixedPartSize = 8
	maxResetGraphicsDim = 32766
	monitorCountMax     = 16
	resetGraphicsPduSize = 340 - headerFixedPartSize
)

// GfxPdu is the RDPGFX_HEADER envelope plus the command it wraps.
type GfxPdu struct {
	CmdID CmdID
	// Flags is read back verbatim for diagnostics; MS-RDPEGFX requires it
	// to be zero and a nonzero value never fails decode, only gets logged.
	Flags uint16
	Body  GfxCommand
}

// GfxCommand is implemented by every command payload a GfxPdu can carry.
type GfxCommand interface {
	cursor.Encoder
}

func (p *GfxPdu) Name() string { return "egfx.GfxPdu" }

func (p *GfxPdu) Size() int { return headerFixedPartSize + p.Body.Size() }

func (p *GfxPdu) Encode(dst *cursor.Writer) error {
	if err := dst.WriteU16(uint16(p.CmdID)); err != nil {
		return rdperr.Encode("egfx.GfxPdu", err)
	}
	if err := dst.WriteU16(p.Flags); err != nil {
		return rdperr.Encode("egfx.GfxPdu", err)
	}
	if err := dst.WriteU32(uint32(p.Size())); err != nil {
		return rdperr.Encode("egfx.GfxPdu", err)
	}
	return p.Body.Encode(dst)
}

// Decode parses the RDPGFX_HEADER and dispatches to the command matching
// CmdID, leaving p.Body as the concrete decoded type.
func (p *GfxPdu) Decode(src *cursor.Reader) error {
	cmdID, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode("egfx.GfxPdu", err)
	}
	flags, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode("egfx.GfxPdu", err)
	}
	if flags != 0 {
		logging.Default().Component("egfx").Warn("nonzero header flags 0x%04x on cmdId 0x%x", flags, cmdID)
	}
	length, err := src.ReadU32()
	if err != nil {
		return rdperr.Decode("egfx.GfxPdu", err)
	}
	if length < headerFixedPartSize {
		return rdperr.InvalidField("egfx.GfxPdu", "pduLength", "shorter than header")
	}
	p.CmdID = CmdID(cmdID)
	p.Flags = flags

	body, err := newCommand(p.CmdID)
	if err != nil {
		return err
	}
	if err := body.Decode(src); err != nil {
		return err
	}
	p.Body = body
	return nil
}

// gfxDecoder is a GfxCommand that also knows how to parse itself, kept
// distinct from GfxCommand so encode-only helper values (Point, Color,
// ...) aren't forced to implement Decode.
type gfxDecoder interface {
	GfxCommand
	Decode(src *cursor.Reader) error
}

func newCommand(id CmdID) (gfxDecoder, error) {
	switch id {
	case CmdWireToSurface1:
		return &WireToSurface1Pdu{}, nil
	case CmdWireToSurface2:
		return &WireToSurface2Pdu{}, nil
	case CmdDeleteEncodingContext:
		return &DeleteEncodingContextPdu{}, nil
	case CmdSolidFill:
		return &SolidFillPdu{}, nil
	case CmdSurfaceToSurface:
		return &SurfaceToSurfacePdu{}, nil
	case CmdSurfaceToCache:
		return &SurfaceToCachePdu{}, nil
	case CmdCacheToSurface:
		return &CacheToSurfacePdu{}, nil
	case CmdEvictCacheEntry:
		return &EvictCacheEntryPdu{}, nil
	case CmdCreateSurface:
		return &CreateSurfacePdu{}, nil
	case CmdDeleteSurface:
		return &DeleteSurfacePdu{}, nil
	case CmdStartFrame:
		return &StartFramePdu{}, nil
	case CmdEndFrame:
		return &EndFramePdu{}, nil
	case CmdFrameAcknowledge:
		return &FrameAcknowledgePdu{}, nil
	case CmdResetGraphics:
		return &ResetGraphicsPdu{}, nil
	case CmdMapSurfaceToOutput:
		return &MapSurfaceToOutputPdu{}, nil
	case CmdCacheImportOffer:
		return &CacheImportOfferPdu{}, nil
	case CmdCacheImportReply:
		return &CacheImportReplyPdu{}, nil
	case CmdCapabilitiesAdvertise:
		return &CapabilitiesAdvertisePdu{}, nil
	case CmdCapabilitiesConfirm:
		return &CapabilitiesConfirmPdu{}, nil
	case CmdMapSurfaceToWindow:
		return &MapSurfaceToWindowPdu{}, nil
	case CmdQoeFrameAcknowledge:
		return &QoeFrameAcknowledgePdu{}, nil
	case CmdMapSurfaceToScaledOutput:
		return &MapSurfaceToScaledOutputPdu{}, nil
	case CmdMapSurfaceToScaledWindow:
		return &MapSurfaceToScaledWindowPdu{}, nil
	default:
		return nil, rdperr.UnsupportedVariant("egfx.GfxPdu", "cmdId", uint32(id))
	}
}

// WireToSurface1Pdu carries first-generation codec bitmap data to a surface
// (MS-RDPEGFX 2.2.2.1).
type WireToSurface1Pdu struct {
	SurfaceID           uint16
	CodecID             Codec1Type
	PixelFormat         PixelFormat
	DestinationRectangle InclusiveRectangle
	BitmapData          []byte
}

func (p *WireToSurface1Pdu) Name() string { return "egfx.WireToSurface1Pdu" }

func (p *WireToSurface1Pdu) Size() int {
	return 2 + 2 + 1 + inclusiveRectangleSize + 4 + len(p.BitmapData)
}

func (p *WireToSurface1Pdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.WireToSurface1Pdu"
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(uint16(p.CodecID)); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU8(uint8(p.PixelFormat)); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := p.DestinationRectangle.Encode(dst); err != nil {
		return err
	}
	if err := dst.WriteU32(uint32(len(p.BitmapData))); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteSlice(p.BitmapData); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return nil
}

func (p *WireToSurface1Pdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.WireToSurface1Pdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	codecID, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.CodecID = Codec1Type(codecID)
	pf, err := src.ReadU8()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.PixelFormat = PixelFormat(pf)
	if err := p.DestinationRectangle.Decode(src); err != nil {
		return err
	}
	length, err := src.ReadU32()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	data, err := src.ReadSlice(int(length))
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.BitmapData = append([]byte(nil), data...)
	return nil
}

// WireToSurface2Pdu carries second-generation (progressive) codec bitmap
// data to a surface (MS-RDPEGFX 2.2.2.2).
type WireToSurface2Pdu struct {
	SurfaceID       uint16
	CodecID         Codec2Type
	CodecContextID  uint32
	PixelFormat     PixelFormat
	BitmapData      []byte
}

func (p *WireToSurface2Pdu) Name() string { return "egfx.WireToSurface2Pdu" }

func (p *WireToSurface2Pdu) Size() int {
	return 2 + 2 + 4 + 1 + 4 + len(p.BitmapData)
}

func (p *WireToSurface2Pdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.WireToSurface2Pdu"
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(uint16(p.CodecID)); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.CodecContextID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU8(uint8(p.PixelFormat)); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(uint32(len(p.BitmapData))); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteSlice(p.BitmapData))
}

func (p *WireToSurface2Pdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.WireToSurface2Pdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	codecID, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.CodecID = Codec2Type(codecID)
	if p.CodecContextID, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	pf, err := src.ReadU8()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.PixelFormat = PixelFormat(pf)
	length, err := src.ReadU32()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	data, err := src.ReadSlice(int(length))
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.BitmapData = append([]byte(nil), data...)
	return nil
}

func wrapPlainErr(ctx string, err error) error {
	if err == nil {
		return nil
	}
	return rdperr.Encode(ctx, err)
}

// DeleteEncodingContextPdu retires a codec context previously established
// by a WireToSurface2Pdu (MS-RDPEGFX 2.2.2.3).
type DeleteEncodingContextPdu struct {
	SurfaceID      uint16
	CodecContextID uint32
}

func (p *DeleteEncodingContextPdu) Name() string { return "egfx.DeleteEncodingContextPdu" }
func (p *DeleteEncodingContextPdu) Size() int     { return 6 }

func (p *DeleteEncodingContextPdu) Encode(dst *cursor.Writer) error {
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode("egfx.DeleteEncodingContextPdu", err)
	}
	return wrapPlainErr("egfx.DeleteEncodingContextPdu", dst.WriteU32(p.CodecContextID))
}

func (p *DeleteEncodingContextPdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.DeleteEncodingContextPdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.CodecContextID, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return nil
}

// SolidFillPdu fills a set of rectangles on a surface with one color
// (MS-RDPEGFX 2.2.2.4).
type SolidFillPdu struct {
	SurfaceID  uint16
	FillPixel  Color
	Rectangles []InclusiveRectangle
}

func (p *SolidFillPdu) Name() string { return "egfx.SolidFillPdu" }

func (p *SolidFillPdu) Size() int {
	return 2 + colorSize + 2 + len(p.Rectangles)*inclusiveRectangleSize
}

func (p *SolidFillPdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.SolidFillPdu"
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := p.FillPixel.Encode(dst); err != nil {
		return err
	}
	if err := dst.WriteU16(uint16(len(p.Rectangles))); err != nil {
		return rdperr.Encode(ctx, err)
	}
	for i := range p.Rectangles {
		if err := p.Rectangles[i].Encode(dst); err != nil {
			return err
		}
	}
	return nil
}

func (p *SolidFillPdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.SolidFillPdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if err := p.FillPixel.Decode(src); err != nil {
		return err
	}
	count, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.Rectangles = make([]InclusiveRectangle, count)
	for i := range p.Rectangles {
		if err := p.Rectangles[i].Decode(src); err != nil {
			return err
		}
	}
	return nil
}

// SurfaceToSurfacePdu copies a rectangle from one surface to a set of
// destination points, possibly on another surface (MS-RDPEGFX 2.2.2.5).
type SurfaceToSurfacePdu struct {
	SourceSurfaceID      uint16
	DestinationSurfaceID uint16
	SourceRectangle      InclusiveRectangle
	DestinationPoints    []Point
}

func (p *SurfaceToSurfacePdu) Name() string { return "egfx.SurfaceToSurfacePdu" }

func (p *SurfaceToSurfacePdu) Size() int {
	return 2 + 2 + inclusiveRectangleSize + 2 + len(p.DestinationPoints)*pointSize
}

func (p *SurfaceToSurfacePdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.SurfaceToSurfacePdu"
	if err := dst.WriteU16(p.SourceSurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(p.DestinationSurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := p.SourceRectangle.Encode(dst); err != nil {
		return err
	}
	if err := dst.WriteU16(uint16(len(p.DestinationPoints))); err != nil {
		return rdperr.Encode(ctx, err)
	}
	for i := range p.DestinationPoints {
		if err := p.DestinationPoints[i].Encode(dst); err != nil {
			return err
		}
	}
	return nil
}

func (p *SurfaceToSurfacePdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.SurfaceToSurfacePdu"
	var err error
	if p.SourceSurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.DestinationSurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if err := p.SourceRectangle.Decode(src); err != nil {
		return err
	}
	count, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.DestinationPoints = make([]Point, count)
	for i := range p.DestinationPoints {
		if err := p.DestinationPoints[i].Decode(src); err != nil {
			return err
		}
	}
	return nil
}

// SurfaceToCachePdu stores a rectangle from a surface into a cache slot
// (MS-RDPEGFX 2.2.2.6).
type SurfaceToCachePdu struct {
	SurfaceID      uint16
	CacheKey       uint64
	CacheSlot      uint16
	SourceRectangle InclusiveRectangle
}

func (p *SurfaceToCachePdu) Name() string { return "egfx.SurfaceToCachePdu" }
func (p *SurfaceToCachePdu) Size() int    { return 2 + 8 + 2 + inclusiveRectangleSize }

func (p *SurfaceToCachePdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.SurfaceToCachePdu"
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU64(p.CacheKey); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(p.CacheSlot); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return p.SourceRectangle.Encode(dst)
}

func (p *SurfaceToCachePdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.SurfaceToCachePdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.CacheKey, err = src.ReadU64(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.CacheSlot, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return p.SourceRectangle.Decode(src)
}

// CacheToSurfacePdu copies a cached bitmap onto a surface at a set of
// destination points (MS-RDPEGFX 2.2.2.7).
type CacheToSurfacePdu struct {
	CacheSlot         uint16
	SurfaceID         uint16
	DestinationPoints []Point
}

func (p *CacheToSurfacePdu) Name() string { return "egfx.CacheToSurfacePdu" }

func (p *CacheToSurfacePdu) Size() int {
	return 2 + 2 + 2 + len(p.DestinationPoints)*pointSize
}

func (p *CacheToSurfacePdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.CacheToSurfacePdu"
	if err := dst.WriteU16(p.CacheSlot); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(uint16(len(p.DestinationPoints))); err != nil {
		return rdperr.Encode(ctx, err)
	}
	for i := range p.DestinationPoints {
		if err := p.DestinationPoints[i].Encode(dst); err != nil {
			return err
		}
	}
	return nil
}

func (p *CacheToSurfacePdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.CacheToSurfacePdu"
	var err error
	if p.CacheSlot, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	count, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.DestinationPoints = make([]Point, count)
	for i := range p.DestinationPoints {
		if err := p.DestinationPoints[i].Decode(src); err != nil {
			return err
		}
	}
	return nil
}

// EvictCacheEntryPdu asks the client to free a cache slot (MS-RDPEGFX
// 2.2.2.8).
type EvictCacheEntryPdu struct {
	CacheSlot uint16
}

func (p *EvictCacheEntryPdu) Name() string { return "egfx.EvictCacheEntryPdu" }
func (p *EvictCacheEntryPdu) Size() int    { return 2 }

func (p *EvictCacheEntryPdu) Encode(dst *cursor.Writer) error {
	return wrapPlainErr("egfx.EvictCacheEntryPdu", dst.WriteU16(p.CacheSlot))
}

func (p *EvictCacheEntryPdu) Decode(src *cursor.Reader) error {
	v, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode("egfx.EvictCacheEntryPdu", err)
	}
	p.CacheSlot = v
	return nil
}

// CreateSurfacePdu allocates a new surface (MS-RDPEGFX 2.2.2.9).
type CreateSurfacePdu struct {
	SurfaceID   uint16
	Width       uint16
	Height      uint16
	PixelFormat PixelFormat
}

func (p *CreateSurfacePdu) Name() string { return "egfx.CreateSurfacePdu" }
func (p *CreateSurfacePdu) Size() int    { return 7 }

func (p *CreateSurfacePdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.CreateSurfacePdu"
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(p.Width); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(p.Height); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteU8(uint8(p.PixelFormat)))
}

func (p *CreateSurfacePdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.CreateSurfacePdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.Width, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.Height, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	pf, err := src.ReadU8()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.PixelFormat = PixelFormat(pf)
	return nil
}

// DeleteSurfacePdu releases a surface (MS-RDPEGFX 2.2.2.10).
type DeleteSurfacePdu struct {
	SurfaceID uint16
}

func (p *DeleteSurfacePdu) Name() string { return "egfx.DeleteSurfacePdu" }
func (p *DeleteSurfacePdu) Size() int    { return 2 }

func (p *DeleteSurfacePdu) Encode(dst *cursor.Writer) error {
	return wrapPlainErr("egfx.DeleteSurfacePdu", dst.WriteU16(p.SurfaceID))
}

func (p *DeleteSurfacePdu) Decode(src *cursor.Reader) error {
	v, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode("egfx.DeleteSurfacePdu", err)
	}
	p.SurfaceID = v
	return nil
}

// StartFramePdu brackets the beginning of a frame (MS-RDPEGFX 2.2.2.11).
type StartFramePdu struct {
	Timestamp Timestamp
	FrameID   uint32
}

func (p *StartFramePdu) Name() string { return "egfx.StartFramePdu" }
func (p *StartFramePdu) Size() int    { return 4 + 4 }

func (p *StartFramePdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.StartFramePdu"
	if err := dst.WriteU32(p.Timestamp.pack()); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteU32(p.FrameID))
}

func (p *StartFramePdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.StartFramePdu"
	ts, err := src.ReadU32()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.Timestamp = unpackTimestamp(ts)
	if p.FrameID, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return nil
}

// EndFramePdu brackets the end of a frame (MS-RDPEGFX 2.2.2.12).
type EndFramePdu struct {
	FrameID uint32
}

func (p *EndFramePdu) Name() string { return "egfx.EndFramePdu" }
func (p *EndFramePdu) Size() int    { return 4 }

func (p *EndFramePdu) Encode(dst *cursor.Writer) error {
	return wrapPlainErr("egfx.EndFramePdu", dst.WriteU32(p.FrameID))
}

func (p *EndFramePdu) Decode(src *cursor.Reader) error {
	v, err := src.ReadU32()
	if err != nil {
		return rdperr.Decode("egfx.EndFramePdu", err)
	}
	p.FrameID = v
	return nil
}

// FrameAcknowledgePdu is the client's flow-control acknowledgement of a
// decoded frame (MS-RDPEGFX 2.2.2.13).
type FrameAcknowledgePdu struct {
	QueueDepth         QueueDepth
	FrameID            uint32
	TotalFramesDecoded uint32
}

func (p *FrameAcknowledgePdu) Name() string { return "egfx.FrameAcknowledgePdu" }
func (p *FrameAcknowledgePdu) Size() int    { return 4 + 4 + 4 }

func (p *FrameAcknowledgePdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.FrameAcknowledgePdu"
	if err := dst.WriteU32(p.QueueDepth.pack()); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.FrameID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteU32(p.TotalFramesDecoded))
}

func (p *FrameAcknowledgePdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.FrameAcknowledgePdu"
	qd, err := src.ReadU32()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.QueueDepth = unpackQueueDepth(qd)
	if p.FrameID, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.TotalFramesDecoded, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return nil
}

// ResetGraphicsPdu resizes the graphics pipeline and redescribes the
// client's monitor layout (MS-RDPEGFX 2.2.2.14). The wire form is a fixed
// 340-byte envelope (including the RDPGFX_HEADER); unused monitor slots are
// zero-padded.
type ResetGraphicsPdu struct {
	Width    uint32
	Height   uint32
	Monitors []MonitorDef
}

func (p *ResetGraphicsPdu) Name() string { return "egfx.ResetGraphicsPdu" }

func (p *ResetGraphicsPdu) Size() int { return resetGraphicsPduSize }

func (p *ResetGraphicsPdu) monitorsBytes() int {
	return 4 + len(p.Monitors)*monitorDefSize
}

func (p *ResetGraphicsPdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.ResetGraphicsPdu"
	if p.Width > maxResetGraphicsDim {
		return rdperr.EncodeField(ctx, "width", "exceeds 32766")
	}
	if p.Height > maxResetGraphicsDim {
		return rdperr.EncodeField(ctx, "height", "exceeds 32766")
	}
	if len(p.Monitors) > monitorCountMax {
		return rdperr.EncodeField(ctx, "monitorCount", "exceeds 16")
	}
	if err := dst.WriteU32(p.Width); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.Height); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(uint32(len(p.Monitors))); err != nil {
		return rdperr.Encode(ctx, err)
	}
	for i := range p.Monitors {
		if err := p.Monitors[i].Encode(dst); err != nil {
			return err
		}
	}
	padding := resetGraphicsPduSize - 8 - p.monitorsBytes()
	return wrapPlainErr(ctx, dst.WriteZeros(padding))
}

func (p *ResetGraphicsPdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.ResetGraphicsPdu"
	var err error
	if p.Width, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.Height, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.Width > maxResetGraphicsDim {
		return rdperr.InvalidField(ctx, "width", "exceeds 32766")
	}
	if p.Height > maxResetGraphicsDim {
		return rdperr.InvalidField(ctx, "height", "exceeds 32766")
	}
	count, err := src.ReadU32()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	if count > monitorCountMax {
		return rdperr.InvalidField(ctx, "monitorCount", "exceeds 16")
	}
	p.Monitors = make([]MonitorDef, count)
	for i := range p.Monitors {
		if err := p.Monitors[i].Decode(src); err != nil {
			return err
		}
	}
	padding := resetGraphicsPduSize - 8 - p.monitorsBytes()
	if padding > 0 {
		if err := src.Skip(padding); err != nil {
			return rdperr.Decode(ctx, err)
		}
	}
	return nil
}

// MapSurfaceToOutputPdu maps a surface onto the physical output at a fixed
// origin (MS-RDPEGFX 2.2.2.15).
type MapSurfaceToOutputPdu struct {
	SurfaceID     uint16
	OutputOriginX uint32
	OutputOriginY uint32
}

func (p *MapSurfaceToOutputPdu) Name() string { return "egfx.MapSurfaceToOutputPdu" }
func (p *MapSurfaceToOutputPdu) Size() int    { return 2 + 2 + 4 + 4 }

func (p *MapSurfaceToOutputPdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.MapSurfaceToOutputPdu"
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(0); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.OutputOriginX); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteU32(p.OutputOriginY))
}

func (p *MapSurfaceToOutputPdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.MapSurfaceToOutputPdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if err := src.Skip(2); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.OutputOriginX, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.OutputOriginY, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return nil
}

// CacheEntryMetadata describes one bitmap a client is offering to restore
// from a prior session's cache (MS-RDPEGFX 2.2.2.16).
type CacheEntryMetadata struct {
	CacheKey  uint64
	BitmapLen uint32
}

const cacheEntryMetadataSize = 12

func (m CacheEntryMetadata) Encode(dst *cursor.Writer) error {
	ctx := "egfx.CacheEntryMetadata"
	if err := dst.WriteU64(m.CacheKey); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteU32(m.BitmapLen))
}

func (m *CacheEntryMetadata) Decode(src *cursor.Reader) error {
	ctx := "egfx.CacheEntryMetadata"
	var err error
	if m.CacheKey, err = src.ReadU64(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if m.BitmapLen, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return nil
}

// CacheImportOfferPdu is the client's offer of surfaces it still has cached
// from a prior session (MS-RDPEGFX 2.2.2.16).
type CacheImportOfferPdu struct {
	CacheEntries []CacheEntryMetadata
}

func (p *CacheImportOfferPdu) Name() string { return "egfx.CacheImportOfferPdu" }

func (p *CacheImportOfferPdu) Size() int {
	return 2 + len(p.CacheEntries)*cacheEntryMetadataSize
}

func (p *CacheImportOfferPdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.CacheImportOfferPdu"
	if err := dst.WriteU16(uint16(len(p.CacheEntries))); err != nil {
		return rdperr.Encode(ctx, err)
	}
	for i := range p.CacheEntries {
		if err := p.CacheEntries[i].Encode(dst); err != nil {
			return err
		}
	}
	return nil
}

func (p *CacheImportOfferPdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.CacheImportOfferPdu"
	count, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.CacheEntries = make([]CacheEntryMetadata, count)
	for i := range p.CacheEntries {
		if err := p.CacheEntries[i].Decode(src); err != nil {
			return err
		}
	}
	return nil
}

// CacheImportReplyPdu is the server's acknowledgement of which offered
// cache slots it accepted, in offer order (MS-RDPEGFX 2.2.2.17).
type CacheImportReplyPdu struct {
	CacheSlots []uint16
}

func (p *CacheImportReplyPdu) Name() string { return "egfx.CacheImportReplyPdu" }
func (p *CacheImportReplyPdu) Size() int    { return 2 + len(p.CacheSlots)*2 }

func (p *CacheImportReplyPdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.CacheImportReplyPdu"
	if err := dst.WriteU16(uint16(len(p.CacheSlots))); err != nil {
		return rdperr.Encode(ctx, err)
	}
	for _, slot := range p.CacheSlots {
		if err := dst.WriteU16(slot); err != nil {
			return rdperr.Encode(ctx, err)
		}
	}
	return nil
}

func (p *CacheImportReplyPdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.CacheImportReplyPdu"
	count, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.CacheSlots = make([]uint16, count)
	for i := range p.CacheSlots {
		v, err := src.ReadU16()
		if err != nil {
			return rdperr.Decode(ctx, err)
		}
		p.CacheSlots[i] = v
	}
	return nil
}

// CapabilitiesAdvertisePdu is the client's ordered list of capability sets
// it supports, most to least preferred (MS-RDPEGFX 2.2.3.2).
type CapabilitiesAdvertisePdu struct {
	CapsSets []CapabilitySet
}

func (p *CapabilitiesAdvertisePdu) Name() string { return "egfx.CapabilitiesAdvertisePdu" }

func (p *CapabilitiesAdvertisePdu) Size() int {
	n := 2
	for i := range p.CapsSets {
		n += p.CapsSets[i].Size()
	}
	return n
}

func (p *CapabilitiesAdvertisePdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.CapabilitiesAdvertisePdu"
	if err := dst.WriteU16(uint16(len(p.CapsSets))); err != nil {
		return rdperr.Encode(ctx, err)
	}
	for i := range p.CapsSets {
		if err := p.CapsSets[i].Encode(dst); err != nil {
			return err
		}
	}
	return nil
}

func (p *CapabilitiesAdvertisePdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.CapabilitiesAdvertisePdu"
	count, err := src.ReadU16()
	if err != nil {
		return rdperr.Decode(ctx, err)
	}
	p.CapsSets = make([]CapabilitySet, count)
	for i := range p.CapsSets {
		if err := p.CapsSets[i].Decode(src); err != nil {
			return err
		}
	}
	return nil
}

// CapabilitiesConfirmPdu is the server's selection of exactly one of the
// client's advertised capability sets (MS-RDPEGFX 2.2.3.3).
type CapabilitiesConfirmPdu struct {
	CapsSet CapabilitySet
}

func (p *CapabilitiesConfirmPdu) Name() string { return "egfx.CapabilitiesConfirmPdu" }
func (p *CapabilitiesConfirmPdu) Size() int    { return p.CapsSet.Size() }

func (p *CapabilitiesConfirmPdu) Encode(dst *cursor.Writer) error {
	return p.CapsSet.Encode(dst)
}

func (p *CapabilitiesConfirmPdu) Decode(src *cursor.Reader) error {
	return p.CapsSet.Decode(src)
}

// MapSurfaceToWindowPdu maps a surface onto an RAIL window (MS-RDPEGFX
// 2.2.2.18).
type MapSurfaceToWindowPdu struct {
	SurfaceID    uint16
	WindowID     uint64
	MappedWidth  uint32
	MappedHeight uint32
}

func (p *MapSurfaceToWindowPdu) Name() string { return "egfx.MapSurfaceToWindowPdu" }
func (p *MapSurfaceToWindowPdu) Size() int    { return 2 + 8 + 4 + 4 }

func (p *MapSurfaceToWindowPdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.MapSurfaceToWindowPdu"
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU64(p.WindowID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.MappedWidth); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteU32(p.MappedHeight))
}

func (p *MapSurfaceToWindowPdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.MapSurfaceToWindowPdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.WindowID, err = src.ReadU64(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.MappedWidth, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.MappedHeight, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return nil
}

// QoeFrameAcknowledgePdu is the client's quality-of-experience timing
// feedback for a decoded frame (MS-RDPEGFX 2.2.2.19).
type QoeFrameAcknowledgePdu struct {
	FrameID    uint32
	Timestamp  uint32
	TimeDiffSE uint16
	TimeDiffDR uint16
}

func (p *QoeFrameAcknowledgePdu) Name() string { return "egfx.QoeFrameAcknowledgePdu" }
func (p *QoeFrameAcknowledgePdu) Size() int    { return 4 + 4 + 2 + 2 }

func (p *QoeFrameAcknowledgePdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.QoeFrameAcknowledgePdu"
	if err := dst.WriteU32(p.FrameID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.Timestamp); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(p.TimeDiffSE); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteU16(p.TimeDiffDR))
}

func (p *QoeFrameAcknowledgePdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.QoeFrameAcknowledgePdu"
	var err error
	if p.FrameID, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.Timestamp, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.TimeDiffSE, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.TimeDiffDR, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return nil
}

// MapSurfaceToScaledOutputPdu maps a surface onto the physical output with
// independent target dimensions, enabling server-side scaling (MS-RDPEGFX
// 2.2.2.20).
type MapSurfaceToScaledOutputPdu struct {
	SurfaceID     uint16
	OutputOriginX uint32
	OutputOriginY uint32
	TargetWidth   uint32
	TargetHeight  uint32
}

func (p *MapSurfaceToScaledOutputPdu) Name() string { return "egfx.MapSurfaceToScaledOutputPdu" }
func (p *MapSurfaceToScaledOutputPdu) Size() int    { return 2 + 2 + 4 + 4 + 4 + 4 }

func (p *MapSurfaceToScaledOutputPdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.MapSurfaceToScaledOutputPdu"
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU16(0); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.OutputOriginX); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.OutputOriginY); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.TargetWidth); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteU32(p.TargetHeight))
}

func (p *MapSurfaceToScaledOutputPdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.MapSurfaceToScaledOutputPdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if err := src.Skip(2); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.OutputOriginX, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.OutputOriginY, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.TargetWidth, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.TargetHeight, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return nil
}

// MapSurfaceToScaledWindowPdu maps a surface onto an RAIL window with
// independent target dimensions (MS-RDPEGFX 2.2.2.21).
type MapSurfaceToScaledWindowPdu struct {
	SurfaceID    uint16
	WindowID     uint64
	MappedWidth  uint32
	MappedHeight uint32
	TargetWidth  uint32
	TargetHeight uint32
}

func (p *MapSurfaceToScaledWindowPdu) Name() string { return "egfx.MapSurfaceToScaledWindowPdu" }
func (p *MapSurfaceToScaledWindowPdu) Size() int    { return 2 + 8 + 4 + 4 + 4 + 4 }

func (p *MapSurfaceToScaledWindowPdu) Encode(dst *cursor.Writer) error {
	ctx := "egfx.MapSurfaceToScaledWindowPdu"
	if err := dst.WriteU16(p.SurfaceID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU64(p.WindowID); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.MappedWidth); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.MappedHeight); err != nil {
		return rdperr.Encode(ctx, err)
	}
	if err := dst.WriteU32(p.TargetWidth); err != nil {
		return rdperr.Encode(ctx, err)
	}
	return wrapPlainErr(ctx, dst.WriteU32(p.TargetHeight))
}

func (p *MapSurfaceToScaledWindowPdu) Decode(src *cursor.Reader) error {
	ctx := "egfx.MapSurfaceToScaledWindowPdu"
	var err error
	if p.SurfaceID, err = src.ReadU16(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.WindowID, err = src.ReadU64(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.MappedWidth, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.MappedHeight, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.TargetWidth, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	if p.TargetHeight, err = src.ReadU32(); err != nil {
		return rdperr.Decode(ctx, err)
	}
	return nil
}
