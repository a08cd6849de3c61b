package pdu

import (
"bytes"
"encoding/binary"
"io"
)

// MultifragmentUpdateCapabilitySet represents the Multifragment Update Capability Set (MS-RDPBCGR 2.2.7.2.6).
type MultifragmentUpdateCapabilitySet struct {
	MaxRequestSize uint32
}

// NewMultifragmentUpdateCapabilitySet creates a Multifragment Update Capability Set with default values.
func NewMultifragmentUpdateCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType:                CapabilitySetTypeMultifragmentUpdate,
		MultifragmentUpdateCapabilitySet: &MultifragmentUpdateCapabilitySet{},
	}
}

// Serialize encodes the capability set to wire format.
func (s *MultifragmentUpdateCapabilitySet) Serialize() []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, &s.MaxRequestSize)

	return buf.Bytes()
}

// Deserialize decodes the capability set from wire format.
func (s *MultifragmentUpdateCapabilitySet) Deserialize(wire io.Reader) error {
	return binary.Read(wire, binary.LittleEndian, &s.MaxRequestSize)
}

// LargePointerSupportFlag96x96 advertises support for pointer shapes up to
// 96x96 pixels (MS-RDPBCGR 2.2.7.2.7, TS_LARGE_POINTER_CAPABILITYSET).
const LargePointerSupportFlag96x96 uint16 = 0x0001

// LargePointerCapabilitySet represents the Large Pointer Capability Set (MS-RDPBCGR 2.2.7.2.7).
type LargePointerCapabilitySet struct {
	LargePointerSupportFlags uint16
}

// NewLargePointerCapabilitySet creates a Large Pointer Capability Set
// advertising 96x96 pointer support, the size every Windows server since
// Vista actually sends regardless of what the client asks for.
func NewLargePointerCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeLargePointer,
		LargePointerCapabilitySet: &LargePointerCapabilitySet{
			LargePointerSupportFlags: LargePointerSupportFlag96x96,
		},
	}
}

// Serialize encodes the capability set to wire format.
func (s *LargePointerCapabilitySet) Serialize() []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, s.LargePointerSupportFlags)
	return buf.Bytes()
}

// Deserialize decodes the capability set from wire format.
func (s *LargePointerCapabilitySet) Deserialize(wire io.Reader) error {
	return binary.Read(wire, binary.LittleEndian, &s.LargePointerSupportFlags)
}

// DesktopCompositionCapabilitySet represents the Desktop Composition Capability Set (MS-RDPBCGR 2.2.7.2.8).
type DesktopCompositionCapabilitySet struct {
	CompDeskSupportLevel uint16
}

// Deserialize decodes the capability set from wire format.
func (s *DesktopCompositionCapabilitySet) Deserialize(wire io.Reader) error {
	return binary.Read(wire, binary.LittleEndian, &s.CompDeskSupportLevel)
}

// SurfaceCommandsCapabilitySet represents the Surface Commands Capability Set (MS-RDPBCGR 2.2.7.2.9).
type SurfaceCommandsCapabilitySet struct {
	CmdFlags uint32
}

// Surface command flags (MS-RDPBCGR 2.2.7.2.9).
const (
	// SurfCmdSetSurfaceBits indicates support for Set Surface Bits Command.
	SurfCmdSetSurfaceBits uint32 = 0x00000002
	// SurfCmdFrameMarker indicates support for Frame Marker Command.
	SurfCmdFrameMarker uint32 = 0x00000010
	// SurfCmdStreamSurfBits indicates support for Stream Surface Bits Command.
	SurfCmdStreamSurfBits uint32 = 0x00000040
)

// NewSurfaceCommandsCapabilitySet creates a Surface Commands Capability Set with default values.
func NewSurfaceCommandsCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeSurfaceCommands,
		SurfaceCommandsCapabilitySet: &SurfaceCommandsCapabilitySet{
			CmdFlags: SurfCmdSetSurfaceBits | SurfCmdFrameMarker | SurfCmdStreamSurfBits,
		},
	}
}

// Serialize encodes the capability set to wire format.
func (s *SurfaceCommandsCapabilitySet) Serialize() []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, s.CmdFlags)
	_ = binary.Write(buf, binary.LittleEndian, uint32(0)) // reserved
	return buf.Bytes()
}

// Deserialize decodes the capability set from wire format.
func (s *SurfaceCommandsCapabilitySet) Deserialize(wire io.Reader) error {
	var (
		reserved uint32
		err      error
	)

	err = binary.Read(wire, binary.LittleEndian, &s.CmdFlags)
	if err != nil {
		return err
	}

	err = binary.Read(wire, binary.LittleEndian, &reserved)
	if err != nil {
		return err
	}

	return nil
}

// FrameAcknowledgeCapabilitySet represents the Frame Acknowledge Capability
// Set, a FreeRDP/RemoteFX extension (CAPSETTYPE_FRAME_ACKNOWLEDGE) used to
// bound the number of outstanding unacknowledged frames during RemoteFX
// progressive encoding.
type FrameAcknowledgeCapabilitySet struct {
	MaxUnacknowledgedFrames uint32
}

// NewFrameAcknowledgeCapabilitySet creates a Frame Acknowledge Capability Set with default values.
func NewFrameAcknowledgeCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeFrameAcknowledge,
		FrameAcknowledgeCapabilitySet: &FrameAcknowledgeCapabilitySet{
			MaxUnacknowledgedFrames: 2,
		},
	}
}

// Serialize encodes the capability set to wire format.
func (s *FrameAcknowledgeCapabilitySet) Serialize() []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, s.MaxUnacknowledgedFrames)
	return buf.Bytes()
}

// Deserialize decodes the capability set from wire format.
func (s *FrameAcknowledgeCapabilitySet) Deserialize(wire io.Reader) error {
	return binary.Read(wire, binary.LittleEndian, &s.MaxUnacknowledgedFrames)
}

// BitmapCodec represents a bitmap codec entry (MS-RDPBCGR 2.2.7.2.10.1).
type BitmapCodec struct {
	CodecGUID       [16]byte
	CodecID         uint8
	CodecProperties []byte
}

// Deserialize decodes the bitmap codec from wire format.
func (c *BitmapCodec) Deserialize(wire io.Reader) error {
	var err error

	err = binary.Read(wire, binary.LittleEndian, &c.CodecGUID)
	if err != nil {
		return err
	}

	err = binary.Read(wire, binary.LittleEndian, &c.CodecID)
	if err != nil {
		return err
	}

	var codecPropertiesLength uint16

	err = binary.Read(wire, binary.LittleEndian, &codecPropertiesLength)
	if err != nil {
		return err
	}

	c.CodecProperties = make([]byte, codecPropertiesLength)

	_, err = wire.Read(c.CodecProperties)
	if err != nil {
		return err
	}

	return nil
}

// BitmapCodecsCapabilitySet represents the Bitmap Codecs Capability Set (MS-RDPBCGR 2.2.7.2.10).
type BitmapCodecsCapabilitySet struct {
	BitmapCodecArray []BitmapCodec
}

// Deserialize decodes the capability set from wire format.
func (s *BitmapCodecsCapabilitySet) Deserialize(wire io.Reader) error {
	var (
		bitmapCodecCount uint8
		err              error
	)

	err = binary.Read(wire, binary.LittleEndian, &bitmapCodecCount)
	if err != nil {
		return err
	}

	s.BitmapCodecArray = make([]BitmapCodec, bitmapCodecCount)

	for i := range s.BitmapCodecArray {
		err = s.BitmapCodecArray[i].Deserialize(wire)
		if err != nil {
			return err
		}
	}

	return nil
}

// NSCodecGUID is the GUID for NSCodec (CA8D1BB9-000F-154F-589F-AE2D1A87E2D6).
// Stored in little-endian format as per MS-RDPBCGR.
var NSCodecGUID = [16]byte{
	0xB9, 0x1B, 0x8D, 0xCA, 0x0F, 0x00, 0x4F, 0x15,
	0x58, 0x9F, 0xAE, 0x2D, 0x1A, 0x87, 0xE2, 0xD6,
}

// NSCodecCapabilitySet represents the NSCodec-specific properties
type NSCodecCapabilitySet struct {
	FAllowDynamicFidelity uint8
	FAllowSubsampling     uint8
	ColorLossLevel        uint8
}

// Serialize encodes the NSCodec properties to wire format.
func (c *NSCodecCapabilitySet) Serialize() []byte {
	return []byte{
		c.FAllowDynamicFidelity,
		c.FAllowSubsampling,
		c.ColorLossLevel,
	}
}

// Serialize encodes the bitmap codec to wire format.
func (c *BitmapCodec) Serialize() []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, c.CodecGUID)
	_ = binary.Write(buf, binary.LittleEndian, c.CodecID)
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(c.CodecProperties)))
	buf.Write(c.CodecProperties)

	return buf.Bytes()
}

// Serialize encodes the capability set to wire format.
func (s *BitmapCodecsCapabilitySet) Serialize() []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, uint8(len(s.BitmapCodecArray)))

	for _, codec := range s.BitmapCodecArray {
		buf.Write(codec.Serialize())
	}

	return buf.Bytes()
}

// RemoteFXGUID is the GUID for RemoteFX, CODEC_GUID_REMOTEFX
// (76772F12-BD72-4463-AFB3-B73C9C6F7886), stored in little-endian format as
// per MS-RDPBCGR.
var RemoteFXGUID = [16]byte{
	0x12, 0x2F, 0x77, 0x76, 0x72, 0xBD, 0x63, 0x44,
	0xAF, 0xB3, 0xB7, 0x3C, 0x9C, 0x6F, 0x78, 0x86,
}

// RemoteFX block types and codec/capset identifiers (MS-RDPRFX 2.2.1.1/2.2.1.1.1).
const (
	rfxBlockTypeCapabilities    uint16 = 0xCCC0
	rfxBlockTypeCapabilitySet   uint16 = 0xCCC1
	rfxCapsetTypeRemoteFX       uint16 = 0xCFC0
	rfxCodecIDRemoteFX          uint8  = 0x01
	rfxICapVersion1             uint16 = 0x0100
	rfxICapTile64x64            uint16 = 0x0040
	rfxICapColConvICT           uint8  = 0x01
	rfxICapTransformDWT53A      uint8  = 0x01
	rfxICapEntropyRLGR1         uint8  = 0x01
	rfxICapEntropyRLGR3         uint8  = 0x04
)

// RfxICap is one TS_RFX_ICAP entry (MS-RDPRFX 2.2.1.1.1): a single supported
// combination of tile size, color conversion, wavelet transform, and entropy
// coder the client is willing to decode RemoteFX tiles with.
type RfxICap struct {
	Version          uint16
	TileSize         uint16
	Flags            uint8
	ColorConversion  uint8
	Transform        uint8
	EntropyAlgorithm uint8
}

// Serialize encodes one TS_RFX_ICAP entry.
func (c RfxICap) Serialize() []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, c.Version)
	_ = binary.Write(buf, binary.LittleEndian, c.TileSize)
	_ = buf.WriteByte(c.Flags)
	_ = buf.WriteByte(c.ColorConversion)
	_ = buf.WriteByte(c.Transform)
	_ = buf.WriteByte(c.EntropyAlgorithm)
	return buf.Bytes()
}

// RfxCapset is the TS_RFX_CAPSET wrapping one or more RfxICap entries that
// share a codec id (MS-RDPRFX 2.2.1.1.1). This client offers one tile size
// with two entropy coders, so len(ICaps) is small in practice.
type RfxCapset struct {
	CodecID uint8
	ICaps   []RfxICap
}

// Serialize encodes the TS_RFX_CAPSET block, including its own blockType/
// blockLen/codecId/capsetType/numIcaps/icapLen header fields.
func (s RfxCapset) Serialize() []byte {
	icapsBuf := new(bytes.Buffer)
	for _, icap := range s.ICaps {
		icapsBuf.Write(icap.Serialize())
	}
	icapBytes := icapsBuf.Bytes()
	icapLen := 0
	if len(s.ICaps) > 0 {
		icapLen = len(icapBytes) / len(s.ICaps)
	}

	// header: blockType(2) blockLen(4) codecId(1) capsetType(2) numIcaps(2) icapLen(2)
	const headerSize = 13
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, rfxBlockTypeCapabilitySet)
	_ = binary.Write(buf, binary.LittleEndian, uint32(headerSize+len(icapBytes))) // #nosec G115
	_ = buf.WriteByte(s.CodecID)
	_ = binary.Write(buf, binary.LittleEndian, rfxCapsetTypeRemoteFX)
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(s.ICaps))) // #nosec G115
	_ = binary.Write(buf, binary.LittleEndian, uint16(icapLen))     // #nosec G115
	buf.Write(icapBytes)

	return buf.Bytes()
}

// RfxClientCapsContainer is the TS_RFX_CLIENT_CAPS_CONTAINER (MS-RDPRFX
// 2.2.1.1) carried as the CodecProperties of the RemoteFX entry in a Bitmap
// Codecs Capability Set: a length-prefixed TS_RFX_CAPS block listing the
// tile-size/transform/entropy combinations this client can decode.
type RfxClientCapsContainer struct {
	Capsets []RfxCapset
}

// Serialize encodes the full container, including the outer length field
// TS_RFX_CLIENT_CAPS_CONTAINER carries ahead of its TS_RFX_CAPS payload.
func (c RfxClientCapsContainer) Serialize() []byte {
	capsetsBuf := new(bytes.Buffer)
	for _, capset := range c.Capsets {
		capsetsBuf.Write(capset.Serialize())
	}
	capsetBytes := capsetsBuf.Bytes()

	// TS_RFX_CAPS: blockType(2) blockLen(4) numCapsets(2)
	capsBuf := new(bytes.Buffer)
	_ = binary.Write(capsBuf, binary.LittleEndian, rfxBlockTypeCapabilities)
	_ = binary.Write(capsBuf, binary.LittleEndian, uint32(8+len(capsetBytes))) // #nosec G115
	_ = binary.Write(capsBuf, binary.LittleEndian, uint16(len(c.Capsets)))     // #nosec G115
	capsBuf.Write(capsetBytes)
	capsBytes := capsBuf.Bytes()

	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(4+len(capsBytes))) // #nosec G115
	buf.Write(capsBytes)

	return buf.Bytes()
}

// newRemoteFXBitmapCodec builds the BitmapCodec entry advertising RemoteFX
// support: one RfxCapset offering 64x64 tiles under the DWT 5-3 reversible
// transform, with both the RLGR1 and RLGR3 entropy coders a server may pick
// between per MS-RDPRFX 3.1.8.
func newRemoteFXBitmapCodec(codecID uint8) BitmapCodec {
	container := RfxClientCapsContainer{
		Capsets: []RfxCapset{
			{
				CodecID: rfxCodecIDRemoteFX,
				ICaps: []RfxICap{
					{
						Version:          rfxICapVersion1,
						TileSize:         rfxICapTile64x64,
						ColorConversion:  rfxICapColConvICT,
						Transform:        rfxICapTransformDWT53A,
						EntropyAlgorithm: rfxICapEntropyRLGR1,
					},
					{
						Version:          rfxICapVersion1,
						TileSize:         rfxICapTile64x64,
						ColorConversion:  rfxICapColConvICT,
						Transform:        rfxICapTransformDWT53A,
						EntropyAlgorithm: rfxICapEntropyRLGR3,
					},
				},
			},
		},
	}

	return BitmapCodec{
		CodecGUID:       RemoteFXGUID,
		CodecID:         codecID,
		CodecProperties: container.Serialize(),
	}
}

// NewBitmapCodecsCapabilitySet creates a capability set advertising both
// NSCodec and RemoteFX support. This module only advertises the codecs; it
// does not decode NSCodec or RemoteFX image data.
func NewBitmapCodecsCapabilitySet() CapabilitySet {
	nscodecProps := NSCodecCapabilitySet{
		FAllowDynamicFidelity: 1, // Allow dynamic fidelity
		FAllowSubsampling:     1, // Allow chroma subsampling
		ColorLossLevel:        3, // Moderate color loss (1=lossless, 7=max loss)
	}

	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeBitmapCodecs,
		BitmapCodecsCapabilitySet: &BitmapCodecsCapabilitySet{
			BitmapCodecArray: []BitmapCodec{
				{
					CodecGUID:       NSCodecGUID,
					CodecID:         1, // Will be assigned by server
					CodecProperties: nscodecProps.Serialize(),
				},
				newRemoteFXBitmapCodec(2),
			},
		},
	}
}

// RailCapabilitySet represents the Remote Programs Capability Set (MS-RDPBCGR 2.2.7.2.4).
type RailCapabilitySet struct {
	RailSupportLevel uint32
}

// NewRailCapabilitySet creates a Remote Programs Capability Set with default values.
func NewRailCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeRail,
		RailCapabilitySet: &RailCapabilitySet{
			RailSupportLevel: 1, // TS_RAIL_LEVEL_SUPPORTED
		},
	}
}

// Serialize encodes the capability set to wire format.
func (s *RailCapabilitySet) Serialize() []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, s.RailSupportLevel)

	return buf.Bytes()
}

// WindowListCapabilitySet represents the Window List Capability Set (MS-RDPBCGR 2.2.7.2.5).
type WindowListCapabilitySet struct {
	WndSupportLevel     uint32
	NumIconCaches       uint8
	NumIconCacheEntries uint16
}

// NewWindowListCapabilitySet creates a Window List Capability Set with default values.
func NewWindowListCapabilitySet() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeWindow,
		WindowListCapabilitySet: &WindowListCapabilitySet{
			WndSupportLevel: 0, // TS_WINDOW_LEVEL_NOT_SUPPORTED
		},
	}
}

// Serialize encodes the capability set to wire format.
func (s *WindowListCapabilitySet) Serialize() []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, s.WndSupportLevel)
	_ = binary.Write(buf, binary.LittleEndian, s.NumIconCaches)
	_ = binary.Write(buf, binary.LittleEndian, s.NumIconCacheEntries)

	return buf.Bytes()
}
