package pdu

import (
	"bytes"
	"encoding/binary"
	"io"
)

// CapabilitySetType is the capSetType field of a TS_CAPS_SET header
// (MS-RDPBCGR 2.2.1.13.1.1.1 / 2.2.7.1).
type CapabilitySetType uint16

const (
	CapabilitySetTypeGeneral               CapabilitySetType = 1
	CapabilitySetTypeBitmap                CapabilitySetType = 2
	CapabilitySetTypeOrder                 CapabilitySetType = 3
	CapabilitySetTypeBitmapCache           CapabilitySetType = 4
	CapabilitySetTypeControl               CapabilitySetType = 5
	CapabilitySetTypeActivation            CapabilitySetType = 7
	CapabilitySetTypePointer               CapabilitySetType = 8
	CapabilitySetTypeShare                 CapabilitySetType = 9
	CapabilitySetTypeColorCache            CapabilitySetType = 10
	CapabilitySetTypeSound                 CapabilitySetType = 12
	CapabilitySetTypeInput                 CapabilitySetType = 13
	CapabilitySetTypeFont                  CapabilitySetType = 14
	CapabilitySetTypeBrush                 CapabilitySetType = 15
	CapabilitySetTypeGlyphCache            CapabilitySetType = 16
	CapabilitySetTypeOffscreenBitmapCache  CapabilitySetType = 17
	CapabilitySetTypeBitmapCacheHostSupport CapabilitySetType = 18
	CapabilitySetTypeBitmapCacheRev2       CapabilitySetType = 19
	CapabilitySetTypeVirtualChannel        CapabilitySetType = 20
	CapabilitySetTypeDrawNineGridCache     CapabilitySetType = 21
	CapabilitySetTypeDrawGDIPlus           CapabilitySetType = 22
	CapabilitySetTypeRail                  CapabilitySetType = 23
	CapabilitySetTypeWindow                CapabilitySetType = 24
	CapabilitySetTypeCompDesk              CapabilitySetType = 25
	CapabilitySetTypeMultifragmentUpdate   CapabilitySetType = 26
	CapabilitySetTypeLargePointer          CapabilitySetType = 27
	CapabilitySetTypeSurfaceCommands       CapabilitySetType = 28
	CapabilitySetTypeBitmapCodecs          CapabilitySetType = 29
	CapabilitySetTypeFrameAcknowledge      CapabilitySetType = 30
)

const capabilitySetHeaderSize = 4

// CapabilitySet is a single TS_CAPS_SET entry exchanged during the Capability
// Exchange phase of the connection sequence (MS-RDPBCGR 2.2.1.13). Exactly
// one of the typed fields below is populated, matching CapabilitySetType. A
// type this client doesn't recognize is preserved in RawData so a demand
// active PDU can still be parsed and re-serialized without loss.
type CapabilitySet struct {
	CapabilitySetType CapabilitySetType

	GeneralCapabilitySet                 *GeneralCapabilitySet
	BitmapCapabilitySet                  *BitmapCapabilitySet
	OrderCapabilitySet                   *OrderCapabilitySet
	BitmapCacheCapabilitySetRev1         *BitmapCacheCapabilitySetRev1
	BitmapCacheCapabilitySetRev2         *BitmapCacheCapabilitySetRev2
	ControlCapabilitySet                 *ControlCapabilitySet
	WindowActivationCapabilitySet        *WindowActivationCapabilitySet
	PointerCapabilitySet                 *PointerCapabilitySet
	ShareCapabilitySet                   *ShareCapabilitySet
	ColorCacheCapabilitySet              *ColorCacheCapabilitySet
	SoundCapabilitySet                   *SoundCapabilitySet
	InputCapabilitySet                   *InputCapabilitySet
	FontCapabilitySet                    *FontCapabilitySet
	BrushCapabilitySet                   *BrushCapabilitySet
	GlyphCacheCapabilitySet              *GlyphCacheCapabilitySet
	OffscreenBitmapCacheCapabilitySet    *OffscreenBitmapCacheCapabilitySet
	BitmapCacheHostSupportCapabilitySet  *BitmapCacheHostSupportCapabilitySet
	VirtualChannelCapabilitySet          *VirtualChannelCapabilitySet
	DrawNineGridCacheCapabilitySet       *DrawNineGridCacheCapabilitySet
	DrawGDIPlusCapabilitySet             *DrawGDIPlusCapabilitySet
	RailCapabilitySet                    *RailCapabilitySet
	WindowListCapabilitySet              *WindowListCapabilitySet
	DesktopCompositionCapabilitySet      *DesktopCompositionCapabilitySet
	MultifragmentUpdateCapabilitySet     *MultifragmentUpdateCapabilitySet
	LargePointerCapabilitySet            *LargePointerCapabilitySet
	SurfaceCommandsCapabilitySet         *SurfaceCommandsCapabilitySet
	BitmapCodecsCapabilitySet            *BitmapCodecsCapabilitySet
	FrameAcknowledgeCapabilitySet        *FrameAcknowledgeCapabilitySet

	// RawData holds the verbatim body of a capability set whose type this
	// client does not recognize.
	RawData []byte
}

// Serialize encodes the capability set header and body to wire format.
func (s *CapabilitySet) Serialize() []byte {
	var body []byte

	switch s.CapabilitySetType {
	case CapabilitySetTypeGeneral:
		body = s.GeneralCapabilitySet.Serialize()
	case CapabilitySetTypeBitmap:
		body = s.BitmapCapabilitySet.Serialize()
	case CapabilitySetTypeOrder:
		body = s.OrderCapabilitySet.Serialize()
	case CapabilitySetTypeBitmapCache:
		body = s.BitmapCacheCapabilitySetRev1.Serialize()
	case CapabilitySetTypeBitmapCacheRev2:
		body = s.BitmapCacheCapabilitySetRev2.Serialize()
	case CapabilitySetTypeControl:
		body = s.ControlCapabilitySet.Serialize()
	case CapabilitySetTypeActivation:
		body = s.WindowActivationCapabilitySet.Serialize()
	case CapabilitySetTypePointer:
		body = s.PointerCapabilitySet.Serialize()
	case CapabilitySetTypeShare:
		body = s.ShareCapabilitySet.Serialize()
	case CapabilitySetTypeColorCache:
		body = s.ColorCacheCapabilitySet.Serialize()
	case CapabilitySetTypeSound:
		body = s.SoundCapabilitySet.Serialize()
	case CapabilitySetTypeInput:
		body = s.InputCapabilitySet.Serialize()
	case CapabilitySetTypeFont:
		body = s.FontCapabilitySet.Serialize()
	case CapabilitySetTypeBrush:
		body = s.BrushCapabilitySet.Serialize()
	case CapabilitySetTypeGlyphCache:
		body = s.GlyphCacheCapabilitySet.Serialize()
	case CapabilitySetTypeOffscreenBitmapCache:
		body = s.OffscreenBitmapCacheCapabilitySet.Serialize()
	case CapabilitySetTypeBitmapCacheHostSupport:
		body = s.BitmapCacheHostSupportCapabilitySet.Serialize()
	case CapabilitySetTypeVirtualChannel:
		body = s.VirtualChannelCapabilitySet.Serialize()
	case CapabilitySetTypeDrawNineGridCache:
		body = s.DrawNineGridCacheCapabilitySet.Serialize()
	case CapabilitySetTypeDrawGDIPlus:
		body = s.DrawGDIPlusCapabilitySet.Serialize()
	case CapabilitySetTypeLargePointer:
		body = s.LargePointerCapabilitySet.Serialize()
	case CapabilitySetTypeRail:
		body = s.RailCapabilitySet.Serialize()
	case CapabilitySetTypeWindow:
		body = s.WindowListCapabilitySet.Serialize()
	case CapabilitySetTypeMultifragmentUpdate:
		body = s.MultifragmentUpdateCapabilitySet.Serialize()
	case CapabilitySetTypeFrameAcknowledge:
		body = s.FrameAcknowledgeCapabilitySet.Serialize()
	case CapabilitySetTypeSurfaceCommands:
		body = s.SurfaceCommandsCapabilitySet.Serialize()
	case CapabilitySetTypeBitmapCodecs:
		body = s.BitmapCodecsCapabilitySet.Serialize()
	default:
		body = s.RawData
	}

	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, s.CapabilitySetType)
	_ = binary.Write(buf, binary.LittleEndian, uint16(capabilitySetHeaderSize+len(body))) // #nosec G115
	buf.Write(body)

	return buf.Bytes()
}

// Deserialize decodes a full capability set (header + body) from wire
// format. A type this client does not recognize still decodes
// successfully, with the body preserved in RawData.
func (s *CapabilitySet) Deserialize(wire io.Reader) error {
	if err := binary.Read(wire, binary.LittleEndian, &s.CapabilitySetType); err != nil {
		return err
	}

	var length uint16
	if err := binary.Read(wire, binary.LittleEndian, &length); err != nil {
		return err
	}

	bodyLen := 0
	if length > capabilitySetHeaderSize {
		bodyLen = int(length) - capabilitySetHeaderSize
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(wire, body); err != nil {
		return err
	}

	r := bytes.NewReader(body)

	switch s.CapabilitySetType {
	case CapabilitySetTypeGeneral:
		s.GeneralCapabilitySet = &GeneralCapabilitySet{}
		return s.GeneralCapabilitySet.Deserialize(r)
	case CapabilitySetTypeBitmap:
		s.BitmapCapabilitySet = &BitmapCapabilitySet{}
		return s.BitmapCapabilitySet.Deserialize(r)
	case CapabilitySetTypeOrder:
		s.OrderCapabilitySet = &OrderCapabilitySet{}
		return s.OrderCapabilitySet.Deserialize(r)
	case CapabilitySetTypeBitmapCache:
		s.BitmapCacheCapabilitySetRev1 = &BitmapCacheCapabilitySetRev1{}
		return s.BitmapCacheCapabilitySetRev1.Deserialize(r)
	case CapabilitySetTypeControl:
		s.ControlCapabilitySet = &ControlCapabilitySet{}
		return s.ControlCapabilitySet.Deserialize(r)
	case CapabilitySetTypeActivation:
		s.WindowActivationCapabilitySet = &WindowActivationCapabilitySet{}
		return s.WindowActivationCapabilitySet.Deserialize(r)
	case CapabilitySetTypePointer:
		set := &PointerCapabilitySet{lengthCapability: uint16(bodyLen)} // #nosec G115
		s.PointerCapabilitySet = set
		return set.Deserialize(r)
	case CapabilitySetTypeShare:
		s.ShareCapabilitySet = &ShareCapabilitySet{}
		return s.ShareCapabilitySet.Deserialize(r)
	case CapabilitySetTypeColorCache:
		s.ColorCacheCapabilitySet = &ColorCacheCapabilitySet{}
		return s.ColorCacheCapabilitySet.Deserialize(r)
	case CapabilitySetTypeSound:
		s.SoundCapabilitySet = &SoundCapabilitySet{}
		return s.SoundCapabilitySet.Deserialize(r)
	case CapabilitySetTypeInput:
		s.InputCapabilitySet = &InputCapabilitySet{}
		return s.InputCapabilitySet.Deserialize(r)
	case CapabilitySetTypeFont:
		s.FontCapabilitySet = &FontCapabilitySet{}
		return s.FontCapabilitySet.Deserialize(r)
	case CapabilitySetTypeBrush:
		s.BrushCapabilitySet = &BrushCapabilitySet{}
		return s.BrushCapabilitySet.Deserialize(r)
	case CapabilitySetTypeGlyphCache:
		s.GlyphCacheCapabilitySet = &GlyphCacheCapabilitySet{}
		return s.GlyphCacheCapabilitySet.Deserialize(r)
	case CapabilitySetTypeOffscreenBitmapCache:
		s.OffscreenBitmapCacheCapabilitySet = &OffscreenBitmapCacheCapabilitySet{}
		return s.OffscreenBitmapCacheCapabilitySet.Deserialize(r)
	case CapabilitySetTypeBitmapCacheHostSupport:
		s.BitmapCacheHostSupportCapabilitySet = &BitmapCacheHostSupportCapabilitySet{}
		return s.BitmapCacheHostSupportCapabilitySet.Deserialize(r)
	case CapabilitySetTypeVirtualChannel:
		s.VirtualChannelCapabilitySet = &VirtualChannelCapabilitySet{}
		return s.VirtualChannelCapabilitySet.Deserialize(r)
	case CapabilitySetTypeDrawNineGridCache:
		s.DrawNineGridCacheCapabilitySet = &DrawNineGridCacheCapabilitySet{}
		return s.DrawNineGridCacheCapabilitySet.Deserialize(r)
	case CapabilitySetTypeDrawGDIPlus:
		s.DrawGDIPlusCapabilitySet = &DrawGDIPlusCapabilitySet{}
		return s.DrawGDIPlusCapabilitySet.Deserialize(r)
	case CapabilitySetTypeLargePointer:
		s.LargePointerCapabilitySet = &LargePointerCapabilitySet{}
		return s.LargePointerCapabilitySet.Deserialize(r)
	case CapabilitySetTypeCompDesk:
		s.DesktopCompositionCapabilitySet = &DesktopCompositionCapabilitySet{}
		return s.DesktopCompositionCapabilitySet.Deserialize(r)
	case CapabilitySetTypeMultifragmentUpdate:
		s.MultifragmentUpdateCapabilitySet = &MultifragmentUpdateCapabilitySet{}
		return s.MultifragmentUpdateCapabilitySet.Deserialize(r)
	case CapabilitySetTypeFrameAcknowledge:
		s.FrameAcknowledgeCapabilitySet = &FrameAcknowledgeCapabilitySet{}
		return s.FrameAcknowledgeCapabilitySet.Deserialize(r)
	case CapabilitySetTypeSurfaceCommands:
		s.SurfaceCommandsCapabilitySet = &SurfaceCommandsCapabilitySet{}
		return s.SurfaceCommandsCapabilitySet.Deserialize(r)
	case CapabilitySetTypeBitmapCodecs:
		s.BitmapCodecsCapabilitySet = &BitmapCodecsCapabilitySet{}
		return s.BitmapCodecsCapabilitySet.Deserialize(r)
	case CapabilitySetTypeRail:
		s.RailCapabilitySet = &RailCapabilitySet{}
		return binary.Read(r, binary.LittleEndian, &s.RailCapabilitySet.RailSupportLevel)
	case CapabilitySetTypeWindow:
		set := &WindowListCapabilitySet{}
		if err := binary.Read(r, binary.LittleEndian, &set.WndSupportLevel); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &set.NumIconCaches); err != nil {
			return err
		}
		s.WindowListCapabilitySet = set
		return binary.Read(r, binary.LittleEndian, &set.NumIconCacheEntries)
	default:
		s.RawData = body
		return nil
	}
}

// DeserializeQuick reads only the capability set header and type-tags the
// set without decoding its body, for callers that only need to enumerate
// which capability types a peer advertised.
func (s *CapabilitySet) DeserializeQuick(wire io.Reader) error {
	if err := binary.Read(wire, binary.LittleEndian, &s.CapabilitySetType); err != nil {
		return err
	}

	var length uint16
	if err := binary.Read(wire, binary.LittleEndian, &length); err != nil {
		return err
	}

	bodyLen := 0
	if length > capabilitySetHeaderSize {
		bodyLen = int(length) - capabilitySetHeaderSize
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(wire, body); err != nil {
		return err
	}
	s.RawData = body

	return nil
}
