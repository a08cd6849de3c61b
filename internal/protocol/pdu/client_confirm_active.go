package pdu

import (
	"bytes"
	"encoding/binary"
	"io"
)

// clientConfirmActiveOriginatorID is the fixed originatorId carried by every
// TS_CONFIRM_ACTIVE_PDU (MS-RDPBCGR 2.2.1.13.2): it always carries the server
// channel id, the same 1002 as ServerChannelID.
const clientConfirmActiveOriginatorID = 0x03EA

// ClientConfirmActive represents the TS_CONFIRM_ACTIVE_PDU (MS-RDPBCGR
// 2.2.1.13.2), the client's response to a server Demand Active PDU during
// the Capability Exchange phase. It echoes the server's shareId back along
// with the set of capabilities the client supports.
type ClientConfirmActive struct {
	ShareControlHeader ShareControlHeader
	ShareID            uint32
	OriginatorID       uint16
	SourceDescriptor   []byte
	CapabilitySets     []CapabilitySet
}

// NewClientConfirmActive builds a Client Confirm Active PDU advertising this
// client's default capability set for a desktop of the given dimensions.
// When remoteApp is true, the Rail and WindowList capability sets are added
// to support RemoteApp (MS-RDPERP) session mode.
func NewClientConfirmActive(shareID uint32, userID uint16, width, height uint16, remoteApp bool) ClientConfirmActive {
	capSets := []CapabilitySet{
		NewGeneralCapabilitySet(),
		NewBitmapCapabilitySet(width, height),
		NewOrderCapabilitySet(),
		NewBitmapCacheCapabilitySetRev1(),
		NewPointerCapabilitySet(),
		NewInputCapabilitySet(),
		NewBrushCapabilitySet(),
		NewGlyphCacheCapabilitySet(),
		NewOffscreenBitmapCacheCapabilitySet(),
		NewVirtualChannelCapabilitySet(),
		NewSoundCapabilitySet(),
		NewMultifragmentUpdateCapabilitySet(),
		NewFrameAcknowledgeCapabilitySet(),
		NewSurfaceCommandsCapabilitySet(),
		NewBitmapCodecsCapabilitySet(),
	}

	if remoteApp {
		capSets = append(capSets, NewRailCapabilitySet(), NewWindowListCapabilitySet())
	}

	return ClientConfirmActive{
		ShareControlHeader: *newShareControlHeader(TypeConfirmActive, userID),
		ShareID:            shareID,
		OriginatorID:       clientConfirmActiveOriginatorID,
		SourceDescriptor:   []byte("go-rdp"),
		CapabilitySets:     capSets,
	}
}

// Serialize encodes the PDU to wire format.
func (pdu *ClientConfirmActive) Serialize() []byte {
	capsBuf := new(bytes.Buffer)
	for i := range pdu.CapabilitySets {
		capsBuf.Write(pdu.CapabilitySets[i].Serialize())
	}
	capsBytes := capsBuf.Bytes()

	body := new(bytes.Buffer)
	_ = binary.Write(body, binary.LittleEndian, pdu.ShareID)
	_ = binary.Write(body, binary.LittleEndian, pdu.OriginatorID)
	_ = binary.Write(body, binary.LittleEndian, uint16(len(pdu.SourceDescriptor)))  // #nosec G115
	_ = binary.Write(body, binary.LittleEndian, uint16(4+len(capsBytes)))           // #nosec G115
	body.Write(pdu.SourceDescriptor)
	_ = binary.Write(body, binary.LittleEndian, uint16(len(pdu.CapabilitySets))) // #nosec G115
	_ = binary.Write(body, binary.LittleEndian, uint16(0))                      // pad2Octets
	body.Write(capsBytes)

	pdu.ShareControlHeader.PDUType = TypeConfirmActive
	pdu.ShareControlHeader.TotalLength = uint16(6 + body.Len()) // #nosec G115

	buf := new(bytes.Buffer)
	buf.Write(pdu.ShareControlHeader.Serialize())
	buf.Write(body.Bytes())

	return buf.Bytes()
}

// Deserialize decodes the PDU from wire format.
func (pdu *ClientConfirmActive) Deserialize(wire io.Reader) error {
	if err := pdu.ShareControlHeader.Deserialize(wire); err != nil {
		return err
	}

	if err := binary.Read(wire, binary.LittleEndian, &pdu.ShareID); err != nil {
		return err
	}

	if err := binary.Read(wire, binary.LittleEndian, &pdu.OriginatorID); err != nil {
		return err
	}

	var lengthSourceDescriptor, lengthCombinedCapabilities uint16
	if err := binary.Read(wire, binary.LittleEndian, &lengthSourceDescriptor); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &lengthCombinedCapabilities); err != nil {
		return err
	}

	pdu.SourceDescriptor = make([]byte, lengthSourceDescriptor)
	if _, err := io.ReadFull(wire, pdu.SourceDescriptor); err != nil {
		return err
	}

	var numberCapabilities, pad uint16
	if err := binary.Read(wire, binary.LittleEndian, &numberCapabilities); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &pad); err != nil {
		return err
	}

	pdu.CapabilitySets = make([]CapabilitySet, numberCapabilities)
	for i := range pdu.CapabilitySets {
		if err := pdu.CapabilitySets[i].Deserialize(wire); err != nil {
			return err
		}
	}

	return nil
}
