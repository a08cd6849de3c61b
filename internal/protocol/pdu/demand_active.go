package pdu

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ServerDemandActive is the TS_DEMAND_ACTIVE_PDU (MS-RDPBCGR 2.2.1.13.1), the
// server's opening move of the Capabilities Exchange phase: it advertises the
// capability sets it supports and hands the client a shareId to echo back in
// its Confirm Active.
type ServerDemandActive struct {
	ShareControlHeader ShareControlHeader
	ShareID            uint32
	SourceDescriptor   []byte
	CapabilitySets     []CapabilitySet
	SessionID          uint32
}

// Deserialize decodes the PDU from wire format.
func (pdu *ServerDemandActive) Deserialize(wire io.Reader) error {
	if err := pdu.ShareControlHeader.Deserialize(wire); err != nil {
		return err
	}

	if err := binary.Read(wire, binary.LittleEndian, &pdu.ShareID); err != nil {
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

	return binary.Read(wire, binary.LittleEndian, &pdu.SessionID)
}

// FindCapability returns the capability set of the given type, or nil if the
// server did not advertise it.
func (pdu *ServerDemandActive) FindCapability(t CapabilitySetType) *CapabilitySet {
	for i := range pdu.CapabilitySets {
		if pdu.CapabilitySets[i].CapabilitySetType == t {
			return &pdu.CapabilitySets[i]
		}
	}
	return nil
}

// Serialize encodes the PDU to wire format, for tests and loopback fixtures.
func (pdu *ServerDemandActive) Serialize() []byte {
	capsBuf := new(bytes.Buffer)
	for i := range pdu.CapabilitySets {
		capsBuf.Write(pdu.CapabilitySets[i].Serialize())
	}
	capsBytes := capsBuf.Bytes()

	body := new(bytes.Buffer)
	_ = binary.Write(body, binary.LittleEndian, pdu.ShareID)
	_ = binary.Write(body, binary.LittleEndian, uint16(len(pdu.SourceDescriptor))) // #nosec G115
	_ = binary.Write(body, binary.LittleEndian, uint16(4+len(capsBytes)))          // #nosec G115
	body.Write(pdu.SourceDescriptor)
	_ = binary.Write(body, binary.LittleEndian, uint16(len(pdu.CapabilitySets))) // #nosec G115
	_ = binary.Write(body, binary.LittleEndian, uint16(0))                      // pad2Octets
	body.Write(capsBytes)
	_ = binary.Write(body, binary.LittleEndian, pdu.SessionID)

	pdu.ShareControlHeader.PDUType = TypeDemandActive
	pdu.ShareControlHeader.TotalLength = uint16(6 + body.Len()) // #nosec G115

	buf := new(bytes.Buffer)
	buf.Write(pdu.ShareControlHeader.Serialize())
	buf.Write(body.Bytes())

	return buf.Bytes()
}
