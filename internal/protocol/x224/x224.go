// Package x224 implements the X.224 connection-oriented transport TPDUs used
// to bootstrap an RDP connection: the Connection Request/Confirm exchange
// that carries RDP protocol negotiation, and the Data TPDU that wraps every
// PDU sent afterwards.
package x224

import (
	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

const (
	// crCode is the TPDU code for a Connection Request (CR).
	crCode uint8 = 0xE0
	// ccCodeMask selects the high nibble of a Connection Confirm (CC) code;
	// the low nibble carries credit field bits this module never sets.
	ccCodeMask uint8 = 0xF0
	ccCode     uint8 = 0xD0
	// dtCode is the TPDU code for a Data TPDU (DT).
	dtCode uint8 = 0xF0
	// eotTPDUNr marks end-of-transmission with TPDU-NR 0; this module never
	// fragments a Data TPDU.
	eotTPDUNr uint8 = 0x80

	fixedHeaderLen = 6 // CRCDT/CCCDT + DSTREF + SRCREF + ClassOption, after LI
	dataHeaderLen  = 2 // DTROA + NR-EOT, after LI
)

// ConnectionRequest is the client's X.224 Connection Request TPDU. UserData
// carries the RDP Negotiation Request cookie/flags.
type ConnectionRequest struct {
	DstRef      uint16
	SrcRef      uint16
	ClassOption uint8
	UserData    []byte
}

func (r *ConnectionRequest) Name() string { return "x224.ConnectionRequest" }

func (r *ConnectionRequest) Size() int {
	return 1 + fixedHeaderLen + len(r.UserData)
}

func (r *ConnectionRequest) Encode(dst *cursor.Writer) error {
	li := fixedHeaderLen + len(r.UserData)
	if li > 0xFF {
		return rdperr.EncodeField("x224.ConnectionRequest", "UserData", "length indicator overflows one byte")
	}
	if err := dst.WriteU8(uint8(li)); err != nil {
		return rdperr.Encode("x224.ConnectionRequest", err)
	}
	if err := dst.WriteU8(crCode); err != nil {
		return rdperr.Encode("x224.ConnectionRequest", err)
	}
	if err := dst.WriteU16BE(r.DstRef); err != nil {
		return rdperr.Encode("x224.ConnectionRequest", err)
	}
	if err := dst.WriteU16BE(r.SrcRef); err != nil {
		return rdperr.Encode("x224.ConnectionRequest", err)
	}
	if err := dst.WriteU8(r.ClassOption); err != nil {
		return rdperr.Encode("x224.ConnectionRequest", err)
	}
	if err := dst.WriteSlice(r.UserData); err != nil {
		return rdperr.Encode("x224.ConnectionRequest", err)
	}
	return nil
}

// ConnectionConfirm is the server's X.224 Connection Confirm TPDU. UserData
// carries the RDP Negotiation Response/Failure structure.
type ConnectionConfirm struct {
	DstRef      uint16
	SrcRef      uint16
	ClassOption uint8
	UserData    []byte
}

func (c *ConnectionConfirm) Name() string { return "x224.ConnectionConfirm" }

func (c *ConnectionConfirm) Decode(src *cursor.Reader) error {
	li, err := src.ReadU8()
	if err != nil {
		return rdperr.Decode("x224.ConnectionConfirm", err)
	}
	if int(li) < fixedHeaderLen {
		return rdperr.InvalidField("x224.ConnectionConfirm", "LI", "shorter than the fixed header")
	}
	if !src.CheckRemaining(int(li)) {
		return rdperr.InvalidField("x224.ConnectionConfirm", "LI", "exceeds remaining input")
	}

	code, err := src.ReadU8()
	if err != nil {
		return rdperr.Decode("x224.ConnectionConfirm", err)
	}
	if code&ccCodeMask != ccCode {
		return rdperr.InvalidField("x224.ConnectionConfirm", "CCCDT", "not a Connection Confirm code")
	}

	if c.DstRef, err = src.ReadU16BE(); err != nil {
		return rdperr.Decode("x224.ConnectionConfirm", err)
	}
	if c.SrcRef, err = src.ReadU16BE(); err != nil {
		return rdperr.Decode("x224.ConnectionConfirm", err)
	}
	if c.ClassOption, err = src.ReadU8(); err != nil {
		return rdperr.Decode("x224.ConnectionConfirm", err)
	}

	userDataLen := int(li) - fixedHeaderLen
	c.UserData, err = src.ReadSlice(userDataLen)
	if err != nil {
		return rdperr.Decode("x224.ConnectionConfirm", err)
	}
	return nil
}

// DataTPDU wraps every PDU sent after the connection phase in a single,
// unfragmented X.224 Data TPDU.
type DataTPDU struct {
	UserData []byte
}

func (d *DataTPDU) Name() string { return "x224.DataTPDU" }

func (d *DataTPDU) Size() int {
	return 1 + dataHeaderLen + len(d.UserData)
}

func (d *DataTPDU) Encode(dst *cursor.Writer) error {
	if err := dst.WriteU8(dataHeaderLen); err != nil {
		return rdperr.Encode("x224.DataTPDU", err)
	}
	if err := dst.WriteU8(dtCode); err != nil {
		return rdperr.Encode("x224.DataTPDU", err)
	}
	if err := dst.WriteU8(eotTPDUNr); err != nil {
		return rdperr.Encode("x224.DataTPDU", err)
	}
	if err := dst.WriteSlice(d.UserData); err != nil {
		return rdperr.Encode("x224.DataTPDU", err)
	}
	return nil
}

func (d *DataTPDU) Decode(src *cursor.Reader) error {
	li, err := src.ReadU8()
	if err != nil {
		return rdperr.Decode("x224.DataTPDU", err)
	}
	if int(li) != dataHeaderLen {
		return rdperr.InvalidField("x224.DataTPDU", "LI", "must equal the fixed Data TPDU header length")
	}
	if _, err := src.ReadU8(); err != nil { // DTROA
		return rdperr.Decode("x224.DataTPDU", err)
	}
	if _, err := src.ReadU8(); err != nil { // NR-EOT
		return rdperr.Decode("x224.DataTPDU", err)
	}
	d.UserData, err = src.ReadSlice(src.Remaining())
	if err != nil {
		return rdperr.Decode("x224.DataTPDU", err)
	}
	return nil
}
