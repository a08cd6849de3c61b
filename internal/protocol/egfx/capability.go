package egfx

import (
	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// CapabilityVersion identifies an RDPGFX_CAPSET version (MS-RDPEGFX 2.2.3.1).
type CapabilityVersion uint32

const (
	CapsVersion8       CapabilityVersion = 0x80004
	CapsVersion8_1     CapabilityVersion = 0x80105
	CapsVersion10      CapabilityVersion = 0xa0002
	CapsVersion10_1    CapabilityVersion = 0xa0100
	CapsVersion10_2    CapabilityVersion = 0xa0200
	CapsVersion10_3    CapabilityVersion = 0xa0301
	CapsVersion10_4    CapabilityVersion = 0xa0400
	CapsVersion10_5    CapabilityVersion = 0xa0502
	CapsVersion10_6    CapabilityVersion = 0xa0600
	CapsVersion10_6Err CapabilityVersion = 0xa0601
	CapsVersion10_7    CapabilityVersion = 0xa0701
)

// Bitflag sets carried by each capability set version. Every version below
// V10_1 packs its flags into a 4-byte payload; V10_1 carries none.

type CapabilitiesV8Flags uint32

const (
	CapsV8ThinClient  CapabilitiesV8Flags = 0x1
	CapsV8SmallCache  CapabilitiesV8Flags = 0x2
)

type CapabilitiesV81Flags uint32

const (
	CapsV81ThinClient    CapabilitiesV81Flags = 0x01
	CapsV81SmallCache    CapabilitiesV81Flags = 0x02
	CapsV81Avc420Enabled CapabilitiesV81Flags = 0x10
)

// CapabilitiesV10Flags is shared by V10 and V10_2 ("same as v10" per the
// upstream capability table).
type CapabilitiesV10Flags uint32

const (
	CapsV10SmallCache  CapabilitiesV10Flags = 0x02
	CapsV10AvcDisabled CapabilitiesV10Flags = 0x20
)

type CapabilitiesV103Flags uint32

const (
	CapsV103AvcDisabled   CapabilitiesV103Flags = 0x20
	CapsV103AvcThinClient CapabilitiesV103Flags = 0x40
)

// CapabilitiesV104Flags is shared by V10_4, V10_5, V10_6 and V10_6Err.
type CapabilitiesV104Flags uint32

const (
	CapsV104SmallCache    CapabilitiesV104Flags = 0x02
	CapsV104AvcDisabled   CapabilitiesV104Flags = 0x20
	CapsV104AvcThinClient CapabilitiesV104Flags = 0x40
)

type CapabilitiesV107Flags uint32

const (
	CapsV107SmallCache       CapabilitiesV107Flags = 0x02
	CapsV107AvcDisabled      CapabilitiesV107Flags = 0x20
	CapsV107AvcThinClient    CapabilitiesV107Flags = 0x40
	CapsV107ScaledMapDisable CapabilitiesV107Flags = 0x80
)

// CapabilitySet is one RDPGFX_CAPSET entry: a version tag followed by a
// version-specific flags payload. Unknown versions are preserved verbatim
// so a client can advertise/confirm a capability set it doesn't understand
// without corrupting the stream.
type CapabilitySet struct {
	Version CapabilityVersion
	V8      CapabilitiesV8Flags
	V81     CapabilitiesV81Flags
	V10     CapabilitiesV10Flags
	V103    CapabilitiesV103Flags
	V104    CapabilitiesV104Flags
	V107    CapabilitiesV107Flags
	// RawVersion and RawData hold the verbatim version/data of a capability
	// set whose version this client does not recognize.
	RawVersion uint32
	RawData    []byte
}

const capabilitySetFixedPartSize = 8

func (c CapabilitySet) Name() string { return "egfx.CapabilitySet" }

func (c CapabilitySet) dataSize() int {
	switch c.Version {
	case CapsVersion10_1:
		return 16
	case CapsVersion8, CapsVersion8_1, CapsVersion10, CapsVersion10_2,
		CapsVersion10_3, CapsVersion10_4, CapsVersion10_5, CapsVersion10_6,
		CapsVersion10_6Err, CapsVersion10_7:
		return 4
	default:
		return len(c.RawData)
	}
}

func (c CapabilitySet) Size() int { return capabilitySetFixedPartSize + c.dataSize() }

func (c CapabilitySet) Encode(dst *cursor.Writer) error {
	version := uint32(c.Version)
	if c.Version == 0 {
		version = c.RawVersion
	}
	if err := dst.WriteU32(version); err != nil {
		return rdperr.Encode("egfx.CapabilitySet", err)
	}
	if err := dst.WriteU32(uint32(c.dataSize())); err != nil {
		return rdperr.Encode("egfx.CapabilitySet", err)
	}
	switch c.Version {
	case CapsVersion8:
		return wrapErr(dst.WriteU32(uint32(c.V8)))
	case CapsVersion8_1:
		return wrapErr(dst.WriteU32(uint32(c.V81)))
	case CapsVersion10, CapsVersion10_2:
		return wrapErr(dst.WriteU32(uint32(c.V10)))
	case CapsVersion10_1:
		if err := dst.WriteU64(0); err != nil {
			return rdperr.Encode("egfx.CapabilitySet", err)
		}
		return wrapErr(dst.WriteU64(0))
	case CapsVersion10_3:
		return wrapErr(dst.WriteU32(uint32(c.V103)))
	case CapsVersion10_4, CapsVersion10_5, CapsVersion10_6, CapsVersion10_6Err:
		return wrapErr(dst.WriteU32(uint32(c.V104)))
	case CapsVersion10_7:
		return wrapErr(dst.WriteU32(uint32(c.V107)))
	default:
		if err := dst.WriteSlice(c.RawData); err != nil {
			return rdperr.Encode("egfx.CapabilitySet", err)
		}
		return nil
	}
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return rdperr.Encode("egfx.CapabilitySet", err)
}

func (c *CapabilitySet) Decode(src *cursor.Reader) error {
	version, err := src.ReadU32()
	if err != nil {
		return rdperr.Decode("egfx.CapabilitySet", err)
	}
	length, err := src.ReadU32()
	if err != nil {
		return rdperr.Decode("egfx.CapabilitySet", err)
	}
	data, err := src.ReadSlice(int(length))
	if err != nil {
		return rdperr.Decode("egfx.CapabilitySet", err)
	}
	r := cursor.NewReader(data)
	c.Version = CapabilityVersion(version)
	switch c.Version {
	case CapsVersion8:
		v, err := r.ReadU32()
		if err != nil {
			return rdperr.Decode("egfx.CapabilitySet", err)
		}
		c.V8 = CapabilitiesV8Flags(v)
	case CapsVersion8_1:
		v, err := r.ReadU32()
		if err != nil {
			return rdperr.Decode("egfx.CapabilitySet", err)
		}
		c.V81 = CapabilitiesV81Flags(v)
	case CapsVersion10, CapsVersion10_2:
		v, err := r.ReadU32()
		if err != nil {
			return rdperr.Decode("egfx.CapabilitySet", err)
		}
		c.V10 = CapabilitiesV10Flags(v)
	case CapsVersion10_1:
		// 16 zero-filled bytes, nothing to extract.
	case CapsVersion10_3:
		v, err := r.ReadU32()
		if err != nil {
			return rdperr.Decode("egfx.CapabilitySet", err)
		}
		c.V103 = CapabilitiesV103Flags(v)
	case CapsVersion10_4, CapsVersion10_5, CapsVersion10_6, CapsVersion10_6Err:
		v, err := r.ReadU32()
		if err != nil {
			return rdperr.Decode("egfx.CapabilitySet", err)
		}
		c.V104 = CapabilitiesV104Flags(v)
	case CapsVersion10_7:
		v, err := r.ReadU32()
		if err != nil {
			return rdperr.Decode("egfx.CapabilitySet", err)
		}
		c.V107 = CapabilitiesV107Flags(v)
	default:
		c.Version = 0
		c.RawVersion = version
		c.RawData = data
	}
	return nil
}
