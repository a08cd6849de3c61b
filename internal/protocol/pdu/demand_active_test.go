package pdu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ServerDemandActive_SerializeDeserialize(t *testing.T) {
	original := ServerDemandActive{
		ShareID:          0x0001103f,
		SourceDescriptor: []byte("RDP"),
		CapabilitySets: []CapabilitySet{
			NewGeneralCapabilitySet(),
			NewBitmapCapabilitySet(1280, 1024),
		},
		SessionID: 1,
	}

	wire := original.Serialize()

	var decoded ServerDemandActive
	require.NoError(t, decoded.Deserialize(bytes.NewReader(wire)))

	require.Equal(t, original.ShareID, decoded.ShareID)
	require.Equal(t, original.SourceDescriptor, decoded.SourceDescriptor)
	require.Equal(t, original.SessionID, decoded.SessionID)
	require.Len(t, decoded.CapabilitySets, 2)
	require.Equal(t, TypeDemandActive, decoded.ShareControlHeader.PDUType)
}

func Test_ServerDemandActive_FindCapability(t *testing.T) {
	demandActive := ServerDemandActive{
		CapabilitySets: []CapabilitySet{
			NewGeneralCapabilitySet(),
			NewBitmapCapabilitySet(800, 600),
		},
	}

	bitmap := demandActive.FindCapability(CapabilitySetTypeBitmap)
	require.NotNil(t, bitmap)
	require.NotNil(t, bitmap.BitmapCapabilitySet)
	require.Equal(t, uint16(800), bitmap.BitmapCapabilitySet.DesktopWidth)

	require.Nil(t, demandActive.FindCapability(CapabilitySetTypeSound))
}
