package egfx

import (
	"testing"

	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, pdu *GfxPdu) *GfxPdu {
	t.Helper()
	buf := make([]byte, pdu.Size())
	w := cursor.NewWriter(buf)
	require.NoError(t, pdu.Encode(w))
	require.Equal(t, pdu.Size(), w.Pos())

	got := &GfxPdu{}
	r := cursor.NewReader(w.Bytes())
	require.NoError(t, got.Decode(r))
	require.Equal(t, r.Len(), r.Pos())
	return got
}

func TestGfxPdu_CreateSurfaceRoundTrip(t *testing.T) {
	pdu := &GfxPdu{
		CmdID: CmdCreateSurface,
		Body: &CreateSurfacePdu{
			SurfaceID:   7,
			Width:       1920,
			Height:      1080,
			PixelFormat: PixelFormatARGB8888,
		},
	}
	got := roundTrip(t, pdu)
	require.Equal(t, pdu.Body, got.Body)
}

func TestGfxPdu_DeleteSurfaceRoundTrip(t *testing.T) {
	pdu := &GfxPdu{CmdID: CmdDeleteSurface, Body: &DeleteSurfacePdu{SurfaceID: 42}}
	got := roundTrip(t, pdu)
	require.Equal(t, pdu.Body, got.Body)
}

func TestGfxPdu_SolidFillRoundTrip(t *testing.T) {
	pdu := &GfxPdu{
		CmdID: CmdSolidFill,
		Body: &SolidFillPdu{
			SurfaceID: 3,
			FillPixel: Color{B: 0x10, G: 0x20, R: 0x30, XA: 0xff},
			Rectangles: []InclusiveRectangle{
				{Left: 0, Top: 0, Right: 10, Bottom: 10},
				{Left: 5, Top: 5, Right: 15, Bottom: 15},
			},
		},
	}
	got := roundTrip(t, pdu)
	require.Equal(t, pdu.Body, got.Body)
}

func TestGfxPdu_SurfaceToSurfaceRoundTrip(t *testing.T) {
	pdu := &GfxPdu{
		CmdID: CmdSurfaceToSurface,
		Body: &SurfaceToSurfacePdu{
			SourceSurfaceID:      1,
			DestinationSurfaceID: 2,
			SourceRectangle:      InclusiveRectangle{Left: 0, Top: 0, Right: 99, Bottom: 99},
			DestinationPoints:    []Point{{X: 10, Y: 10}, {X: -5, Y: 20}},
		},
	}
	got := roundTrip(t, pdu)
	require.Equal(t, pdu.Body, got.Body)
}

func TestGfxPdu_WireToSurface1RoundTrip(t *testing.T) {
	pdu := &GfxPdu{
		CmdID: CmdWireToSurface1,
		Body: &WireToSurface1Pdu{
			SurfaceID:            1,
			CodecID:              Codec1RemoteFx,
			PixelFormat:          PixelFormatXRGB8888,
			DestinationRectangle: InclusiveRectangle{Left: 0, Top: 0, Right: 63, Bottom: 63},
			BitmapData:           []byte{1, 2, 3, 4, 5},
		},
	}
	got := roundTrip(t, pdu)
	require.Equal(t, pdu.Body, got.Body)
}

func TestGfxPdu_StartFrameTimestampPacking(t *testing.T) {
	pdu := &GfxPdu{
		CmdID: CmdStartFrame,
		Body: &StartFramePdu{
			Timestamp: Timestamp{Milliseconds: 999, Seconds: 59, Minutes: 59, Hours: 23},
			FrameID:   100,
		},
	}
	got := roundTrip(t, pdu)
	require.Equal(t, pdu.Body, got.Body)
}

func TestGfxPdu_FrameAcknowledgeQueueDepth(t *testing.T) {
	cases := []QueueDepth{
		{Unavailable: true},
		{Suspend: true},
		{AvailableBytes: 4096},
	}
	for _, qd := range cases {
		pdu := &GfxPdu{
			CmdID: CmdFrameAcknowledge,
			Body:  &FrameAcknowledgePdu{QueueDepth: qd, FrameID: 1, TotalFramesDecoded: 2},
		}
		got := roundTrip(t, pdu)
		require.Equal(t, qd, got.Body.(*FrameAcknowledgePdu).QueueDepth)
	}
}

func TestGfxPdu_ResetGraphicsFixedEnvelope(t *testing.T) {
	pdu := &GfxPdu{
		CmdID: CmdResetGraphics,
		Body: &ResetGraphicsPdu{
			Width:  1920,
			Height: 1080,
			Monitors: []MonitorDef{
				{Left: 0, Top: 0, Right: 1919, Bottom: 1079, Flags: 1},
			},
		},
	}
	require.Equal(t, 340, pdu.Size())
	got := roundTrip(t, pdu)
	require.Equal(t, pdu.Body, got.Body)
}

func TestResetGraphicsPdu_Encode_RejectsOversizedDimensions(t *testing.T) {
	pdu := &ResetGraphicsPdu{Width: maxResetGraphicsDim + 1, Height: 100}
	buf := make([]byte, resetGraphicsPduSize)
	require.Error(t, pdu.Encode(cursor.NewWriter(buf)))
}

func TestGfxPdu_CapabilitiesRoundTrip(t *testing.T) {
	pdu := &GfxPdu{
		CmdID: CmdCapabilitiesAdvertise,
		Body: &CapabilitiesAdvertisePdu{
			CapsSets: []CapabilitySet{
				{Version: CapsVersion8, V8: CapsV8ThinClient | CapsV8SmallCache},
				{Version: CapsVersion10_1},
				{Version: CapsVersion10_4, V104: CapsV104AvcDisabled},
			},
		},
	}
	got := roundTrip(t, pdu)
	require.Equal(t, pdu.Body, got.Body)
}

func TestGfxPdu_CapabilitiesConfirmUnknownVersionPreserved(t *testing.T) {
	pdu := &GfxPdu{
		CmdID: CmdCapabilitiesConfirm,
		Body: &CapabilitiesConfirmPdu{
			CapsSet: CapabilitySet{RawVersion: 0xdeadbeef, RawData: []byte{1, 2, 3, 4}},
		},
	}
	got := roundTrip(t, pdu)
	confirm := got.Body.(*CapabilitiesConfirmPdu)
	require.Equal(t, uint32(0xdeadbeef), confirm.CapsSet.RawVersion)
	require.Equal(t, []byte{1, 2, 3, 4}, confirm.CapsSet.RawData)
}

func TestGfxPdu_Decode_NonzeroFlagsTolerated(t *testing.T) {
	pdu := &GfxPdu{CmdID: CmdDeleteSurface, Flags: 0x1234, Body: &DeleteSurfacePdu{SurfaceID: 1}}
	got := roundTrip(t, pdu)
	require.Equal(t, uint16(0x1234), got.Flags)
}

func TestGfxPdu_Decode_UnsupportedCmdID(t *testing.T) {
	buf := []byte{0xff, 0xff, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00}
	got := &GfxPdu{}
	err := got.Decode(cursor.NewReader(buf))
	require.Error(t, err)
}
