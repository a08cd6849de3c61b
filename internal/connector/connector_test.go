package connector

import (
	"bytes"
	"testing"

	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
	"github.com/stretchr/testify/require"
)

func buildConnectionConfirmFrame(selectedProtocol pdu.NegotiationProtocol, negType pdu.NegotiationType) []byte {
	userData := new(bytes.Buffer)
	userData.WriteByte(byte(negType))
	userData.WriteByte(0) // flags
	userData.Write([]byte{0x08, 0x00})
	userData.Write([]byte{
		byte(selectedProtocol), byte(selectedProtocol >> 8),
		byte(selectedProtocol >> 16), byte(selectedProtocol >> 24),
	})

	x224Body := new(bytes.Buffer)
	li := 6 + userData.Len()
	x224Body.WriteByte(byte(li))
	x224Body.WriteByte(0xD0) // ccCode
	x224Body.Write([]byte{0, 0})
	x224Body.Write([]byte{0, 0})
	x224Body.WriteByte(0)
	x224Body.Write(userData.Bytes())

	total := 4 + x224Body.Len()
	frame := []byte{0x03, 0x00, byte(total >> 8), byte(total)}
	frame = append(frame, x224Body.Bytes()...)
	return frame
}

func TestConnector_SendsConnectionRequestFirst(t *testing.T) {
	c := New(Config{Username: "alice"})

	frames, err := c.Step(nil)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, StateConnectionInitiationWaitConfirm, c.State())

	// TPKT header: version 3.
	require.Equal(t, byte(0x03), frames[0][0])
}

func TestConnector_AcceptsSSLConfirmAndRequestsSecurityUpgrade(t *testing.T) {
	c := New(Config{Username: "alice", RequestedProtocols: pdu.NegotiationProtocolSSL})
	_, err := c.Step(nil)
	require.NoError(t, err)

	frame := buildConnectionConfirmFrame(pdu.NegotiationProtocolSSL, pdu.NegotiationTypeResponse)
	out, err := c.Step(frame)
	require.NoError(t, err)
	require.Nil(t, out)
	require.Equal(t, StateEnhancedSecurityUpgrade, c.State())
	require.True(t, c.ShouldPerformSecurityUpgrade())

	c.MarkSecurityUpgradeAsDone()
	require.Equal(t, StateBasicSettingsExchangeSendInitial, c.State())
}

func TestConnector_RejectsStandardRDPSecurity(t *testing.T) {
	c := New(Config{Username: "alice", RequestedProtocols: pdu.NegotiationProtocolSSL | pdu.NegotiationProtocolHybrid})
	_, err := c.Step(nil)
	require.NoError(t, err)

	frame := buildConnectionConfirmFrame(pdu.NegotiationProtocolRDP, pdu.NegotiationTypeResponse)
	_, err = c.Step(frame)
	require.Error(t, err)
}

func TestConnector_RejectsProtocolNotOffered(t *testing.T) {
	c := New(Config{Username: "alice", RequestedProtocols: pdu.NegotiationProtocolSSL})
	_, err := c.Step(nil)
	require.NoError(t, err)

	frame := buildConnectionConfirmFrame(pdu.NegotiationProtocolHybrid, pdu.NegotiationTypeResponse)
	_, err = c.Step(frame)
	require.Error(t, err)
}

func TestConnector_HybridSelectsCredSSPAfterUpgrade(t *testing.T) {
	c := New(Config{Username: "alice", RequestedProtocols: pdu.NegotiationProtocolHybrid})
	_, err := c.Step(nil)
	require.NoError(t, err)

	frame := buildConnectionConfirmFrame(pdu.NegotiationProtocolHybrid, pdu.NegotiationTypeResponse)
	_, err = c.Step(frame)
	require.NoError(t, err)

	c.MarkSecurityUpgradeAsDone()
	require.Equal(t, StateCredSSP, c.State())
	require.True(t, c.IsCredSSPStep())
}

func TestConnector_CredSSPRequiresFactory(t *testing.T) {
	c := New(Config{Username: "alice", RequestedProtocols: pdu.NegotiationProtocolHybrid})
	_, err := c.Step(nil)
	require.NoError(t, err)
	_, err = c.Step(buildConnectionConfirmFrame(pdu.NegotiationProtocolHybrid, pdu.NegotiationTypeResponse))
	require.NoError(t, err)
	c.MarkSecurityUpgradeAsDone()

	_, err = c.Step(nil)
	require.Error(t, err)
}

func TestConnector_HybridExEarlyUserAuthResultFailureIsAccessDenied(t *testing.T) {
	c := New(Config{Username: "alice", RequestedProtocols: pdu.NegotiationProtocolHybridEx})
	_, err := c.Step(nil)
	require.NoError(t, err)
	_, err = c.Step(buildConnectionConfirmFrame(pdu.NegotiationProtocolHybridEx, pdu.NegotiationTypeResponse))
	require.NoError(t, err)
	c.MarkSecurityUpgradeAsDone()

	c.AttachCredSSPClientFactory(func(received []byte) ([]byte, bool, error) {
		return nil, true, nil
	})
	_, err = c.Step(nil)
	require.NoError(t, err)
	require.Equal(t, StateEarlyUserAuthResult, c.State())

	_, err = c.Step([]byte{0x01, 0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestConnector_ResultBeforeConnectedIsAnError(t *testing.T) {
	c := New(Config{Username: "alice"})
	_, err := c.Result()
	require.Error(t, err)
}
