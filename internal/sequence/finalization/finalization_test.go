package finalization

import (
	"testing"

	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
	"github.com/stretchr/testify/require"
)

func TestMachine_HappyPath(t *testing.T) {
	m := New(0x1000, 1007)

	sent, err := m.Step(nil)
	require.NoError(t, err)
	require.Len(t, sent, 4)
	require.Equal(t, StateAwaitingServerPDUs, m.State())

	_, err = m.Step(&pdu.Data{SynchronizePDUData: &pdu.SynchronizePDUData{}})
	require.NoError(t, err)
	require.Equal(t, StateAwaitingServerPDUs, m.State())

	_, err = m.Step(&pdu.Data{ControlPDUData: &pdu.ControlPDUData{Action: pdu.ControlActionGrantedControl}})
	require.NoError(t, err)
	require.Equal(t, StateAwaitingServerPDUs, m.State())

	_, err = m.Step(&pdu.Data{FontMapPDUData: &pdu.FontMapPDUData{}})
	require.NoError(t, err)
	require.Equal(t, StateComplete, m.State())
}

func TestMachine_RejectsWrongControlAction(t *testing.T) {
	m := New(0x1000, 1007)
	_, err := m.Step(nil)
	require.NoError(t, err)

	_, err = m.Step(&pdu.Data{ControlPDUData: &pdu.ControlPDUData{Action: pdu.ControlActionRequestControl}})
	require.Error(t, err)
}
