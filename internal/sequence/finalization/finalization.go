// Package finalization implements the Connection Finalization sub-sequence
// (MS-RDPBCGR 1.3.1.1, last phase): the client fires off Synchronize,
// Control Cooperate, Control Request Control and Font List without waiting
// for a reply, then waits for the server to echo Synchronize, grant
// control, and reply with its font map.
package finalization

import (
	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// State names the current phase of the finalization sub-sequence.
type State int

const (
	// StateSendClientPDUs is the initial state: the client's four PDUs
	// have not yet been emitted.
	StateSendClientPDUs State = iota
	// StateAwaitingServerPDUs awaits the server's Synchronize, Control
	// Granted Control, and Font Map PDUs, in any order.
	StateAwaitingServerPDUs
	// StateComplete is terminal.
	StateComplete
	stateConsumed
)

// Machine drives the connection finalization sub-sequence.
type Machine struct {
	state   State
	shareID uint32
	userID  uint16

	sawSynchronize    bool
	sawControlGranted bool
	sawFontMap        bool
}

// New creates a finalization machine for the given share id and user (MCS
// channel) id, both already known from the capabilities exchange.
func New(shareID uint32, userID uint16) *Machine {
	return &Machine{state: StateSendClientPDUs, shareID: shareID, userID: userID}
}

// State reports the current phase.
func (m *Machine) State() State { return m.state }

// AwaitingInput reports whether Step expects a server PDU next.
func (m *Machine) AwaitingInput() bool { return m.state == StateAwaitingServerPDUs }

// Step drives one transition. In StateSendClientPDUs, recv is ignored and
// the four outgoing PDUs are returned; afterward it consumes one server
// Data PDU per call.
func (m *Machine) Step(recv *pdu.Data) ([]*pdu.Data, error) {
	switch m.state {
	case StateSendClientPDUs:
		m.state = StateAwaitingServerPDUs
		return []*pdu.Data{
			pdu.NewSynchronize(m.shareID, m.userID),
			pdu.NewControl(m.shareID, m.userID, pdu.ControlActionCooperate),
			pdu.NewControl(m.shareID, m.userID, pdu.ControlActionRequestControl),
			pdu.NewFontList(m.shareID, m.userID),
		}, nil

	case StateAwaitingServerPDUs:
		if recv == nil {
			return nil, rdperr.General("sequence.finalization", "expected a server finalization PDU")
		}

		switch {
		case recv.SynchronizePDUData != nil:
			m.sawSynchronize = true
		case recv.ControlPDUData != nil:
			if recv.ControlPDUData.Action != pdu.ControlActionGrantedControl {
				return nil, rdperr.General("sequence.finalization", "unexpected Control PDU action from server")
			}
			m.sawControlGranted = true
		case recv.FontMapPDUData != nil:
			m.sawFontMap = true
		default:
			return nil, rdperr.General("sequence.finalization", "unexpected PDU during connection finalization")
		}

		if m.sawSynchronize && m.sawControlGranted && m.sawFontMap {
			m.state = StateComplete
		}
		return nil, nil

	default:
		return nil, rdperr.Internal("sequence.finalization", "Step called after the machine completed")
	}
}
