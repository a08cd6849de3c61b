// Package channeljoin implements the MCS Channel Join sub-sequence: Erect
// Domain Request, Attach User Request/Confirm, then one Channel Join
// Request/Confirm pair per channel the client needs (the I/O channel first,
// then each requested static virtual channel).
package channeljoin

import (
	"github.com/rcarmo/go-rdp/internal/protocol/mcs"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// State names the current phase of the channel join sub-sequence.
type State int

const (
	// StateSendErectDomainAndAttachUser is the initial state: the machine
	// has not yet emitted its opening pure-send PDUs.
	StateSendErectDomainAndAttachUser State = iota
	// StateWaitAttachUserConfirm awaits the server's Attach User Confirm.
	StateWaitAttachUserConfirm
	// StateWaitChannelJoinConfirm awaits the confirm for the channel most
	// recently requested.
	StateWaitChannelJoinConfirm
	// StateJoined is terminal: every channel has been joined.
	StateJoined
	// stateConsumed marks a machine whose Result has already been taken;
	// calling Step again is a programming error.
	stateConsumed
)

// Result is the outcome of a completed channel join sub-sequence.
type Result struct {
	UserChannelID  uint16
	JoinedChannels []uint16 // I/O channel id first, then static channels in request order
}

// Machine drives the channel join sub-sequence one PDU at a time.
type Machine struct {
	state            State
	ioChannelID      uint16
	staticChannelIDs []uint16

	userID  uint16
	pending []uint16
	joined  []uint16
}

// New creates a channel join machine for the given I/O channel id and the
// ordered list of static channel ids negotiated during the Basic Settings
// Exchange.
func New(ioChannelID uint16, staticChannelIDs []uint16) *Machine {
	return &Machine{
		state:            StateSendErectDomainAndAttachUser,
		ioChannelID:      ioChannelID,
		staticChannelIDs: staticChannelIDs,
	}
}

// State reports the current phase.
func (m *Machine) State() State { return m.state }

// AwaitingInput reports whether the next Step call must carry a PDU the
// caller read from the server.
func (m *Machine) AwaitingInput() bool {
	return m.state == StateWaitAttachUserConfirm || m.state == StateWaitChannelJoinConfirm
}

// Step drives one transition. recv is nil in the initial pure-send state;
// otherwise it is the DomainPDU most recently received from the server.
// The returned slice holds zero or more DomainPDUs to send, in order.
func (m *Machine) Step(recv *mcs.DomainPDU) ([]*mcs.DomainPDU, error) {
	switch m.state {
	case StateSendErectDomainAndAttachUser:
		m.state = StateWaitAttachUserConfirm
		return []*mcs.DomainPDU{
			mcs.NewErectDomainRequestPDU(),
			mcs.NewAttachUserRequestPDU(),
		}, nil

	case StateWaitAttachUserConfirm:
		if recv == nil || recv.ServerAttachUserConfirm == nil {
			return nil, rdperr.General("sequence.channeljoin", "expected Attach User Confirm")
		}
		if recv.ServerAttachUserConfirm.Result != 0 {
			return nil, rdperr.General("sequence.channeljoin", "server rejected Attach User Request")
		}
		m.userID = recv.ServerAttachUserConfirm.Initiator
		m.pending = append([]uint16{m.ioChannelID}, m.staticChannelIDs...)
		m.state = StateWaitChannelJoinConfirm
		return []*mcs.DomainPDU{m.nextJoinRequest()}, nil

	case StateWaitChannelJoinConfirm:
		if recv == nil || recv.ServerChannelJoinConfirm == nil {
			return nil, rdperr.General("sequence.channeljoin", "expected Channel Join Confirm")
		}
		confirm := recv.ServerChannelJoinConfirm
		if confirm.Result != 0 {
			return nil, rdperr.General("sequence.channeljoin", "server rejected Channel Join Request")
		}
		if len(m.pending) == 0 || confirm.ChannelId != m.pending[0] {
			return nil, rdperr.General("sequence.channeljoin", "unexpected channel id in Channel Join Confirm")
		}

		m.joined = append(m.joined, confirm.ChannelId)
		m.pending = m.pending[1:]

		if len(m.pending) == 0 {
			m.state = StateJoined
			return nil, nil
		}
		return []*mcs.DomainPDU{m.nextJoinRequest()}, nil

	case StateJoined:
		return nil, rdperr.Internal("sequence.channeljoin", "Step called after the machine reached StateJoined")

	default:
		return nil, rdperr.Internal("sequence.channeljoin", "Step called on a consumed machine")
	}
}

func (m *Machine) nextJoinRequest() *mcs.DomainPDU {
	return mcs.NewChannelJoinRequestPDU(m.userID, m.pending[0])
}

// Result returns the completed join result and marks the machine consumed.
// It is a programming error to call Result before State() == StateJoined.
func (m *Machine) Result() (*Result, error) {
	if m.state != StateJoined {
		return nil, rdperr.Internal("sequence.channeljoin", "Result called before the machine reached StateJoined")
	}
	result := &Result{UserChannelID: m.userID, JoinedChannels: m.joined}
	m.state = stateConsumed
	return result, nil
}
