// Package license implements the server licensing sub-sequence (MS-RDPELE):
// reacting to whatever the license server sends after Basic Settings
// Exchange. In the common case a terminal server configured for a CAL-less
// trial period replies with a "Valid Client" error-alert and the
// sub-sequence terminates with no output. When the server demands a new
// license, it exchanges a platform challenge/response and waits for the
// issued license; an unrecognized message type is treated the same as a
// Valid Client, since server licensing is optional from the client's point
// of view.
package license

import (
	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// State names the current phase of the licensing sub-sequence.
type State int

const (
	// StateAwaitingServerMessage awaits the first (or any subsequent)
	// server licensing message.
	StateAwaitingServerMessage State = iota
	// StateAwaitingChallenge awaits the server's Platform Challenge after
	// the client has sent a New License Request.
	StateAwaitingChallenge
	// StateAwaitingNewLicense awaits the server's issued license after the
	// client has answered the platform challenge.
	StateAwaitingNewLicense
	// StateComplete is terminal.
	StateComplete
	stateConsumed
)

// Credentials names the identity the new-license flow reports to the
// license server.
type Credentials struct {
	Username string
	Domain   string
}

// Machine drives the licensing sub-sequence one message at a time.
type Machine struct {
	state State
	creds Credentials

	clientRandom [32]byte
}

// New creates a licensing machine reporting the given username/domain if
// the server requires a new-license exchange.
func New(creds Credentials) *Machine {
	return &Machine{state: StateAwaitingServerMessage, creds: creds}
}

// State reports the current phase.
func (m *Machine) State() State { return m.state }

// AwaitingInput reports whether Step expects a server message next. It is
// always true for this sub-sequence until it reaches StateComplete: every
// transition is driven by a received server message.
func (m *Machine) AwaitingInput() bool { return m.state != StateComplete && m.state != stateConsumed }

// Step consumes one server licensing message and returns the wire bytes of
// the client message to send in response, or nil when no response is
// needed (the sub-sequence has reached StateComplete).
func (m *Machine) Step(msg *pdu.LicenseMessage) ([]byte, error) {
	switch m.state {
	case StateAwaitingServerMessage:
		switch {
		case msg.ErrorAlert != nil:
			return m.finish(msg.ErrorAlert)
		case msg.LicenseRequest != nil:
			req := pdu.NewClientNewLicenseRequest(m.creds.Username, m.creds.Domain)
			m.clientRandom = req.ClientRandom
			m.state = StateAwaitingChallenge
			return req.Serialize(), nil
		case msg.NewLicense != nil:
			m.state = StateComplete
			return nil, nil
		default:
			// Unrecognized message type: server licensing is optional.
			m.state = StateComplete
			return nil, nil
		}

	case StateAwaitingChallenge:
		if msg.PlatformChallenge == nil {
			return nil, rdperr.General("sequence.license", "expected Platform Challenge after New License Request")
		}
		resp := &pdu.ClientPlatformChallengeResponse{
			ClientRandom:      m.clientRandom,
			PlatformChallenge: msg.PlatformChallenge.EncryptedPlatformChallenge.BlobData,
		}
		m.state = StateAwaitingNewLicense
		return resp.Serialize(), nil

	case StateAwaitingNewLicense:
		switch {
		case msg.NewLicense != nil:
			m.state = StateComplete
			return nil, nil
		case msg.ErrorAlert != nil:
			return m.finish(msg.ErrorAlert)
		default:
			return nil, rdperr.General("sequence.license", "expected New License or Error Alert after Platform Challenge Response")
		}

	default:
		return nil, rdperr.Internal("sequence.license", "Step called after the machine completed")
	}
}

// finish reacts to an ERROR_ALERT message: STATUS_VALID_CLIENT (7) and any
// other code both end the sub-sequence, since a non-fatal licensing error
// (e.g. no license server present) does not abort the connection per
// MS-RDPBCGR — only the capabilities exchange onward can fail the
// connection.
func (m *Machine) finish(_ *pdu.LicensingErrorMessage) ([]byte, error) {
	m.state = StateComplete
	return nil, nil
}
