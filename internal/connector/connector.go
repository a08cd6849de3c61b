// Package connector drives the full client-side MS-RDPBCGR connection
// sequence as a single state machine: connection initiation, the enhanced
// security upgrade (TLS, optionally followed by CredSSP/NLA), the Basic
// Settings Exchange, MCS channel join, secure settings exchange, server
// licensing, capabilities exchange, and connection finalization. It performs
// no I/O of its own — Step consumes one received frame at a time and
// returns the frames the caller must write back, leaving the transport (TCP
// dial, TLS handshake, CredSSP transcript) to the caller.
package connector

import (
	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/protocol/gcc"
	"github.com/rcarmo/go-rdp/internal/protocol/mcs"
	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
	"github.com/rcarmo/go-rdp/internal/protocol/tpkt"
	"github.com/rcarmo/go-rdp/internal/protocol/x224"
	"github.com/rcarmo/go-rdp/internal/rdperr"
	"github.com/rcarmo/go-rdp/internal/sequence"
	"github.com/rcarmo/go-rdp/internal/sequence/channeljoin"
	"github.com/rcarmo/go-rdp/internal/sequence/finalization"
	"github.com/rcarmo/go-rdp/internal/sequence/license"
)

// State names the current phase of the connection sequence.
type State int

const (
	StateInitial State = iota
	StateConnectionInitiationSendRequest
	StateConnectionInitiationWaitConfirm
	StateEnhancedSecurityUpgrade
	StateCredSSP
	StateEarlyUserAuthResult
	StateBasicSettingsExchangeSendInitial
	StateBasicSettingsExchangeWaitResponse
	StateChannelConnection
	StateRdpSecurityCommencement
	StateSecureSettingsExchange
	StateConnectTimeAutoDetection
	StateLicensingExchange
	StateMultitransportBootstrapping
	StateCapabilitiesExchange
	StateConnectionFinalization
	StateConnected
	stateConsumed
)

// Config names everything the caller decides before a connection attempt
// begins: identity, display, and the set of static virtual channels to join.
type Config struct {
	Username string
	Domain   string
	Password string

	DesktopWidth  uint16
	DesktopHeight uint16
	ColorDepth    int

	ClientBuild uint32

	// RequestedProtocols is offered in the Connection Request. The
	// connector rejects a server selection outside this set, and refuses
	// to proceed at all if the server selects standard RDP security
	// (PROTOCOL_RDP): this client only ever speaks TLS or CredSSP.
	RequestedProtocols pdu.NegotiationProtocol

	// StaticChannelNames lists the static virtual channels to request,
	// in the order Result.StaticChannels reports their assigned ids.
	StaticChannelNames []string
}

// Result is the outcome of a completed connection sequence: everything a
// caller needs to address further traffic to the session.
type Result struct {
	IOChannelID    uint16
	UserChannelID  uint16
	StaticChannels map[string]uint16
	DesktopWidth   uint16
	DesktopHeight  uint16
	ShareID        uint32
}

// CredSSPFactory drives an opaque CredSSP (NLA) exchange: given the bytes
// most recently received from the server (nil on the first call), it
// returns the next TSRequest to send, or done=true once authentication has
// concluded. The connector never parses CredSSP's ASN.1 itself.
type CredSSPFactory func(received []byte) (toSend []byte, done bool, err error)

// Connector drives the connection sequence one received frame at a time.
type Connector struct {
	state  State
	config Config

	requestedProtocol pdu.NegotiationProtocol
	selectedProtocol  pdu.NegotiationProtocol

	credsspFactory CredSSPFactory

	ioChannelID      uint16
	staticChannelIDs []uint16
	channelJoin      *channeljoin.Machine

	userID  uint16
	shareID uint32

	licenseMachine *license.Machine
	finalizeMachine *finalization.Machine

	result *Result
}

// New creates a connector for the given configuration. It starts in
// StateInitial; the first Step call (with a nil receive buffer) passes
// through StateConnectionInitiationSendRequest, returns the Connection
// Request frame, and leaves the connector in
// StateConnectionInitiationWaitConfirm.
func New(config Config) *Connector {
	requested := config.RequestedProtocols
	if requested == 0 {
		requested = pdu.NegotiationProtocolSSL | pdu.NegotiationProtocolHybrid
	}
	return &Connector{state: StateInitial, config: config, requestedProtocol: requested}
}

// AttachCredSSPClientFactory installs the CredSSP collaborator used when the
// server selects PROTOCOL_HYBRID or PROTOCOL_HYBRID_EX. Must be called
// before the connector reaches StateCredSSP whenever those protocols are
// offered. auth.NewCredSSPClientFactory builds one from the connection's
// credentials and the server's TLS certificate public key.
func (c *Connector) AttachCredSSPClientFactory(factory CredSSPFactory) {
	c.credsspFactory = factory
}

// State reports the current phase.
func (c *Connector) State() State { return c.state }

// ShouldPerformSecurityUpgrade reports whether the caller must perform a
// TLS handshake on the underlying transport before calling Step again. True
// only in StateEnhancedSecurityUpgrade.
func (c *Connector) ShouldPerformSecurityUpgrade() bool {
	return c.state == StateEnhancedSecurityUpgrade
}

// IsCredSSPStep reports whether the caller is expected to drive the
// attached CredSSP factory (rather than read a server licensing/MCS frame)
// for the current Step call.
func (c *Connector) IsCredSSPStep() bool {
	return c.state == StateCredSSP
}

// MarkSecurityUpgradeAsDone tells the connector the caller has completed
// the TLS handshake; Step can now proceed past StateEnhancedSecurityUpgrade.
func (c *Connector) MarkSecurityUpgradeAsDone() {
	if c.state != StateEnhancedSecurityUpgrade {
		return
	}
	if c.selectedProtocol.IsHybrid() || c.selectedProtocol.IsHybridEx() {
		c.state = StateCredSSP
		return
	}
	c.state = StateBasicSettingsExchangeSendInitial
}

// NextPDUHint returns the framing hint for the next frame the caller must
// read before calling Step again, or nil when the current phase expects an
// opaque CredSSP message (the attached factory owns that framing). The
// Early User Auth Result is a bare 4-byte message; every other phase reads
// TPKT frames.
func (c *Connector) NextPDUHint() sequence.PDUHint {
	if c.IsCredSSPStep() {
		return nil
	}
	if c.state == StateEarlyUserAuthResult {
		return func(prefix []byte) (int, bool) { return 4, true }
	}
	return tpkt.FrameLength
}

// Result returns the completed connection result and marks the connector
// consumed. It is a programming error to call it before State() ==
// StateConnected.
func (c *Connector) Result() (*Result, error) {
	if c.state != StateConnected {
		return nil, rdperr.Internal("connector", "Result called before the connector reached StateConnected")
	}
	result := c.result
	c.state = stateConsumed
	return result, nil
}

// Step drives one transition. recv is the most recently read frame (nil
// when none is expected yet, e.g. the very first call, or during a pure
// transition state). It returns zero or more complete frames to write back.
func (c *Connector) Step(recv []byte) ([][]byte, error) {
	switch c.state {
	case StateInitial:
		c.state = StateConnectionInitiationSendRequest
		return c.Step(nil)

	case StateConnectionInitiationSendRequest:
		req := &pdu.ClientConnectionRequest{
			Cookie:             c.config.Username,
			NegotiationRequest: pdu.NegotiationRequest{RequestedProtocols: c.requestedProtocol},
		}
		frame, err := frameX224(&x224.ConnectionRequest{UserData: req.Serialize()})
		if err != nil {
			return nil, err
		}
		c.state = StateConnectionInitiationWaitConfirm
		return [][]byte{frame}, nil

	case StateConnectionInitiationWaitConfirm:
		if recv == nil {
			return nil, rdperr.General("connector", "expected a Connection Confirm frame")
		}
		x224Bytes, err := unframe(recv)
		if err != nil {
			return nil, err
		}
		var confirm x224.ConnectionConfirm
		if err := confirm.Decode(cursor.NewReader(x224Bytes)); err != nil {
			return nil, rdperr.Decode("connector", err)
		}

		var negotiation pdu.ServerConnectionConfirm
		if err := negotiation.Deserialize(bodyReader(confirm.UserData)); err != nil {
			return nil, rdperr.Decode("connector", err)
		}
		if negotiation.Type.IsFailure() {
			return nil, rdperr.General("connector", "negotiation failure: "+negotiation.FailureCode().String())
		}
		if err := negotiation.ValidateSelectedProtocol(c.requestedProtocol); err != nil {
			return nil, rdperr.General("connector", err.Error())
		}

		c.selectedProtocol = negotiation.SelectedProtocol()
		if c.selectedProtocol.IsRDP() {
			return nil, rdperr.General("connector", "server selected standard RDP security, which this client does not support")
		}

		c.state = StateEnhancedSecurityUpgrade
		return nil, nil

	case StateEnhancedSecurityUpgrade:
		return nil, rdperr.Internal("connector", "Step called in StateEnhancedSecurityUpgrade: call MarkSecurityUpgradeAsDone first")

	case StateCredSSP:
		if c.credsspFactory == nil {
			return nil, rdperr.General("connector", "CredSSP required but no factory attached")
		}
		toSend, done, err := c.credsspFactory(recv)
		if err != nil {
			return nil, rdperr.CredSSP("connector", err)
		}
		if !done {
			if toSend == nil {
				return nil, nil
			}
			return [][]byte{toSend}, nil
		}
		if c.selectedProtocol.IsHybridEx() {
			c.state = StateEarlyUserAuthResult
			if toSend != nil {
				return [][]byte{toSend}, nil
			}
			return nil, nil
		}
		c.state = StateBasicSettingsExchangeSendInitial
		if toSend != nil {
			out, stepErr := c.Step(nil)
			if stepErr != nil {
				return nil, stepErr
			}
			return append([][]byte{toSend}, out...), nil
		}
		return c.Step(nil)

	case StateEarlyUserAuthResult:
		if recv == nil || len(recv) != 4 {
			return nil, rdperr.General("connector", "expected a 4-byte Early User Auth Result message")
		}
		const earlyUserAuthResultSuccess uint32 = 0
		result := uint32(recv[0]) | uint32(recv[1])<<8 | uint32(recv[2])<<16 | uint32(recv[3])<<24
		if result != earlyUserAuthResultSuccess {
			return nil, rdperr.AccessDenied("connector", "server rejected network level authentication")
		}
		c.state = StateBasicSettingsExchangeSendInitial
		return c.Step(nil)

	case StateBasicSettingsExchangeSendInitial:
		userData := pdu.NewClientUserDataSet(uint32(c.selectedProtocol), c.config.DesktopWidth, c.config.DesktopHeight, c.config.ColorDepth, c.config.StaticChannelNames) // #nosec G115
		gccRequest := gcc.NewConferenceCreateRequest(userData.Serialize())
		connectInitial := mcs.NewClientMCSConnectInitial(gccRequest.Serialize())
		connectPDU := mcs.NewClientConnectInitialPDU(connectInitial)

		frame, err := frameData(connectPDU.Serialize())
		if err != nil {
			return nil, err
		}
		c.state = StateBasicSettingsExchangeWaitResponse
		return [][]byte{frame}, nil

	case StateBasicSettingsExchangeWaitResponse:
		if recv == nil {
			return nil, rdperr.General("connector", "expected a Connect Response frame")
		}
		payload, err := unframeData(recv)
		if err != nil {
			return nil, err
		}

		var connectPDU mcs.ConnectPDU
		if err := connectPDU.Deserialize(bodyReader(payload)); err != nil {
			return nil, rdperr.Decode("connector", err)
		}
		if connectPDU.ServerConnectResponse == nil {
			return nil, rdperr.General("connector", "expected a Connect Response")
		}

		var gccResponse gcc.ConferenceCreateResponse
		if err := gccResponse.Deserialize(bodyReader(connectPDU.ServerConnectResponse.UserData)); err != nil {
			return nil, rdperr.Decode("connector", err)
		}

		var serverUserData pdu.ServerUserData
		if err := serverUserData.Deserialize(bodyReader(gccResponse.ServerData)); err != nil {
			return nil, rdperr.Decode("connector", err)
		}
		if serverUserData.ServerNetworkData == nil {
			return nil, rdperr.General("connector", "server omitted Server Network Data")
		}

		c.ioChannelID = serverUserData.ServerNetworkData.MCSChannelId
		c.staticChannelIDs = serverUserData.ServerNetworkData.ChannelIdArray

		c.channelJoin = channeljoin.New(c.ioChannelID, c.staticChannelIDs)
		c.state = StateChannelConnection
		return c.stepChannelJoin(nil)

	case StateChannelConnection:
		if recv == nil {
			return nil, rdperr.General("connector", "expected a Channel Connection frame")
		}
		payload, err := unframeData(recv)
		if err != nil {
			return nil, err
		}
		var domainPDU mcs.DomainPDU
		if err := domainPDU.Deserialize(bodyReader(payload)); err != nil {
			return nil, rdperr.Decode("connector", err)
		}
		return c.stepChannelJoin(&domainPDU)

	case StateRdpSecurityCommencement:
		c.state = StateSecureSettingsExchange
		return c.Step(nil)

	case StateSecureSettingsExchange:
		clientInfo := pdu.NewClientInfo(c.config.Domain, c.config.Username, c.config.Password)
		useEnhancedSecurity := c.selectedProtocol.IsSSL() || c.selectedProtocol.IsHybrid() || c.selectedProtocol.IsHybridEx()

		frame, err := c.frameSendData(clientInfo.Serialize(useEnhancedSecurity))
		if err != nil {
			return nil, err
		}
		c.state = StateConnectTimeAutoDetection
		out, err := c.Step(nil)
		if err != nil {
			return nil, err
		}
		return append([][]byte{frame}, out...), nil

	case StateConnectTimeAutoDetection:
		// Connect-Time Auto-Detection is a pure transition: this client
		// does not advertise NETWORK_CHARACTERISTICS support, so the
		// server never starts the bandwidth measurement exchange.
		c.licenseMachine = license.New(license.Credentials{Username: c.config.Username, Domain: c.config.Domain})
		c.state = StateLicensingExchange
		return nil, nil

	case StateLicensingExchange:
		if recv == nil {
			return nil, rdperr.General("connector", "expected a licensing frame")
		}
		payload, err := unframeData(recv)
		if err != nil {
			return nil, err
		}
		var indication mcs.ServerSendDataIndication
		r := bodyReader(payload)
		if err := indication.Deserialize(r); err != nil {
			return nil, rdperr.Decode("connector", err)
		}
		msg, err := pdu.DeserializeLicenseMessage(r)
		if err != nil {
			return nil, rdperr.Decode("connector", err)
		}

		out, err := c.licenseMachine.Step(msg)
		if err != nil {
			return nil, err
		}
		if c.licenseMachine.State() == license.StateComplete {
			c.state = StateMultitransportBootstrapping
			next, err := c.Step(nil)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return next, nil
			}
			frame, err := c.frameSendData(out)
			if err != nil {
				return nil, err
			}
			return append([][]byte{frame}, next...), nil
		}
		if out == nil {
			return nil, nil
		}
		frame, err := c.frameSendData(out)
		if err != nil {
			return nil, err
		}
		return [][]byte{frame}, nil

	case StateMultitransportBootstrapping:
		// Multitransport Bootstrapping is a pure transition: this client
		// never advertises support for the RDP-UDP side channel, so the
		// server has nothing to bootstrap.
		c.state = StateCapabilitiesExchange
		return nil, nil

	case StateCapabilitiesExchange:
		if recv == nil {
			return nil, rdperr.General("connector", "expected a Demand Active frame")
		}
		payload, err := unframeData(recv)
		if err != nil {
			return nil, err
		}
		var indication mcs.ServerSendDataIndication
		r := bodyReader(payload)
		if err := indication.Deserialize(r); err != nil {
			return nil, rdperr.Decode("connector", err)
		}
		var demandActive pdu.ServerDemandActive
		if err := demandActive.Deserialize(r); err != nil {
			return nil, rdperr.Decode("connector", err)
		}

		c.shareID = demandActive.ShareID
		confirmActive := c.buildConfirmActive(&demandActive)
		frame, err := c.frameSendData(confirmActive.Serialize())
		if err != nil {
			return nil, err
		}

		c.finalizeMachine = finalization.New(c.shareID, c.userID)
		c.state = StateConnectionFinalization
		out, err := c.stepFinalization(nil)
		if err != nil {
			return nil, err
		}
		return append([][]byte{frame}, out...), nil

	case StateConnectionFinalization:
		if recv == nil {
			return nil, rdperr.General("connector", "expected a Connection Finalization frame")
		}
		payload, err := unframeData(recv)
		if err != nil {
			return nil, err
		}
		var indication mcs.ServerSendDataIndication
		r := bodyReader(payload)
		if err := indication.Deserialize(r); err != nil {
			return nil, rdperr.Decode("connector", err)
		}
		var data pdu.Data
		if err := data.Deserialize(r); err != nil {
			return nil, rdperr.Decode("connector", err)
		}
		return c.stepFinalization(&data)

	case StateConnected:
		return nil, rdperr.Internal("connector", "Step called after the connector reached StateConnected")

	default:
		return nil, rdperr.Internal("connector", "Step called on a consumed connector")
	}
}

func (c *Connector) stepChannelJoin(recv *mcs.DomainPDU) ([][]byte, error) {
	toSend, err := c.channelJoin.Step(recv)
	if err != nil {
		return nil, err
	}

	if c.channelJoin.State() == channeljoin.StateJoined {
		result, err := c.channelJoin.Result()
		if err != nil {
			return nil, err
		}
		c.userID = result.UserChannelID
		c.state = StateRdpSecurityCommencement
		return c.Step(nil)
	}

	frames := make([][]byte, 0, len(toSend))
	for _, domainPDU := range toSend {
		frame, err := frameData(domainPDU.Serialize())
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func (c *Connector) stepFinalization(recv *pdu.Data) ([][]byte, error) {
	toSend, err := c.finalizeMachine.Step(recv)
	if err != nil {
		return nil, err
	}

	frames := make([][]byte, 0, len(toSend))
	for _, data := range toSend {
		frame, err := c.frameSendData(data.Serialize())
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}

	if c.finalizeMachine.State() == finalization.StateComplete {
		channels := make(map[string]uint16, len(c.config.StaticChannelNames))
		for i, name := range c.config.StaticChannelNames {
			if i < len(c.staticChannelIDs) {
				channels[name] = c.staticChannelIDs[i]
			}
		}
		c.result = &Result{
			IOChannelID:    c.ioChannelID,
			UserChannelID:  c.userID,
			StaticChannels: channels,
			DesktopWidth:   c.config.DesktopWidth,
			DesktopHeight:  c.config.DesktopHeight,
			ShareID:        c.shareID,
		}
		c.state = StateConnected
	}

	return frames, nil
}

// frameSendData wraps a higher-layer PDU payload in an MCS Send Data
// Request addressed to the I/O channel, then in TPKT/X.224 framing.
func (c *Connector) frameSendData(payload []byte) ([]byte, error) {
	domainPDU := &mcs.DomainPDU{
		Application: mcs.SendDataRequest,
		ClientSendDataRequest: &mcs.ClientSendDataRequest{
			Initiator: c.userID,
			ChannelId: c.ioChannelID,
			Data:      payload,
		},
	}
	return frameData(domainPDU.Serialize())
}

// buildConfirmActive assembles the Client Confirm Active PDU per the
// capabilities negotiation algorithm: it keeps only the server's own
// Multifragment Update capability (falling back to a 1KB default when the
// server didn't advertise one), and otherwise sends this client's fixed
// capability list.
func (c *Connector) buildConfirmActive(demandActive *pdu.ServerDemandActive) *pdu.ClientConfirmActive {
	width, height := c.config.DesktopWidth, c.config.DesktopHeight
	if bitmap := demandActive.FindCapability(pdu.CapabilitySetTypeBitmap); bitmap != nil && bitmap.BitmapCapabilitySet != nil {
		width = bitmap.BitmapCapabilitySet.DesktopWidth
		height = bitmap.BitmapCapabilitySet.DesktopHeight
	}

	confirmActive := pdu.NewClientConfirmActive(demandActive.ShareID, c.userID, width, height, false)

	capSets := []pdu.CapabilitySet{
		pdu.NewGeneralCapabilitySet(),
		pdu.NewBitmapCapabilitySet(width, height),
		pdu.NewOrderCapabilitySet(),
		pdu.NewBitmapCacheCapabilitySetRev1(),
		pdu.NewPointerCapabilitySet(),
		pdu.NewInputCapabilitySet(),
		pdu.NewBrushCapabilitySet(),
		pdu.NewGlyphCacheCapabilitySet(),
		pdu.NewOffscreenBitmapCacheCapabilitySet(),
		pdu.NewVirtualChannelCapabilitySet(),
		pdu.NewSoundCapabilitySet(),
		pdu.NewLargePointerCapabilitySet(),
		pdu.NewSurfaceCommandsCapabilitySet(),
		pdu.NewBitmapCodecsCapabilitySet(),
		pdu.NewFrameAcknowledgeCapabilitySet(),
	}

	if multifrag := demandActive.FindCapability(pdu.CapabilitySetTypeMultifragmentUpdate); multifrag != nil {
		capSets = append(capSets, *multifrag)
	} else {
		multifragDefault := pdu.NewMultifragmentUpdateCapabilitySet()
		multifragDefault.MultifragmentUpdateCapabilitySet.MaxRequestSize = 1024
		capSets = append(capSets, multifragDefault)
	}

	// SourceDescriptor deviates from NewClientConfirmActive's default
	// ("go-rdp") to match the descriptor this connector identifies itself
	// with; OriginatorID is set explicitly to pdu.ServerChannelID (1002),
	// the same value as that constructor's 0x03EA default.
	confirmActive.OriginatorID = pdu.ServerChannelID
	confirmActive.SourceDescriptor = []byte("IRONRDP")
	confirmActive.CapabilitySets = capSets

	return &confirmActive
}
