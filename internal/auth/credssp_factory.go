package auth

import (
	"fmt"
)

// credSSPClientStage tracks where a single CredSSP (NLA) exchange stands
// relative to the NTLM messages it carries: negotiate sent, challenge
// received and authenticate sent, then the server's public key proof
// verified and credentials sent.
type credSSPClientStage int

const (
	credSSPStageNegotiate credSSPClientStage = iota
	credSSPStageAuthenticate
	credSSPStageCredentials
	credSSPStageDone
)

// credSSPClient drives the three-leg CredSSP client handshake (negotiate,
// challenge/authenticate + public key binding, server proof + encrypted
// credentials) described in MS-CSSP on top of the NTLMv2 messages in
// ntlm.go and the TSRequest codec in credssp.go.
type credSSPClient struct {
	ntlm       *NTLMv2
	serverCert []byte
	stage      credSSPClientStage
	security   *Security
	clientKey  []byte
}

// NewCredSSPClientFactory returns a function matching the connector's
// CredSSPFactory signature (func([]byte) ([]byte, bool, error)) that
// performs a full NTLMv2-over-CredSSP client handshake. serverCert is the
// DER-encoded public key (SubjectPublicKeyInfo) from the TLS certificate
// the connector upgraded to; CredSSP binds the NLA handshake to it to
// detect a man-in-the-middle, so the caller must extract it from the TLS
// connection state before attaching the factory.
func NewCredSSPClientFactory(domain, username, password string, serverCert []byte) func([]byte) ([]byte, bool, error) {
	client := &credSSPClient{
		ntlm:       NewNTLMv2(domain, username, password),
		serverCert: serverCert,
	}
	return client.step
}

func (c *credSSPClient) step(received []byte) ([]byte, bool, error) {
	switch c.stage {
	case credSSPStageNegotiate:
		if received != nil {
			return nil, false, fmt.Errorf("credssp: unexpected server message before negotiate")
		}
		negotiate := c.ntlm.GetNegotiateMessage()
		c.stage = credSSPStageAuthenticate
		return EncodeTSRequest([][]byte{negotiate}, nil, nil), false, nil

	case credSSPStageAuthenticate:
		req, err := DecodeTSRequest(received)
		if err != nil {
			return nil, false, fmt.Errorf("credssp: decoding server challenge: %w", err)
		}
		if len(req.NegoTokens) == 0 {
			return nil, false, fmt.Errorf("credssp: server response carried no NTLM challenge")
		}

		authenticate, security := c.ntlm.GetAuthenticateMessage(req.NegoTokens[0].Data)
		if security == nil {
			return nil, false, fmt.Errorf("credssp: parsing NTLM challenge message")
		}
		c.security = security
		c.clientKey = ComputeClientPubKeyAuth(2, c.serverCert, nil)
		pubKeyAuth := security.GssEncrypt(c.clientKey)

		c.stage = credSSPStageCredentials
		return EncodeTSRequest([][]byte{authenticate}, nil, pubKeyAuth), false, nil

	case credSSPStageCredentials:
		req, err := DecodeTSRequest(received)
		if err != nil {
			return nil, false, fmt.Errorf("credssp: decoding server public key proof: %w", err)
		}
		if len(req.PubKeyAuth) == 0 {
			return nil, false, fmt.Errorf("credssp: server response carried no public key proof")
		}

		serverProof := c.security.GssDecrypt(req.PubKeyAuth)
		if !VerifyServerPubKeyAuth(2, serverProof, c.clientKey, nil) {
			return nil, false, fmt.Errorf("credssp: server public key proof mismatch, possible man-in-the-middle")
		}

		domain, user, password := c.ntlm.GetCredSSPCredentials()
		credentials := EncodeCredentials(domain, user, password)
		authInfo := c.security.GssEncrypt(credentials)

		c.stage = credSSPStageDone
		return EncodeTSRequest(nil, authInfo, nil), true, nil
	}

	return nil, false, fmt.Errorf("credssp: step called after handshake completed")
}
