package auth

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeChallengeMessage() []byte {
	buf := &bytes.Buffer{}
	buf.Write(ntlmSignature)
	binary.Write(buf, binary.LittleEndian, uint32(2))
	binary.Write(buf, binary.LittleEndian, uint16(0))
	binary.Write(buf, binary.LittleEndian, uint16(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(NTLMSSP_NEGOTIATE_UNICODE))
	buf.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	buf.Write(make([]byte, 8))
	binary.Write(buf, binary.LittleEndian, uint16(0))
	binary.Write(buf, binary.LittleEndian, uint16(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.Write(make([]byte, 16))
	return buf.Bytes()
}

func TestCredSSPClientFactory_FullHandshake(t *testing.T) {
	serverCert := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	client := &credSSPClient{
		ntlm:       NewNTLMv2("DOMAIN", "alice", "hunter2"),
		serverCert: serverCert,
	}

	negotiateReq, done, err := client.step(nil)
	require.NoError(t, err)
	require.False(t, done)
	decodedNegotiate, err := DecodeTSRequest(negotiateReq)
	require.NoError(t, err)
	require.Len(t, decodedNegotiate.NegoTokens, 1)

	serverChallenge := EncodeTSRequest([][]byte{fakeChallengeMessage()}, nil, nil)
	authReq, done, err := client.step(serverChallenge)
	require.NoError(t, err)
	require.False(t, done)
	decodedAuth, err := DecodeTSRequest(authReq)
	require.NoError(t, err)
	require.Len(t, decodedAuth.NegoTokens, 1)
	require.NotEmpty(t, decodedAuth.PubKeyAuth)
	require.NotNil(t, client.security)

	// Mirror the server side of the GSS exchange: it seals with the
	// direction-swapped keys the client derived (its decryptRC4 cipher and
	// verifyKey are exactly the server's sealing/signing keys), sharing the
	// same *rc4.Cipher so the keystream position stays in sync with the
	// client.security.GssDecrypt call below.
	serverSide := &Security{
		encryptRC4: client.security.decryptRC4,
		signingKey: client.security.verifyKey,
	}
	expectedProof := make([]byte, len(client.clientKey))
	copy(expectedProof, client.clientKey)
	expectedProof[0]++
	serverProof := serverSide.GssEncrypt(expectedProof)

	credsReq, done, err := client.step(EncodeTSRequest(nil, nil, serverProof))
	require.NoError(t, err)
	require.True(t, done)
	decodedCreds, err := DecodeTSRequest(credsReq)
	require.NoError(t, err)
	require.NotEmpty(t, decodedCreds.AuthInfo)

	_, _, err = client.step(nil)
	require.Error(t, err)
}

func TestCredSSPClientFactory_RejectsBadServerProof(t *testing.T) {
	serverCert := []byte{0x01, 0x02, 0x03, 0x04}
	step := NewCredSSPClientFactory("DOMAIN", "bob", "s3cr3t", serverCert)

	_, _, err := step(nil)
	require.NoError(t, err)

	serverChallenge := EncodeTSRequest([][]byte{fakeChallengeMessage()}, nil, nil)
	_, _, err = step(serverChallenge)
	require.NoError(t, err)

	badProof := EncodeTSRequest(nil, nil, []byte{0xFF, 0xFF, 0xFF, 0xFF})
	_, _, err = step(badProof)
	require.Error(t, err)
}

func TestCredSSPClientFactory_RejectsUnexpectedFirstMessage(t *testing.T) {
	step := NewCredSSPClientFactory("", "alice", "pw", nil)
	_, _, err := step([]byte{0x01})
	require.Error(t, err)
}
