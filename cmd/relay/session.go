// Package main implements a thin WebSocket-to-RDP relay demonstrating how a
// caller drives internal/connector: it owns the TCP dial, the TLS handshake
// (the enhanced security upgrade), and the CredSSP transcript, copies raw
// bytes between the RDP server connection and the connector's Step loop,
// and reports the outcome over the browser-facing WebSocket. It is example
// wiring, not a full RDP client.
package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rcarmo/go-rdp/internal/auth"
	"github.com/rcarmo/go-rdp/internal/connector"
	"github.com/rcarmo/go-rdp/internal/logging"
	"github.com/rcarmo/go-rdp/internal/sequence"
)

// sessionRequest carries the per-connection parameters the browser sends
// once the WebSocket is established.
type sessionRequest struct {
	Host          string `json:"host"`
	Port          string `json:"port"`
	Username      string `json:"username"`
	Domain        string `json:"domain"`
	Password      string `json:"password"`
	Width         uint16 `json:"width"`
	Height        uint16 `json:"height"`
	SkipTLSVerify bool   `json:"skipTLSVerify"`
}

// readFramedPDU reads exactly one frame from r, using hint to discover its
// total length from a growing prefix. A nil hint means the current phase
// expects a bare DER SEQUENCE (the CredSSP transcript), whose length is
// self-describing at the BER level.
func readFramedPDU(r *bufio.Reader, hint sequence.PDUHint) ([]byte, error) {
	if hint == nil {
		return readDERSequence(r)
	}

	prefix := make([]byte, 0, 4)
	for {
		b, err := r.Peek(len(prefix) + 1)
		if err != nil {
			return nil, err
		}
		prefix = b
		if length, ok := hint(prefix); ok {
			frame := make([]byte, length)
			if _, err := readFull(r, frame); err != nil {
				return nil, err
			}
			return frame, nil
		}
	}
}

// readDERSequence reads one BER/DER-encoded SEQUENCE (tag 0x30) by parsing
// its length octets, the same short/long-form length encoding credssp.go
// uses on encode.
func readDERSequence(r *bufio.Reader) ([]byte, error) {
	header := make([]byte, 2)
	if _, err := readFull(r, header); err != nil {
		return nil, err
	}
	if header[0] != 0x30 {
		return nil, fmt.Errorf("relay: expected a SEQUENCE tag, got 0x%02x", header[0])
	}

	var bodyLen int
	var lengthOctets []byte
	if header[1] < 0x80 {
		bodyLen = int(header[1])
	} else {
		numBytes := int(header[1] &^ 0x80)
		lengthOctets = make([]byte, numBytes)
		if _, err := readFull(r, lengthOctets); err != nil {
			return nil, err
		}
		for _, b := range lengthOctets {
			bodyLen = (bodyLen << 8) | int(b)
		}
	}

	body := make([]byte, bodyLen)
	if _, err := readFull(r, body); err != nil {
		return nil, err
	}

	frame := make([]byte, 0, 2+len(lengthOctets)+bodyLen)
	frame = append(frame, header...)
	frame = append(frame, lengthOctets...)
	frame = append(frame, body...)
	return frame, nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// runSession dials req.Host:req.Port, drives a Connector through the full
// MS-RDPBCGR connection sequence (including the TLS upgrade and, when
// negotiated, the CredSSP/NLA transcript), and once StateConnected reports
// its Result over ws. The server connection is closed on return; the
// fastpath data phase is out of scope for this harness.
func runSession(ctx context.Context, ws *websocket.Conn, req sessionRequest, tlsConfig *tls.Config) (*connector.Result, error) {
	addr := net.JoinHostPort(req.Host, req.Port)
	dialer := net.Dialer{Timeout: 10 * time.Second}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("relay: dialing %s: %w", addr, err)
	}
	defer func() {
		if rawConn != nil {
			_ = rawConn.Close()
		}
	}()

	c := connector.New(connector.Config{
		Username:      req.Username,
		Domain:        req.Domain,
		Password:      req.Password,
		DesktopWidth:  req.Width,
		DesktopHeight: req.Height,
		ColorDepth:    32,
	})

	var conn net.Conn = rawConn
	reader := bufio.NewReader(conn)

	var recv []byte
	for {
		frames, err := c.Step(recv)
		if err != nil {
			return nil, fmt.Errorf("relay: connector step: %w", err)
		}
		for _, frame := range frames {
			if _, err := conn.Write(frame); err != nil {
				return nil, fmt.Errorf("relay: writing frame: %w", err)
			}
		}

		switch {
		case c.State() == connector.StateConnected:
			result, err := c.Result()
			if err != nil {
				return nil, err
			}
			logging.Info("relay: connected, share id %d, io channel %d", result.ShareID, result.IOChannelID)
			if err := ws.WriteJSON(struct {
				Type          string `json:"type"`
				ShareID       uint32 `json:"shareId"`
				IOChannelID   uint16 `json:"ioChannelId"`
				UserChannelID uint16 `json:"userChannelId"`
			}{Type: "connected", ShareID: result.ShareID, IOChannelID: result.IOChannelID, UserChannelID: result.UserChannelID}); err != nil {
				return nil, fmt.Errorf("relay: reporting connect status: %w", err)
			}
			return result, nil

		case c.State() == connector.StateEnhancedSecurityUpgrade:
			tlsConn := tls.Client(conn, tlsConfig)
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				return nil, fmt.Errorf("relay: TLS handshake: %w", err)
			}
			conn = tlsConn
			reader = bufio.NewReader(conn)

			// Attach unconditionally: the connector only invokes it when the
			// negotiated protocol is HYBRID/HYBRID_EX.
			serverCert := tlsConn.ConnectionState().PeerCertificates[0].RawSubjectPublicKeyInfo
			c.AttachCredSSPClientFactory(auth.NewCredSSPClientFactory(req.Domain, req.Username, req.Password, serverCert))
			c.MarkSecurityUpgradeAsDone()
			recv = nil
			continue
		}

		recv, err = readFramedPDU(reader, c.NextPDUHint())
		if err != nil {
			return nil, fmt.Errorf("relay: reading frame: %w", err)
		}
	}
}
