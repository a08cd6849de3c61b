package mcs

import (
	"bytes"

	"github.com/rcarmo/go-rdp/internal/protocol/encoding"
)

// ClientErectDomainRequest is the T.125 Erect Domain Request: the first
// PDU a client sends once the MCS connection is open.
type ClientErectDomainRequest struct{}

func (pdu *ClientErectDomainRequest) Serialize() []byte {
	buf := new(bytes.Buffer)

	encoding.PerWriteInteger(0, buf)
	encoding.PerWriteInteger(0, buf)

	return buf.Bytes()
}
