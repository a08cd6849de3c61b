package gcc

import (
	"github.com/rcarmo/go-rdp/internal/cursor"
	"github.com/rcarmo/go-rdp/internal/rdperr"
)

// Cursor-based wrappers around the PER Serialize/Deserialize pair above.
// GCC's PER framing is ASN.1-derived and out of scope to reimplement from
// scratch, so the wire logic stays exactly as it is; only the boundary with
// the rest of the module is expressed in terms of Cursor.

func (r *ConferenceCreateRequest) Name() string { return "gcc.ConferenceCreateRequest" }

func (r *ConferenceCreateRequest) Size() int {
	return len(r.Serialize())
}

func (r *ConferenceCreateRequest) Encode(dst *cursor.Writer) error {
	if _, err := dst.Write(r.Serialize()); err != nil {
		return rdperr.Encode("gcc.ConferenceCreateRequest", err)
	}
	return nil
}

func (r *ConferenceCreateResponse) Name() string { return "gcc.ConferenceCreateResponse" }

func (r *ConferenceCreateResponse) Decode(src *cursor.Reader) error {
	if err := r.Deserialize(src); err != nil {
		return rdperr.Decode("gcc.ConferenceCreateResponse", err)
	}
	return nil
}
