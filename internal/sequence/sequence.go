// Package sequence holds the shared vocabulary of the sub-sequence state
// machines (channeljoin, license, finalization) driven by the top-level
// connector: the Written sum type every step returns and the PDUHint a
// caller consults before reading the next frame.
package sequence

import "github.com/rcarmo/go-rdp/internal/rdperr"

// Written is the outcome of a single step: either nothing was produced, or
// a positive number of bytes was. A zero-size Written is a programming
// error, caught by FromSize rather than silently accepted.
type Written struct {
	size int
}

// Nothing is the Written value for a step that produced no output.
func Nothing() Written { return Written{size: 0} }

// FromSize builds a Written for n bytes of output. n must be positive.
func FromSize(n int) (Written, error) {
	if n <= 0 {
		return Written{}, rdperr.Internal("sequence.Written", "FromSize requires n > 0")
	}
	return Written{size: n}, nil
}

// IsNothing reports whether the step produced no output.
func (w Written) IsNothing() bool { return w.size == 0 }

// Size returns the number of bytes produced, or 0 for Nothing.
func (w Written) Size() int { return w.size }

// PDUHint answers "how many bytes does the next frame need?" given a
// prefix of the stream already buffered.
type PDUHint func(prefix []byte) (length int, ok bool)
