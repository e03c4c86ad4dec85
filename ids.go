package arbor

import "github.com/google/uuid"

// IDSource issues node identities: a process-local integer in creation order
// and a globally unique string.
type IDSource interface {
	NextIdentity() (id uint64, uuid string)
}

// Sequence is the standard IDSource. Integers start at 1 and are never
// reused by the same Sequence. Not safe for concurrent use.
type Sequence struct {
	last    uint64
	newUUID func() string
}

// NewSequence returns a Sequence that issues random (version 4) UUIDs.
func NewSequence() *Sequence {
	return &Sequence{newUUID: uuid.NewString}
}

// NewSequenceWithUUID returns a Sequence that takes UUIDs from fn. Useful for
// deterministic documents in tests and tools.
func NewSequenceWithUUID(fn func() string) *Sequence {
	if fn == nil {
		fn = uuid.NewString
	}
	return &Sequence{newUUID: fn}
}

// NextIdentity implements IDSource.
func (s *Sequence) NextIdentity() (uint64, string) {
	s.last++
	return s.last, s.newUUID()
}

// Last returns the most recently issued integer id, or 0.
func (s *Sequence) Last() uint64 {
	return s.last
}

// fallbackIDs serves NewNode calls made without an IDSource.
var fallbackIDs = NewSequence()
