package tooltip

import "sync/atomic"

// HoverSession tracks the current hover target with a generation counter.
// Every new hover increments the generation; an async resolution captures
// the generation it started under and applies its result only if the
// generation is unchanged, so stale responses for abandoned hovers are
// discarded rather than displayed.
type HoverSession struct {
	generation atomic.Uint64
}

// NewHoverSession creates a session starting at generation zero.
func NewHoverSession() *HoverSession {
	return &HoverSession{}
}

// Begin records a new hover target and returns its generation token.
func (s *HoverSession) Begin() uint64 {
	return s.generation.Add(1)
}

// StillCurrent reports whether the hover that produced gen is still the
// active one.
func (s *HoverSession) StillCurrent(gen uint64) bool {
	return s.generation.Load() == gen
}
