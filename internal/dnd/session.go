package dnd

import "pagebuilder/internal/domain"

// Session tracks one drag gesture: its payload and the last decision.
// A Session is not safe for concurrent use; its owner serializes access.
type Session struct {
	resolver *Resolver

	active   bool
	payload  Payload
	decision Decision
	decided  bool
}

// NewSession returns an idle session resolving with r.
func NewSession(r *Resolver) *Session {
	return &Session{resolver: r}
}

// Start begins a gesture, dropping any state left by a previous one.
func (s *Session) Start(p Payload) {
	s.active = true
	s.payload = p
	s.decision, s.decided = Decision{}, false
}

// Move resolves the current decision. A tick with no legal target clears
// the previous decision.
func (s *Session) Move(t domain.Tree, u Update) (Decision, bool) {
	if !s.active {
		return Decision{}, false
	}
	s.decision, s.decided = s.resolver.Resolve(t, s.payload, u)
	return s.decision, s.decided
}

// End finishes the gesture, returning the payload and the last decision.
// The session is idle afterwards.
func (s *Session) End() (Payload, Decision, bool) {
	p, d, ok := s.payload, s.decision, s.active && s.decided
	s.reset()
	return p, d, ok
}

// Cancel abandons the gesture.
func (s *Session) Cancel() {
	s.reset()
}

// Active reports whether a gesture is in progress.
func (s *Session) Active() bool { return s.active }

// Payload returns the dragged payload of the active gesture.
func (s *Session) Payload() Payload { return s.payload }

// Decision returns the current decision, if any.
func (s *Session) Decision() (Decision, bool) { return s.decision, s.decided }

func (s *Session) reset() {
	s.active = false
	s.payload = Payload{}
	s.decision, s.decided = Decision{}, false
}
