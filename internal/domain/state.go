package domain

// SessionState is everything one study session holds in memory.
type SessionState struct {
	Deck        *Deck
	Review      ReviewState
	Entitlement PaymentEntitlement

	// saved marks cards persisted during the current presentation. Keyed by
	// value so the marks follow cards through a shuffle.
	saved map[Card]struct{}
}

// NewSessionState returns an empty session.
func NewSessionState() *SessionState {
	return &SessionState{
		Deck:   NewDeck(nil, false),
		Review: NewReviewState(0),
		saved:  make(map[Card]struct{}),
	}
}

// ReplaceDeck installs a new deck, resetting review progress and saved marks.
func (s *SessionState) ReplaceDeck(d *Deck) {
	s.Deck = d
	s.Review = NewReviewState(d.Len())
	s.saved = make(map[Card]struct{})
}

// MarkSaved records that c was saved to the backend.
func (s *SessionState) MarkSaved(c Card) {
	if s.saved == nil {
		s.saved = make(map[Card]struct{})
	}
	s.saved[c] = struct{}{}
}

// IsSaved reports whether c was saved during this presentation.
func (s *SessionState) IsSaved(c Card) bool {
	_, ok := s.saved[c]
	return ok
}
