package domain

import "math/rand/v2"

// Deck is the ordered set of cards currently presented. Persisted is true
// when the deck came from the backend's saved cards rather than from a fresh
// generation.
type Deck struct {
	Cards     []Card
	Persisted bool
}

// NewDeck copies cards into a new deck.
func NewDeck(cards []Card, persisted bool) *Deck {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Deck{Cards: c, Persisted: persisted}
}

// Len returns the number of cards, treating a nil deck as empty.
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Cards)
}

// Empty reports whether the deck has no cards.
func (d *Deck) Empty() bool {
	return d.Len() == 0
}

// Shuffle permutes the cards in place with a Fisher-Yates shuffle over rng.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Clone returns a deep copy of the deck.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	return NewDeck(d.Cards, d.Persisted)
}
