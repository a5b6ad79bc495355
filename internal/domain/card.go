package domain

import (
	"strings"
	"time"
)

// Card is a single question/answer flashcard. Cards are values and are never
// mutated once created.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Usable reports whether both sides of the card carry text.
func (c Card) Usable() bool {
	return strings.TrimSpace(c.Question) != "" && strings.TrimSpace(c.Answer) != ""
}

// SavedCard is a card as persisted by the flashcard backend.
type SavedCard struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// Card returns the question/answer pair of the saved card.
func (s SavedCard) Card() Card {
	return Card{Question: s.Question, Answer: s.Answer}
}

// UsableCards returns the usable cards of in, preserving order.
func UsableCards(in []Card) []Card {
	out := make([]Card, 0, len(in))
	for _, c := range in {
		if c.Usable() {
			out = append(out, c)
		}
	}
	return out
}
