package domain

import (
	"math/rand/v2"
	"sort"
	"testing"
)

func testCards(n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = Card{Question: string(rune('a' + i)), Answer: string(rune('A' + i))}
	}
	return cards
}

func TestDeckShuffleIsPermutation(t *testing.T) {
	t.Parallel()

	d := NewDeck(testCards(10), true)
	d.Shuffle(rand.New(rand.NewPCG(1, 2)))

	if d.Len() != 10 {
		t.Fatalf("expected 10 cards, got %d", d.Len())
	}
	if !d.Persisted {
		t.Error("shuffle must not change Persisted")
	}

	qs := make([]string, 0, d.Len())
	for _, c := range d.Cards {
		qs = append(qs, c.Question)
	}
	sort.Strings(qs)
	for i, q := range qs {
		if q != string(rune('a'+i)) {
			t.Fatalf("card %q missing after shuffle", string(rune('a'+i)))
		}
	}
}

func TestDeckShuffleDeterministic(t *testing.T) {
	t.Parallel()

	a := NewDeck(testCards(8), false)
	b := NewDeck(testCards(8), false)
	a.Shuffle(rand.New(rand.NewPCG(42, 42)))
	b.Shuffle(rand.New(rand.NewPCG(42, 42)))

	for i := range a.Cards {
		if a.Cards[i] != b.Cards[i] {
			t.Fatalf("same seed produced different order at %d", i)
		}
	}
}

func TestNewDeckCopies(t *testing.T) {
	t.Parallel()

	src := testCards(2)
	d := NewDeck(src, false)
	src[0].Question = "changed"
	if d.Cards[0].Question == "changed" {
		t.Error("NewDeck must copy its input")
	}

	var nilDeck *Deck
	if !nilDeck.Empty() {
		t.Error("nil deck should be empty")
	}
}
