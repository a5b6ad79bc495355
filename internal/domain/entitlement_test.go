package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPaymentEntitlement(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("grant requires timestamp", func(t *testing.T) {
		var p PaymentEntitlement
		if err := p.Grant(time.Time{}); !errors.Is(err, ErrEntitlementTimestamp) {
			t.Fatalf("expected ErrEntitlementTimestamp, got %v", err)
		}
		if p.Granted {
			t.Error("failed grant must not set Granted")
		}
	})

	t.Run("window boundaries", func(t *testing.T) {
		var p PaymentEntitlement
		if err := p.Grant(base); err != nil {
			t.Fatal(err)
		}
		if !p.ValidAt(base.Add(EntitlementWindow-time.Millisecond), EntitlementWindow) {
			t.Error("should be valid just inside the window")
		}
		if p.ValidAt(base.Add(EntitlementWindow), EntitlementWindow) {
			t.Error("should be invalid at exactly the window")
		}
		if !p.Expired(base.Add(25*time.Hour), EntitlementWindow) {
			t.Error("should be expired after 25h")
		}
	})

	t.Run("unset is neither valid nor expired", func(t *testing.T) {
		var p PaymentEntitlement
		if p.ValidAt(base, EntitlementWindow) || p.Expired(base, EntitlementWindow) {
			t.Error("unset entitlement")
		}
	})

	t.Run("clear", func(t *testing.T) {
		var p PaymentEntitlement
		_ = p.Grant(base)
		p.Clear()
		if p.Granted || !p.GrantedAt.IsZero() {
			t.Error("Clear should zero the entitlement")
		}
	})
}

func TestSessionStateReplaceDeck(t *testing.T) {
	t.Parallel()

	s := NewSessionState()
	s.ReplaceDeck(NewDeck(testCards(2), false))
	_ = s.Review.MarkReviewed(0)
	s.MarkSaved(s.Deck.Cards[1])

	s.ReplaceDeck(NewDeck(testCards(3), true))
	if s.Review.Count() != 0 || s.Review.TotalCount != 3 {
		t.Error("ReplaceDeck must reset review state")
	}
	if s.IsSaved(testCards(2)[1]) {
		t.Error("ReplaceDeck must clear saved marks")
	}
}
