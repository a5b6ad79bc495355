package session

// CardView is one card as presented to the user. Number is 1-based.
type CardView struct {
	Number   int    `json:"number"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Reviewed bool   `json:"reviewed"`
	Saved    bool   `json:"saved"`
}

// View is a read-only snapshot of the session for rendering.
type View struct {
	Cards           []CardView `json:"cards"`
	Persisted       bool       `json:"persisted"`
	Total           int        `json:"total"`
	Reviewed        int        `json:"reviewed"`
	ProgressPercent int        `json:"progress_percent"`
	ExportUnlocked  bool       `json:"export_unlocked"`
}

// View returns the current snapshot.
func (c *Controller) View() View {
	deck := c.state.Deck
	v := View{
		Cards:           make([]CardView, 0, deck.Len()),
		Persisted:       deck != nil && deck.Persisted,
		Total:           deck.Len(),
		Reviewed:        c.state.Review.Count(),
		ProgressPercent: c.state.Review.Progress(),
		ExportUnlocked:  c.state.Entitlement.ValidAt(c.now(), c.opts.EntitlementWindow),
	}
	for i := 0; i < deck.Len(); i++ {
		card := deck.Cards[i]
		v.Cards = append(v.Cards, CardView{
			Number:   i + 1,
			Question: card.Question,
			Answer:   card.Answer,
			Reviewed: c.state.Review.Has(i),
			Saved:    c.state.IsSaved(card),
		})
	}
	return v
}
