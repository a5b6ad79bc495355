package session

import (
	"fmt"
	"strings"
	"time"
)

const (
	exportTitle  = "AI Study Buddy - Flashcards"
	exportFooter = "Thank you for using AI Study Buddy!\nFor more features, visit our website."
)

// ExportText renders the deck in its current order. It performs no payment
// check; callers gate it with RequestExport.
func (c *Controller) ExportText(generatedOn time.Time) string {
	var b strings.Builder

	b.WriteString(exportTitle + "\n")
	b.WriteString(strings.Repeat("=", 30) + "\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n", generatedOn.Format(c.opts.DateLayout))
	fmt.Fprintf(&b, "Total Cards: %d\n\n", c.state.Deck.Len())

	for i, card := range c.state.Deck.Cards {
		fmt.Fprintf(&b, "Card %d:\n", i+1)
		fmt.Fprintf(&b, "Q: %s\n", card.Question)
		fmt.Fprintf(&b, "A: %s\n", card.Answer)
		b.WriteString(strings.Repeat("-", 40) + "\n\n")
	}

	b.WriteString("\n" + exportFooter)
	return b.String()
}

// ExportFilename names the export file for the given day.
func ExportFilename(generatedOn time.Time) string {
	return "flashcards-" + generatedOn.Format("2006-01-02") + ".txt"
}
