package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/study-buddy/internal/session"
)

// ConsoleNotifier prints notices with a level prefix.
type ConsoleNotifier struct {
	out io.Writer
}

var _ session.Notifier = (*ConsoleNotifier)(nil)

// NewConsoleNotifier creates a notifier writing to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// Notify prints text. Empty text is ignored.
func (n *ConsoleNotifier) Notify(level session.Level, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(n.out, "[%s] %s\n", level, text)
}

const helpText = `Commands:
  generate [file]   generate cards from a notes file, or from pasted notes
  load              load your saved cards
  show              show the deck
  flip N            flip card N
  shuffle           shuffle the deck and restart progress
  reset             restart progress
  save N            save card N to your library
  export [path]     download the deck as text (requires payment)
  pay EMAIL PHONE   pay to unlock downloads for 24 hours
  saved             list your saved cards
  delete ID         delete a saved card
  clear-saved       delete all saved cards
  help              show this help
  quit              leave`

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, helpText)
}

func (r *REPL) render() {
	v := r.ctrl.View()
	if v.Total == 0 {
		fmt.Fprintln(r.out, "No flashcards yet. Use 'generate' or 'load'.")
		return
	}
	title := "Generated Flashcards"
	if v.Persisted {
		title = "Saved Flashcards"
	}
	fmt.Fprintf(r.out, "%s (%d)\n", title, v.Total)
	for _, c := range v.Cards {
		r.renderCard(c)
	}
	r.renderProgress(v)
}

func (r *REPL) renderCard(c session.CardView) {
	var marks []string
	if c.Reviewed {
		marks = append(marks, "reviewed")
	}
	if c.Saved {
		marks = append(marks, "saved")
	}
	suffix := ""
	if len(marks) > 0 {
		suffix = " [" + strings.Join(marks, ", ") + "]"
	}

	if r.flipped[c.Number-1] {
		fmt.Fprintf(r.out, "%2d. A: %s%s\n", c.Number, c.Answer, suffix)
		return
	}
	fmt.Fprintf(r.out, "%2d. Q: %s%s\n", c.Number, c.Question, suffix)
}

func (r *REPL) renderProgress(v session.View) {
	fmt.Fprintf(r.out, "Progress: %d/%d cards reviewed (%d%%)\n", v.Reviewed, v.Total, v.ProgressPercent)
}
