// Package cli implements the line-oriented terminal adapter for a study
// session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/session"
)

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = errors.New("quit")

const (
	// notesTerminator ends notes typed on standard input.
	notesTerminator = "."

	// maxLineBytes caps one input line. It matches the HTTP API's body cap.
	maxLineBytes = 1 << 20
)

// SavedCards manages the backend card library beyond what the controller needs.
type SavedCards interface {
	List(ctx context.Context) ([]domain.SavedCard, error)
	Delete(ctx context.Context, id int64) (string, error)
	ClearAll(ctx context.Context) (string, error)
}

// REPL reads commands from in and drives one session controller.
type REPL struct {
	ctrl     *session.Controller
	saved    SavedCards
	in       *bufio.Scanner
	out      io.Writer
	notifier session.Notifier
	logger   *slog.Logger
	now      func() time.Time

	readFile  func(string) ([]byte, error)
	writeFile func(string, []byte) error

	// flipped holds the indices currently showing their answer.
	flipped map[int]bool
	// pendingExport is the path of an export waiting on payment.
	pendingExport string
}

// Option configures a REPL.
type Option func(*REPL)

// WithClock overrides the clock used for export dates.
func WithClock(now func() time.Time) Option {
	return func(r *REPL) { r.now = now }
}

// WithFiles overrides file access, for tests.
func WithFiles(read func(string) ([]byte, error), write func(string, []byte) error) Option {
	return func(r *REPL) {
		r.readFile = read
		r.writeFile = write
	}
}

// WithNotifier replaces the console notifier.
func WithNotifier(n session.Notifier) Option {
	return func(r *REPL) { r.notifier = n }
}

// New creates a REPL over ctrl.
func New(
	ctrl *session.Controller,
	saved SavedCards,
	in io.Reader,
	out io.Writer,
	logger *slog.Logger,
	opts ...Option,
) (*REPL, error) {
	if ctrl == nil {
		return nil, errors.New("controller cannot be nil")
	}
	if saved == nil {
		return nil, errors.New("saved cards cannot be nil")
	}
	if in == nil || out == nil {
		return nil, errors.New("input and output cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	r := &REPL{
		ctrl:    ctrl,
		saved:   saved,
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  logger.With("component", "repl"),
		now:     time.Now,
		flipped: make(map[int]bool),
		readFile: func(path string) ([]byte, error) {
			return os.ReadFile(path)
		},
		writeFile: func(path string, data []byte) error {
			return os.WriteFile(path, data, 0o644)
		},
	}
	r.in.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	r.notifier = NewConsoleNotifier(out)
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run prints the prompt and executes commands until quit, end of input or
// cancellation.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "AI Study Buddy. Type 'help' for commands.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		if err := r.Execute(ctx, r.in.Text()); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}

// Execute runs one command line. User-facing failures are reported as
// notices; only ErrQuit and input errors are returned.
func (r *REPL) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		r.printHelp()
	case "quit", "exit", "q":
		return ErrQuit
	case "generate", "gen":
		return r.generate(ctx, args)
	case "load":
		r.load(ctx)
	case "show", "ls":
		r.render()
	case "flip":
		r.flip(args)
	case "shuffle":
		r.ctrl.Shuffle()
		r.flipped = make(map[int]bool)
		r.notice(session.NoticeShuffled)
		r.render()
	case "reset":
		r.ctrl.ResetProgress()
		r.flipped = make(map[int]bool)
		r.notice(session.NoticeProgressReset)
		r.render()
	case "save":
		r.save(ctx, args)
	case "export", "download":
		r.export(ctx, args)
	case "pay":
		r.pay(ctx, args)
	case "saved":
		r.listSaved(ctx)
	case "delete":
		r.deleteSaved(ctx, args)
	case "clear-saved":
		r.clearSaved(ctx)
	default:
		r.notifier.Notify(session.LevelWarning, fmt.Sprintf("Unknown command %q. Type 'help' for commands.", cmd))
	}
	return nil
}

func (r *REPL) generate(ctx context.Context, args []string) error {
	var notes string
	if len(args) > 0 {
		data, err := r.readFile(strings.Join(args, " "))
		if err != nil {
			r.logger.Debug("reading notes file failed", "error", err)
			r.notifier.Notify(session.LevelError, "Could not read the notes file.")
			return nil
		}
		notes = string(data)
	} else {
		fmt.Fprintf(r.out, "Paste your notes. End with a line containing only %q.\n", notesTerminator)
		var b strings.Builder
		for r.in.Scan() {
			line := r.in.Text()
			if strings.TrimSpace(line) == notesTerminator {
				break
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		if err := r.in.Err(); err != nil {
			return fmt.Errorf("reading notes: %w", err)
		}
		notes = b.String()
	}

	r.notifier.Notify(session.LevelInfo, "Generating flashcards...")
	deck, err := r.ctrl.Generate(ctx, notes)
	if err != nil {
		r.notice(session.UserMessage(session.OpGenerate, err))
		return nil
	}
	r.flipped = make(map[int]bool)
	r.notice(session.GeneratedNotice(deck.Len()))
	r.render()
	return nil
}

func (r *REPL) load(ctx context.Context) {
	deck, err := r.ctrl.Load(ctx)
	if err != nil {
		r.notice(session.UserMessage(session.OpLoad, err))
		return
	}
	if deck == nil {
		r.notice(session.NoticeNoSavedCards)
		return
	}
	r.flipped = make(map[int]bool)
	r.render()
}

func (r *REPL) flip(args []string) {
	index, ok := r.cardIndex(args)
	if !ok {
		return
	}
	r.ctrl.Flip(index)
	r.flipped[index] = !r.flipped[index]
	r.renderCard(r.ctrl.View().Cards[index])
	r.renderProgress(r.ctrl.View())
}

func (r *REPL) save(ctx context.Context, args []string) {
	index, ok := r.cardIndex(args)
	if !ok {
		return
	}
	msg, err := r.ctrl.Save(ctx, index)
	if err != nil {
		r.notice(session.UserMessage(session.OpSave, err))
		return
	}
	r.notice(session.SavedNotice(msg))
}

func (r *REPL) export(ctx context.Context, args []string) {
	path := strings.Join(args, " ")
	decision := r.ctrl.RequestExport(ctx)
	switch decision.Outcome {
	case session.ExportBlocked:
		r.notice(session.UserMessage(session.OpExport, decision.Reason))
	case session.ExportRequiresPayment:
		r.pendingExport = path
		r.notifier.Notify(session.LevelInfo,
			"Downloading requires a payment. Run 'pay EMAIL PHONE' to unlock it for 24 hours.")
	case session.ExportAllowed:
		r.writeExport(path)
	}
}

func (r *REPL) writeExport(path string) {
	now := r.now()
	if path == "" {
		path = session.ExportFilename(now)
	}
	if err := r.writeFile(path, []byte(r.ctrl.ExportText(now))); err != nil {
		r.logger.Warn("writing export failed", "error", err)
		r.notifier.Notify(session.LevelError, "Could not write the export file.")
		return
	}
	r.notice(session.NoticeDownloaded)
	fmt.Fprintf(r.out, "Saved to %s\n", path)
}

func (r *REPL) pay(ctx context.Context, args []string) {
	var email, phone string
	if len(args) > 0 {
		email = args[0]
	}
	if len(args) > 1 {
		phone = strings.Join(args[1:], "")
	}
	if err := r.ctrl.CompletePayment(ctx, email, phone); err != nil {
		r.notice(session.UserMessage(session.OpPayment, err))
		return
	}
	r.notice(session.NoticePaymentSuccess)
	path := r.pendingExport
	r.pendingExport = ""
	r.writeExport(path)
}

func (r *REPL) listSaved(ctx context.Context) {
	cards, err := r.saved.List(ctx)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && len(cards) == 0) {
		r.notice(session.NoticeNoSavedCards)
		return
	}
	if err != nil {
		r.notice(session.UserMessage(session.OpLoad, err))
		return
	}
	for _, c := range cards {
		created := "unknown"
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Format(time.DateTime)
		}
		fmt.Fprintf(r.out, "#%d  %s  (%s)\n", c.ID, c.Question, created)
	}
}

func (r *REPL) deleteSaved(ctx context.Context, args []string) {
	if len(args) != 1 {
		r.notifier.Notify(session.LevelWarning, "Usage: delete ID")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		r.notifier.Notify(session.LevelWarning, "The card id must be a positive number.")
		return
	}
	msg, err := r.saved.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		r.notifier.Notify(session.LevelWarning, "That saved card does not exist.")
		return
	}
	if err != nil {
		r.notice(session.UserMessage(session.OpSave, err))
		return
	}
	if msg == "" {
		msg = "Flashcard deleted."
	}
	r.notifier.Notify(session.LevelSuccess, msg)
}

func (r *REPL) clearSaved(ctx context.Context) {
	msg, err := r.saved.ClearAll(ctx)
	if err != nil {
		r.notice(session.UserMessage(session.OpSave, err))
		return
	}
	if msg == "" {
		msg = "All saved flashcards cleared."
	}
	r.notifier.Notify(session.LevelSuccess, msg)
}

// cardIndex parses a 1-based card number into a deck index.
func (r *REPL) cardIndex(args []string) (int, bool) {
	if len(args) != 1 {
		r.notifier.Notify(session.LevelWarning, "Give a card number, e.g. 'flip 2'.")
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	total := r.ctrl.View().Total
	if err != nil || n < 1 || n > total {
		r.notice(session.UserMessage(session.OpFlip, domain.ErrIndexOutOfRange))
		return 0, false
	}
	return n - 1, true
}

func (r *REPL) notice(n session.Notice) {
	r.notifier.Notify(n.Level, n.Text)
}
