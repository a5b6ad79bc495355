package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/events"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
)

// Deps are the collaborators of a Controller. Events, Now and Rand are optional.
type Deps struct {
	Generator Generator
	Library   Library
	Payments  PaymentGateway
	Storage   Storage
	Events    events.EventEmitter
	Logger    *slog.Logger
	Now       func() time.Time
	Rand      *rand.Rand
	// SessionID tags emitted events.
	SessionID string
}

// Controller drives one study session.
type Controller struct {
	generator Generator
	library   Library
	payments  PaymentGateway
	storage   Storage
	events    events.EventEmitter
	logger    *slog.Logger
	now       func() time.Time
	rng       *rand.Rand
	sessionID string
	opts      Options

	state *domain.SessionState
}

// NewController creates a Controller with an empty deck.
func NewController(deps Deps, opts Options) (*Controller, error) {
	if deps.Generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if deps.Library == nil {
		return nil, errors.New("library cannot be nil")
	}
	if deps.Payments == nil {
		return nil, errors.New("payment gateway cannot be nil")
	}
	if deps.Storage == nil {
		return nil, errors.New("storage cannot be nil")
	}
	if deps.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	c := &Controller{
		generator: deps.Generator,
		library:   deps.Library,
		payments:  deps.Payments,
		storage:   deps.Storage,
		events:    deps.Events,
		logger:    deps.Logger.With("component", "session_controller"),
		now:       deps.Now,
		rng:       deps.Rand,
		sessionID: deps.SessionID,
		opts:      opts.withDefaults(),
		state:     domain.NewSessionState(),
	}
	if c.events == nil {
		c.events = events.NopEmitter{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.sessionID != "" {
		c.logger = c.logger.With("session_id", c.sessionID)
	}
	return c, nil
}

// Deck returns a copy of the current deck.
func (c *Controller) Deck() *domain.Deck {
	return c.state.Deck.Clone()
}

// Review returns a copy of the current review state.
func (c *Controller) Review() domain.ReviewState {
	return c.state.Review.Clone()
}

// Generate validates notes locally, asks the generator for cards and, when at
// least one usable card comes back, replaces the deck with it.
func (c *Controller) Generate(ctx context.Context, notes string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return nil, domain.ErrNotesEmpty
	}
	if n := utf8.RuneCountInString(trimmed); n < c.opts.MinNotesLength {
		return nil, fmt.Errorf("%w: %d of %d characters", domain.ErrNotesTooShort, n, c.opts.MinNotesLength)
	}

	cards, err := c.generator.Generate(ctx, trimmed)
	if err != nil {
		log.Warn("flashcard generation failed", "error", err)
		return nil, err
	}

	usable := domain.UsableCards(cards)
	if len(usable) == 0 {
		log.Warn("generator returned no usable cards", "returned", len(cards))
		return nil, domain.ErrEmptyResult
	}

	deck := domain.NewDeck(usable, false)
	c.state.ReplaceDeck(deck)
	log.Info("deck generated", "cards", len(usable), "dropped", len(cards)-len(usable))
	c.emit(ctx, events.TypeDeckGenerated, map[string]int{"count": len(usable)})

	return deck.Clone(), nil
}

// Load fetches the saved cards. A 404 or an empty library returns (nil, nil)
// and leaves the current deck untouched.
func (c *Controller) Load(ctx context.Context) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	saved, err := c.library.List(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug("no saved cards endpoint data", "error", err)
		return nil, nil
	}
	if err != nil {
		log.Warn("loading saved cards failed", "error", err)
		return nil, err
	}

	cards := make([]domain.Card, 0, len(saved))
	for _, s := range saved {
		cards = append(cards, s.Card())
	}
	cards = domain.UsableCards(cards)
	if len(cards) == 0 {
		return nil, nil
	}

	deck := domain.NewDeck(cards, true)
	c.state.ReplaceDeck(deck)
	log.Info("saved deck loaded", "cards", len(cards))
	c.emit(ctx, events.TypeDeckLoaded, map[string]int{"count": len(cards)})

	return deck.Clone(), nil
}

// Flip records that the card at index was revealed. Out-of-range indices are
// ignored. Flipping never removes an index from the reviewed set.
func (c *Controller) Flip(index int) domain.ReviewState {
	if err := c.state.Review.MarkReviewed(index); err != nil {
		c.logger.Debug("flip ignored", "index", index, "error", err)
		return c.Review()
	}
	c.emit(context.Background(), events.TypeCardFlipped, map[string]int{
		"index":    index,
		"reviewed": c.state.Review.Count(),
	})
	return c.Review()
}

// Shuffle reorders the deck uniformly at random and resets review progress.
// Persisted is unchanged. An empty deck is left alone.
func (c *Controller) Shuffle() *domain.Deck {
	if c.state.Deck.Empty() {
		return c.Deck()
	}
	c.state.Deck.Shuffle(c.rng)
	c.state.Review = domain.NewReviewState(c.state.Deck.Len())
	c.emit(context.Background(), events.TypeDeckShuffled, nil)
	return c.Deck()
}

// ResetProgress clears the reviewed set.
func (c *Controller) ResetProgress() domain.ReviewState {
	c.state.Review.Reset()
	c.emit(context.Background(), events.TypeProgressReset, nil)
	return c.Review()
}

// Save persists the card at index to the library and returns the library's
// message, which may be empty.
func (c *Controller) Save(ctx context.Context, index int) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if index < 0 || index >= c.state.Deck.Len() {
		return "", fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, index)
	}
	card := c.state.Deck.Cards[index]

	msg, err := c.library.Save(ctx, card)
	if err != nil {
		log.Warn("saving card failed", "index", index, "error", err)
		return "", err
	}

	c.state.MarkSaved(card)
	c.emit(ctx, events.TypeCardSaved, map[string]int{"index": index})
	return msg, nil
}

// IsSaved reports whether the card at index was saved in this presentation.
func (c *Controller) IsSaved(index int) bool {
	if index < 0 || index >= c.state.Deck.Len() {
		return false
	}
	return c.state.IsSaved(c.state.Deck.Cards[index])
}

func (c *Controller) emit(ctx context.Context, eventType string, payload any) {
	event, err := events.NewSessionEvent(eventType, c.sessionID, payload)
	if err != nil {
		c.logger.Error("failed to build event", "event_type", eventType, "error", err)
		return
	}
	if err := c.events.EmitEvent(ctx, event); err != nil {
		c.logger.Warn("event handler failed", "event_type", eventType, "error", err)
	}
}
