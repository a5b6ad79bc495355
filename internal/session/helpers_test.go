package session_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/study-buddy/internal/events"
	"github.com/phrazzld/study-buddy/internal/mocks"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/session"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingEmitter collects emitted event types.
type recordingEmitter struct {
	mu    sync.Mutex
	types []string
}

func (r *recordingEmitter) EmitEvent(_ context.Context, e *events.SessionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.Type)
	return nil
}

func (r *recordingEmitter) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

type fixture struct {
	ctrl     *session.Controller
	gen      *mocks.MockGenerator
	library  *mocks.MockLibrary
	payments *mocks.MockPaymentGateway
	storage  *mocks.MockStorage
	events   *recordingEmitter
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStorage(t, mocks.NewMockStorage(nil))
}

func newFixtureWithStorage(t *testing.T, storage *mocks.MockStorage) *fixture {
	t.Helper()
	log, _ := logger.GetTestLogger(t)

	f := &fixture{
		gen:      mocks.NewMockGeneratorWithCards(mocks.SampleCards(4)...),
		library:  &mocks.MockLibrary{},
		payments: mocks.NewApprovingGateway(),
		storage:  storage,
		events:   &recordingEmitter{},
		clock:    &fakeClock{now: baseTime},
	}
	ctrl, err := session.NewController(session.Deps{
		Generator: f.gen,
		Library:   f.library,
		Payments:  f.payments,
		Storage:   f.storage,
		Events:    f.events,
		Logger:    log,
		Now:       f.clock.Now,
		Rand:      rand.New(rand.NewPCG(1, 2)),
		SessionID: "test-session",
	}, session.DefaultOptions)
	require.NoError(t, err)
	f.ctrl = ctrl
	return f
}

// longNotes is comfortably above the minimum notes length.
const longNotes = "Photosynthesis converts light energy into chemical energy stored in glucose molecules."
