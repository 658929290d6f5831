package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediahub/internal/auth"
	"mediahub/internal/catalog"
	"mediahub/internal/metrics"
	"mediahub/internal/rating"
)

var ErrVersusNotFound = errors.New("versus session not found")

// idleSessionRetention bounds how long an untouched session is kept.
const idleSessionRetention = 2 * time.Hour

// VersusState is what a client needs to render the current step.
type VersusState struct {
	ID          string       `json:"id"`
	Kind        catalog.Kind `json:"kind"`
	State       rating.State `json:"state"`
	Pair        *rating.Pair `json:"pair,omitempty"`
	Comparisons int          `json:"comparisons"`
}

type VersusService interface {
	Start(ctx context.Context, session auth.Context, kind catalog.Kind) (VersusState, error)
	Get(ctx context.Context, session auth.Context, id string) (VersusState, error)
	Choose(ctx context.Context, session auth.Context, id string, winner rating.Winner) (VersusState, error)
	Skip(ctx context.Context, session auth.Context, id string) (VersusState, error)
	Finish(ctx context.Context, session auth.Context, id string) (rating.Summary, error)
}

type versusRun struct {
	id        string
	owner     string
	kind      catalog.Kind
	session   *rating.Session
	startedAt time.Time
	lastSeen  time.Time
}

type versusService struct {
	library LibraryService
	logger  *slog.Logger
	newRNG  func() *rand.Rand
	now     func() time.Time

	mu   sync.Mutex
	runs map[string]*versusRun
}

// VersusOption customises the versus service.
type VersusOption func(*versusService)

// WithRandSource makes pair selection deterministic; used by tests.
func WithRandSource(newRNG func() *rand.Rand) VersusOption {
	return func(s *versusService) { s.newRNG = newRNG }
}

func NewVersusService(lib LibraryService, logger *slog.Logger, opts ...VersusOption) VersusService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &versusService{
		library: lib,
		logger:  logger,
		newRNG:  func() *rand.Rand { return nil },
		now:     time.Now,
		runs:    make(map[string]*versusRun),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds a session over the user's rated list of kind. Fewer than two
// items yields rating.ErrInsufficientItems and no session. A new session
// replaces any the user still had open.
func (s *versusService) Start(ctx context.Context, session auth.Context, kind catalog.Kind) (VersusState, error) {
	store, err := s.library.RatedStore(session, kind)
	if err != nil {
		return VersusState{}, err
	}
	pool, err := store.Pool(ctx)
	if err != nil {
		return VersusState{}, fmt.Errorf("load versus pool: %w", err)
	}

	rs := rating.NewSession(pool, store, s.newRNG())
	if rs.State() == rating.StateEmpty {
		return VersusState{}, rating.ErrInsufficientItems
	}

	now := s.now()
	run := &versusRun{
		id:        uuid.NewString(),
		owner:     session.UserID,
		kind:      kind,
		session:   rs,
		startedAt: now,
		lastSeen:  now,
	}
	s.mu.Lock()
	s.pruneLocked(session.UserID)
	s.runs[run.id] = run
	s.mu.Unlock()

	s.logger.Info("versus_session_started", "session_id", run.id, "user_id", session.UserID, "kind", kind, "pool", len(pool))
	return stateOf(run), nil
}

func (s *versusService) Get(_ context.Context, session auth.Context, id string) (VersusState, error) {
	run, err := s.lookup(session, id)
	if err != nil {
		return VersusState{}, err
	}
	return stateOf(run), nil
}

func (s *versusService) Choose(ctx context.Context, session auth.Context, id string, winner rating.Winner) (VersusState, error) {
	run, err := s.lookup(session, id)
	if err != nil {
		return VersusState{}, err
	}
	if err := run.session.Choose(ctx, winner); err != nil {
		return stateOf(run), err
	}
	metrics.VersusComparisons.WithLabelValues(string(run.kind)).Inc()
	return stateOf(run), nil
}

func (s *versusService) Skip(_ context.Context, session auth.Context, id string) (VersusState, error) {
	run, err := s.lookup(session, id)
	if err != nil {
		return VersusState{}, err
	}
	if err := run.session.Skip(); err != nil {
		return stateOf(run), err
	}
	return stateOf(run), nil
}

// Finish closes the session and forgets it.
func (s *versusService) Finish(_ context.Context, session auth.Context, id string) (rating.Summary, error) {
	run, err := s.lookup(session, id)
	if err != nil {
		return rating.Summary{}, err
	}
	summary, err := run.session.Finish()
	if err != nil {
		return rating.Summary{}, err
	}

	s.mu.Lock()
	delete(s.runs, id)
	s.mu.Unlock()

	s.logger.Info("versus_session_finished",
		"session_id", id,
		"comparisons", summary.Comparisons,
		"changed", len(summary.Changes),
		"duration", time.Since(run.startedAt).Round(time.Second),
	)
	return summary, nil
}

// lookup hides other users' sessions behind ErrVersusNotFound.
func (s *versusService) lookup(session auth.Context, id string) (*versusRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok || run.owner != session.UserID {
		return nil, ErrVersusNotFound
	}
	run.lastSeen = s.now()
	return run, nil
}

// pruneLocked drops owner's open sessions and any session idle past the
// retention window. s.mu must be held.
func (s *versusService) pruneLocked(owner string) {
	cutoff := s.now().Add(-idleSessionRetention)
	for id, run := range s.runs {
		if run.owner == owner || run.lastSeen.Before(cutoff) {
			delete(s.runs, id)
			s.logger.Debug("versus_session_discarded", "session_id", id, "user_id", run.owner)
		}
	}
}

func stateOf(run *versusRun) VersusState {
	st := VersusState{
		ID:          run.id,
		Kind:        run.kind,
		State:       run.session.State(),
		Comparisons: run.session.Comparisons(),
	}
	if pair, err := run.session.CurrentPair(); err == nil {
		st.Pair = &pair
	}
	return st
}
