package rating

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
)

var (
	ErrSessionFinished = errors.New("versus session is finished")
	ErrSessionBusy     = errors.New("rating update already in progress")
	ErrInvalidWinner   = errors.New("winner must be A or B")
)

// State is the phase a versus session is in.
type State string

const (
	StateSelecting  State = "selecting"
	StatePresenting State = "presenting"
	StateUpdating   State = "updating"
	StateFinished   State = "finished"
	StateEmpty      State = "empty"
)

// Store persists a single rating. Implementations must be idempotent; the
// session never retries on its own.
type Store interface {
	UpdateRating(ctx context.Context, id int64, rating float64) error
}

// RankingChange records how one item moved during a session. OldRating and
// OldPosition are the values from the first time the item was compared.
type RankingChange struct {
	Item        Item    `json:"item"`
	OldRating   float64 `json:"old_rating"`
	NewRating   float64 `json:"new_rating"`
	OldPosition int     `json:"old_position"`
	NewPosition int     `json:"new_position"`
}

// Summary is what a finished session hands back.
type Summary struct {
	Comparisons int             `json:"comparisons"`
	Changes     []RankingChange `json:"changes"`
}

// Session drives one versus run over a fixed pool of items.
type Session struct {
	mu          sync.Mutex
	store       Store
	rng         *rand.Rand
	k           float64
	pool        []Item
	pair        Pair
	state       State
	comparisons int
	changes     map[int64]*RankingChange
	order       []int64
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithK overrides the Elo sensitivity constant.
func WithK(k float64) SessionOption {
	return func(s *Session) { s.k = k }
}

// NewSession copies the pool and selects the first pair. A nil rng falls back
// to a randomly seeded source.
func NewSession(pool []Item, store Store, rng *rand.Rand, opts ...SessionOption) *Session {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &Session{
		store:   store,
		rng:     rng,
		k:       DefaultK,
		pool:    slices.Clone(pool),
		changes: make(map[int64]*RankingChange),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.selectNext()
	return s
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Comparisons returns how many choices have been applied so far.
func (s *Session) Comparisons() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comparisons
}

// CurrentPair returns the pair awaiting a decision.
func (s *Session) CurrentPair() (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateEmpty:
		return Pair{}, ErrInsufficientItems
	case StateFinished:
		return Pair{}, ErrSessionFinished
	}
	return s.pair, nil
}

// Skip discards the current pair without touching any rating.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPresenting(); err != nil {
		return err
	}
	s.selectNext()
	return nil
}

// Choose applies the decision to the current pair. Both ratings are written
// concurrently; a failed write is returned without undoing the other one and
// the same pair stays on screen.
func (s *Session) Choose(ctx context.Context, winner Winner) error {
	if !winner.Valid() {
		return ErrInvalidWinner
	}

	s.mu.Lock()
	if err := s.checkPresenting(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = StateUpdating
	pair := s.pair
	s.mu.Unlock()

	oldA := OrDefault(pair.A.Rating)
	oldB := OrDefault(pair.B.Rating)
	res := CalculateElo(oldA, oldB, winner, s.k)
	newA := Round(res.NewRatingA)
	newB := Round(res.NewRatingB)

	var errA, errB error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errA = s.store.UpdateRating(ctx, pair.A.ID, newA)
	}()
	go func() {
		defer wg.Done()
		errB = s.store.UpdateRating(ctx, pair.B.ID, newB)
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	before := slices.Clone(s.pool)
	if errA == nil {
		s.record(pair.A, oldA, newA, before)
		s.apply(pair.A.ID, newA)
	}
	if errB == nil {
		s.record(pair.B, oldB, newB, before)
		s.apply(pair.B.ID, newB)
	}

	if err := errors.Join(errA, errB); err != nil {
		s.state = StatePresenting
		return fmt.Errorf("update ratings: %w", err)
	}

	s.comparisons++
	s.selectNext()
	return nil
}

// Finish ends the session and returns the ranking changes ordered by their
// new position.
func (s *Session) Finish() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUpdating {
		return Summary{}, ErrSessionBusy
	}
	s.state = StateFinished

	changes := make([]RankingChange, 0, len(s.order))
	for _, id := range s.order {
		changes = append(changes, *s.changes[id])
	}
	slices.SortStableFunc(changes, func(a, b RankingChange) int {
		return a.NewPosition - b.NewPosition
	})

	return Summary{Comparisons: s.comparisons, Changes: changes}, nil
}

func (s *Session) checkPresenting() error {
	switch s.state {
	case StateFinished:
		return ErrSessionFinished
	case StateEmpty:
		return ErrInsufficientItems
	case StateUpdating:
		return ErrSessionBusy
	}
	return nil
}

// selectNext must be called with mu held.
func (s *Session) selectNext() {
	s.state = StateSelecting
	pair, err := SelectPair(s.pool, s.rng)
	if err != nil {
		s.pair = Pair{}
		s.state = StateEmpty
		return
	}
	s.pair = pair
	s.state = StatePresenting
}

func (s *Session) record(item Item, oldRating, newRating float64, before []Item) {
	oldPos := Position(item.ID, before)
	newPos := Position(item.ID, withRating(before, item.ID, newRating))

	nr := newRating
	item.Rating = &nr

	if existing, ok := s.changes[item.ID]; ok {
		existing.Item = item
		existing.NewRating = newRating
		existing.NewPosition = newPos
		return
	}
	s.changes[item.ID] = &RankingChange{
		Item:        item,
		OldRating:   oldRating,
		NewRating:   newRating,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
	s.order = append(s.order, item.ID)
}

func (s *Session) apply(id int64, r float64) {
	for i := range s.pool {
		if s.pool[i].ID == id {
			v := r
			s.pool[i].Rating = &v
			return
		}
	}
}

// Position is the 1-based rank of id by descending rating among the rated
// items of pool. Unrated or missing items rank last at len(pool)+1.
func Position(id int64, pool []Item) int {
	rated := make([]Item, 0, len(pool))
	for _, it := range pool {
		if it.Rated() {
			rated = append(rated, it)
		}
	}
	slices.SortStableFunc(rated, func(a, b Item) int {
		switch {
		case *a.Rating > *b.Rating:
			return -1
		case *a.Rating < *b.Rating:
			return 1
		}
		return 0
	})
	for i, it := range rated {
		if it.ID == id {
			return i + 1
		}
	}
	return len(pool) + 1
}

func withRating(pool []Item, id int64, r float64) []Item {
	out := slices.Clone(pool)
	for i := range out {
		if out[i].ID == id {
			v := r
			out[i].Rating = &v
		}
	}
	return out
}
