package rating

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

func TestSelectPair_AllUnrated(t *testing.T) {
	pool := []Item{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	rng := seeded()

	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		pair, err := SelectPair(pool, rng)
		require.NoError(t, err)
		assert.NotEqual(t, pair.A.ID, pair.B.ID)
		assert.False(t, pair.A.Rated())
		assert.False(t, pair.B.Rated())
		seen[pair.A.ID] = true
		seen[pair.B.ID] = true
	}
	assert.Len(t, seen, 4)
}

func TestSelectPair_UnratedPreferredOverRated(t *testing.T) {
	pool := []Item{
		{ID: 1, Rating: ptr(6)},
		{ID: 2},
		{ID: 3, Rating: ptr(4)},
		{ID: 4},
		{ID: 5, Rating: ptr(9)},
	}
	rng := seeded()

	for i := 0; i < 500; i++ {
		pair, err := SelectPair(pool, rng)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{2, 4}, []int64{pair.A.ID, pair.B.ID})
	}
}

func TestSelectPair_SingleUnratedAlwaysIncluded(t *testing.T) {
	pool := []Item{
		{ID: 1, Rating: ptr(6)},
		{ID: 2, Rating: ptr(3)},
		{ID: 3},
		{ID: 4, Rating: ptr(8.5)},
	}
	rng := seeded()

	partners := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		pair, err := SelectPair(pool, rng)
		require.NoError(t, err)
		assert.Equal(t, int64(3), pair.A.ID)
		assert.True(t, pair.B.Rated())
		partners[pair.B.ID] = true
	}
	assert.Len(t, partners, 3)
}

func TestSelectPair_AllRatedFallback(t *testing.T) {
	pool := []Item{
		{ID: 1, Rating: ptr(6)},
		{ID: 2, Rating: ptr(3)},
		{ID: 3, Rating: ptr(8)},
	}
	rng := seeded()

	for i := 0; i < 200; i++ {
		pair, err := SelectPair(pool, rng)
		require.NoError(t, err)
		assert.NotEqual(t, pair.A.ID, pair.B.ID)
	}
}

func TestSelectPair_InsufficientItems(t *testing.T) {
	_, err := SelectPair(nil, seeded())
	assert.ErrorIs(t, err, ErrInsufficientItems)

	_, err = SelectPair([]Item{{ID: 1}}, seeded())
	assert.ErrorIs(t, err, ErrInsufficientItems)
}

func TestSelectPair_DeterministicWithSeed(t *testing.T) {
	pool := []Item{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}

	first, err := SelectPair(pool, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	second, err := SelectPair(pool, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSelectPair_DoesNotReorderPool(t *testing.T) {
	pool := []Item{{ID: 1}, {ID: 2}, {ID: 3}}
	_, err := SelectPair(pool, seeded())
	require.NoError(t, err)
	assert.Equal(t, []Item{{ID: 1}, {ID: 2}, {ID: 3}}, pool)
}
