package rating

import (
	"errors"
	"math/rand/v2"
)

// ErrInsufficientItems is returned when the pool cannot form a pair.
var ErrInsufficientItems = errors.New("need at least 2 items to compare")

// Item is a ratable entry of the user's library as seen by the engine.
type Item struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Poster string   `json:"poster,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
}

// Rated reports whether the item carries a rating.
func (i Item) Rated() bool {
	return i.Rating != nil
}

// Pair is the two items currently under comparison.
type Pair struct {
	A Item `json:"a"`
	B Item `json:"b"`
}

// SelectPair picks the next two items to compare. Unrated items are favoured
// so that they receive an initial rating before rated ones get refined.
func SelectPair(pool []Item, rng *rand.Rand) (Pair, error) {
	if len(pool) < 2 {
		return Pair{}, ErrInsufficientItems
	}

	var unrated, rated []Item
	for _, it := range pool {
		if it.Rated() {
			rated = append(rated, it)
		} else {
			unrated = append(unrated, it)
		}
	}

	switch {
	case len(unrated) >= 2:
		shuffled := shuffle(unrated, rng)
		return Pair{A: shuffled[0], B: shuffled[1]}, nil
	case len(unrated) == 1 && len(rated) >= 1:
		return Pair{A: unrated[0], B: rated[rng.IntN(len(rated))]}, nil
	default:
		shuffled := shuffle(pool, rng)
		return Pair{A: shuffled[0], B: shuffled[1]}, nil
	}
}

func shuffle(items []Item, rng *rand.Rand) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
