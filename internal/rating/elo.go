package rating

import "math"

const (
	// MinRating and MaxRating bound every rating on the internal scale.
	MinRating = 0.0
	MaxRating = 10.0

	// DefaultRating is used for an unrated item entering a comparison.
	DefaultRating = 5.0

	// DefaultK is much smaller than classic Elo's 32 because the whole scale
	// spans only 10 points.
	DefaultK = 0.5
)

// Winner tags the side that won a comparison.
type Winner string

const (
	WinnerA Winner = "A"
	WinnerB Winner = "B"
)

// Valid reports whether w is one of the two known sides.
func (w Winner) Valid() bool {
	return w == WinnerA || w == WinnerB
}

// EloResult holds the updated ratings of both sides of a comparison.
type EloResult struct {
	NewRatingA float64
	NewRatingB float64
}

// CalculateElo maps both 0-10 ratings onto the 200-2200 range, applies the
// logistic expected-score update and maps the results back, clamped to [0,10].
func CalculateElo(ratingA, ratingB float64, winner Winner, k float64) EloResult {
	scaledA := ratingA*200 + 200
	scaledB := ratingB*200 + 200

	expectedA := 1 / (1 + math.Pow(10, (scaledB-scaledA)/400))
	expectedB := 1 / (1 + math.Pow(10, (scaledA-scaledB)/400))

	var scoreA, scoreB float64
	if winner == WinnerA {
		scoreA = 1
	} else {
		scoreB = 1
	}

	newScaledA := scaledA + k*200*(scoreA-expectedA)
	newScaledB := scaledB + k*200*(scoreB-expectedB)

	return EloResult{
		NewRatingA: Clamp((newScaledA - 200) / 200),
		NewRatingB: Clamp((newScaledB - 200) / 200),
	}
}

// Clamp bounds r to [MinRating, MaxRating].
func Clamp(r float64) float64 {
	return math.Max(MinRating, math.Min(MaxRating, r))
}

// Round rounds r to one decimal place, the precision ratings are stored with.
func Round(r float64) float64 {
	return math.Round(r*10) / 10
}

// Normalize clamps and rounds r. Every rating written to the library goes
// through it.
func Normalize(r float64) float64 {
	return Round(Clamp(r))
}

// OrDefault returns the rating or DefaultRating when r is nil.
func OrDefault(r *float64) float64 {
	if r == nil {
		return DefaultRating
	}
	return *r
}
