package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateElo_EqualRatings(t *testing.T) {
	res := CalculateElo(5, 5, WinnerA, DefaultK)

	assert.Greater(t, res.NewRatingA, 5.0)
	assert.Less(t, res.NewRatingB, 5.0)
	assert.InDelta(t, 5.0, res.NewRatingA, 0.5)
	assert.InDelta(t, 5.0, res.NewRatingB, 0.5)
	assert.InDelta(t, 5.25, res.NewRatingA, 1e-9)
	assert.InDelta(t, 4.75, res.NewRatingB, 1e-9)
}

func TestCalculateElo_StaysInRange(t *testing.T) {
	for a := 0.0; a <= 10.0; a += 0.5 {
		for b := 0.0; b <= 10.0; b += 0.5 {
			for _, w := range []Winner{WinnerA, WinnerB} {
				res := CalculateElo(a, b, w, DefaultK)
				assert.GreaterOrEqual(t, res.NewRatingA, MinRating)
				assert.LessOrEqual(t, res.NewRatingA, MaxRating)
				assert.GreaterOrEqual(t, res.NewRatingB, MinRating)
				assert.LessOrEqual(t, res.NewRatingB, MaxRating)
			}
		}
	}
}

func TestCalculateElo_Symmetry(t *testing.T) {
	cases := [][2]float64{{5, 5}, {3.2, 8.1}, {0, 10}, {7.7, 7.6}, {9.9, 0.4}}
	for _, c := range cases {
		a, b := c[0], c[1]

		forward := CalculateElo(a, b, WinnerA, DefaultK)
		mirrored := CalculateElo(b, a, WinnerB, DefaultK)

		assert.InDelta(t, forward.NewRatingA, mirrored.NewRatingB, 1e-9)
		assert.InDelta(t, forward.NewRatingB, mirrored.NewRatingA, 1e-9)
	}
}

func TestCalculateElo_WinnerNeverLosesOnEqualRatings(t *testing.T) {
	for r := 0.0; r <= 10.0; r += 1 {
		res := CalculateElo(r, r, WinnerB, DefaultK)
		assert.GreaterOrEqual(t, res.NewRatingB, r)
		assert.LessOrEqual(t, res.NewRatingA, r)
	}
}

func TestCalculateElo_ClampsAtBounds(t *testing.T) {
	res := CalculateElo(10, 10, WinnerA, DefaultK)
	assert.Equal(t, 10.0, res.NewRatingA)

	res = CalculateElo(0, 0, WinnerA, DefaultK)
	assert.Equal(t, 0.0, res.NewRatingB)
}

func TestCalculateElo_UpsetMovesMore(t *testing.T) {
	upset := CalculateElo(2, 8, WinnerA, DefaultK)
	expected := CalculateElo(8, 2, WinnerA, DefaultK)

	assert.Greater(t, upset.NewRatingA-2, expected.NewRatingA-8)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{7.33, 7.3},
		{6.66, 6.7},
		{-1, 0},
		{10.04, 10},
		{12, 10},
		{4.999, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%v)", tt.in)
	}
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, DefaultRating, OrDefault(nil))
	r := 0.0
	assert.Equal(t, 0.0, OrDefault(&r))
}
