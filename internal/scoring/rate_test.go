package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		likes, impression int64
		want              float64
	}{
		{"typical", 500, 20000, 2.5},
		{"sub one percent", 15000, 2000000, 0.75},
		{"above one hundred percent", 300, 100, 300},
		{"half rounds away from zero", 1, 20000, 0.01},
		{"just below half rounds down", 1, 20001, 0},
		{"repeating fraction", 1, 3, 33.33},
		{"two thirds", 2, 3, 66.67},
		{"no likes", 0, 1000, 0},
		{"huge counts", math.MaxInt64 / 2, math.MaxInt64, 50},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ComputeRate(tt.likes, tt.impression))
		})
	}
}

func TestComputeRate_ZeroImpressions(t *testing.T) {
	t.Parallel()

	for _, likes := range []int64{0, 1, 500, 10_001, math.MaxInt64} {
		assert.Equal(t, 0.0, ComputeRate(likes, 0), "likes=%d", likes)
	}
}

func TestComputeRate_Monotonic(t *testing.T) {
	t.Parallel()

	impressions := []int64{1, 7, 100, 999, 20000, 1_000_000}
	for _, imp := range impressions {
		prev := ComputeRate(1, imp)
		for likes := int64(2); likes <= 2000; likes += 37 {
			got := ComputeRate(likes, imp)
			assert.GreaterOrEqual(t, got, prev, "likes=%d impressions=%d", likes, imp)
			prev = got
		}
	}

	for _, likes := range []int64{1, 50, 15000} {
		prev := ComputeRate(likes, 1)
		for imp := int64(2); imp <= 5_000_000; imp = imp*3 + 1 {
			got := ComputeRate(likes, imp)
			assert.LessOrEqual(t, got, prev, "likes=%d impressions=%d", likes, imp)
			prev = got
		}
	}
}
