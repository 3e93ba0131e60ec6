package scoring

import "math"

// counts up to exactLimit are rounded in integer arithmetic without overflow
const exactLimit = math.MaxInt64 / 40000

// ComputeRate returns likes as a percentage of impressions, rounded to two
// decimals half away from zero. With no impressions the rate is 0.
func ComputeRate(likes, impressions int64) float64 {
	if impressions <= 0 {
		return 0.0
	}
	if likes < 0 {
		likes = 0
	}

	if likes <= exactLimit && impressions <= exactLimit {
		// hundredths of a percent: round(likes*10000/impressions)
		q := (likes*20000 + impressions) / (2 * impressions)
		return float64(q) / 100
	}
	return math.Round(float64(likes)*10000/float64(impressions)) / 100
}
