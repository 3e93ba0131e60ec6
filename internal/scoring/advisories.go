package scoring

import "github.com/spacesedan/kyokan/internal/models"

const (
	highLikesThreshold        = 10_000
	wideReachThreshold        = 1_000_000
	fewLikesThreshold         = 1_000
	smallAudienceThreshold    = 1_000
	highRateThreshold         = 10.0
	lowRateThreshold          = 1.0
	weakRateThreshold         = 0.5
	weakLikesThreshold        = 10
	controversyReachThreshold = 100_000
	weakSignalsForAdvisory    = 2
)

// Advisory is a supplementary remark appended after the tier remark.
type Advisory struct {
	Code   string
	Remark string
}

var (
	AdvisoryHighLikesLowRate = Advisory{
		Code:   "high_likes_low_rate",
		Remark: "いいねの数自体は多いものの、表示回数に対する割合は低めです。",
	}
	AdvisoryWideReachFewLikes = Advisory{
		Code:   "wide_reach_few_likes",
		Remark: "100万回以上表示されていますが、いいねは伸びていません。",
	}
	AdvisorySmallSample = Advisory{
		Code:   "small_sample",
		Remark: "共感率は高いですが、表示回数が少ないため参考値です。",
	}
	AdvisoryWeakSignals = Advisory{
		Code:   "weak_signals",
		Remark: "表示回数・いいね数・共感率のいずれも控えめです。",
	}
	AdvisoryControversy = Advisory{
		Code:   "controversy",
		Remark: "拡散の多くは賛同ではなく反発や話題性によるものかもしれません。",
	}
)

// Advise returns every advisory whose condition holds, in a fixed order.
func Advise(counts models.EngagementCounts, rate float64, category models.Category) []Advisory {
	var out []Advisory

	if counts.Likes > highLikesThreshold && rate < lowRateThreshold {
		out = append(out, AdvisoryHighLikesLowRate)
	}
	if counts.Impressions > wideReachThreshold && counts.Likes < fewLikesThreshold {
		out = append(out, AdvisoryWideReachFewLikes)
	}
	if rate >= highRateThreshold && counts.Impressions < smallAudienceThreshold {
		out = append(out, AdvisorySmallSample)
	}
	if counts.Impressions > 0 && weakSignals(counts, rate) >= weakSignalsForAdvisory {
		out = append(out, AdvisoryWeakSignals)
	}
	if (category == models.CategoryInflammatory || category == models.CategoryPolitical) &&
		rate < lowRateThreshold && counts.Impressions > controversyReachThreshold {
		out = append(out, AdvisoryControversy)
	}
	return out
}

func weakSignals(counts models.EngagementCounts, rate float64) int {
	n := 0
	if rate < weakRateThreshold {
		n++
	}
	if counts.Impressions < smallAudienceThreshold {
		n++
	}
	if counts.Likes < weakLikesThreshold {
		n++
	}
	return n
}
