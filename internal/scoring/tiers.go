package scoring

import "math"

// Tier is one band of a classification table.
type Tier struct {
	Band   int
	Label  string
	Remark string
}

type band struct {
	lower, upper                   float64
	lowerInclusive, upperInclusive bool
}

func (b band) contains(rate float64) bool {
	above := rate > b.lower || (b.lowerInclusive && rate == b.lower)
	below := rate < b.upper || (b.upperInclusive && rate == b.upper)
	return above && below
}

// bands shared by every table, ascending
var bands = []band{
	{0, 0, true, true},
	{0, 0.1, false, false},
	{0.1, 0.5, true, false},
	{0.5, 1, true, false},
	{1, 2, true, false},
	{2, 4, true, false},
	{4, 7, true, false},
	{7, 10, true, false},
	{10, math.Inf(1), true, true},
}

// Table pairs every band with its wording.
type Table struct {
	Name  string
	Tiers []Tier
}

var StandardTable = Table{
	Name: "standard",
	Tiers: []Tier{
		{0, "no one resonated", "これは…誰にも共感されていません。"},
		{1, "only a tiny fraction reacted", "ごく一部の人だけが反応しています。"},
		{2, "a few were touched", "少数の人の心には触れたようです。"},
		{3, "struck a chord with some", "一部の人には刺さっています。"},
		{4, "mildly resonant", "ほどほどに共感されています。"},
		{5, "gathered some resonance", "それなりに共感を集めています。"},
		{6, "fairly well resonated", "かなり共感されています。"},
		{7, "strongly resonant", "強く共感されています。ここまで響く投稿はそう多くありません。"},
		{8, "broadly and deeply resonant", "この投稿は極めて高い共感を得ています。内容が多くの人に深く届いた結果といえるでしょう。"},
	},
}

// PoliticalTable weighs how far a political post travelled against how much
// agreement it earned along the way.
var PoliticalTable = Table{
	Name: "political",
	Tiers: []Tier{
		{0, "seen but endorsed by no one", "見られてはいますが、誰の支持も得られていません。"},
		{1, "reach far ahead of agreement", "届いた範囲に対して、賛同はほぼありません。"},
		{2, "agreement from a narrow few", "ごく狭い層からの賛同にとどまっています。"},
		{3, "agreement within the core audience", "賛同は主に既存の支持層の内側にとどまっています。"},
		{4, "support starting to spread past the core", "支持層の外にも少しずつ届き始めています。"},
		{5, "support spreading beyond the core", "支持層を越えて賛同が広がりつつあります。"},
		{6, "broad agreement across the audience", "立場を越えて幅広く賛同を得ています。"},
		{7, "strong endorsement well beyond supporters", "支持層を大きく越えて強い賛同を集めています。"},
		{8, "both broad reach and deep endorsement", "広く届き、かつ深く支持された投稿です。"},
	},
}

// Lookup returns the tier for rate. Rates below zero or NaN fall into the
// first band, so every input maps to exactly one tier.
func (t Table) Lookup(rate float64) Tier {
	if math.IsNaN(rate) || rate < 0 {
		rate = 0
	}
	for i, b := range bands {
		if b.contains(rate) {
			return t.Tiers[i]
		}
	}
	return t.Tiers[len(t.Tiers)-1]
}
