package scoring

import (
	"fmt"
	"strings"

	"github.com/spacesedan/kyokan/internal/models"
)

// TableVariant selects how the category influences tier wording.
type TableVariant string

const (
	// VariantStandard always uses StandardTable.
	VariantStandard TableVariant = "standard"
	// VariantCategory uses PoliticalTable for political posts.
	VariantCategory TableVariant = "category"
)

func ParseTableVariant(s string) (TableVariant, error) {
	switch v := TableVariant(strings.ToLower(strings.TrimSpace(s))); v {
	case VariantStandard, VariantCategory:
		return v, nil
	default:
		return "", fmt.Errorf("unknown tier table %q", s)
	}
}

// TableFor returns the table that applies to category under variant.
func TableFor(variant TableVariant, category models.Category) Table {
	if variant == VariantCategory && category == models.CategoryPolitical {
		return PoliticalTable
	}
	return StandardTable
}

// Classify maps a rate to its tier.
func Classify(rate float64, category models.Category, variant TableVariant) Tier {
	return TableFor(variant, category).Lookup(rate)
}

// Classification is the scored outcome for one post.
type Classification struct {
	Rate       float64
	Tier       Tier
	Advisories []Advisory
}

// Comment joins the tier remark and any advisories.
func (c Classification) Comment() string {
	parts := make([]string, 0, len(c.Advisories)+1)
	parts = append(parts, c.Tier.Remark)
	for _, a := range c.Advisories {
		parts = append(parts, a.Remark)
	}
	return strings.Join(parts, " ")
}

func (c Classification) AdvisoryCodes() []string {
	if len(c.Advisories) == 0 {
		return nil
	}
	codes := make([]string, len(c.Advisories))
	for i, a := range c.Advisories {
		codes[i] = a.Code
	}
	return codes
}

// Evaluate computes the rate for counts and classifies it.
func Evaluate(counts models.EngagementCounts, category models.Category, variant TableVariant) Classification {
	rate := ComputeRate(counts.Likes, counts.Impressions)
	return Classification{
		Rate:       rate,
		Tier:       Classify(rate, category, variant),
		Advisories: Advise(counts, rate, category),
	}
}
