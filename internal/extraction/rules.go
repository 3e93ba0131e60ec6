package extraction

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/spacesedan/kyokan/internal/models"
)

// Field names a counter the extractor knows how to fill.
type Field string

const (
	FieldLikes       Field = "likes"
	FieldImpressions Field = "impressions"
)

// Rule binds a counter to the labels that may introduce it in model output.
type Rule struct {
	Field    Field
	Synonyms []string
}

// DefaultRules is the grammar used when no other rules are supplied.
var DefaultRules = []Rule{
	{
		Field:    FieldLikes,
		Synonyms: []string{"いいね数", "いいね", "ライク数", "ライク", "likes", "like"},
	},
	{
		Field: FieldImpressions,
		Synonyms: []string{
			"インプレッション数", "インプレッション", "インプレ数", "インプレ",
			"表示回数", "impressions", "impression", "imps", "imp", "views",
		},
	},
}

const (
	// an ASCII label must not be the tail of a longer word ("reviews")
	labelBoundary = `(?:^|[^A-Za-z])`
	separator     = `\s*(?:[:=]|は)?\s*`
	approximately = `(?:(?:約|およそ|approximately|approx\.?|about|~|〜|≈)\s*)?`
	numeral       = `(\d+(?:\.\d+)?\s*(?:[万千億]|[KkMm]\b)|\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)`
)

type compiledRule struct {
	field   Field
	pattern *regexp.Regexp
}

// Extractor pulls engagement counters out of free-form text.
type Extractor struct {
	rules []compiledRule
}

func NewExtractor(rules []Rule) *Extractor {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		compiled = append(compiled, compiledRule{
			field:   r.Field,
			pattern: compileRule(r),
		})
	}
	return &Extractor{rules: compiled}
}

func compileRule(r Rule) *regexp.Regexp {
	synonyms := append([]string(nil), r.Synonyms...)
	// longest first so "いいね数" wins over "いいね"
	sort.SliceStable(synonyms, func(i, j int) bool {
		return len(synonyms[i]) > len(synonyms[j])
	})
	quoted := make([]string, len(synonyms))
	for i, s := range synonyms {
		quoted[i] = regexp.QuoteMeta(s)
	}
	label := `(?:` + strings.Join(quoted, "|") + `)`
	return regexp.MustCompile(`(?i)` + labelBoundary + label + separator + approximately + numeral)
}

// Extract returns the first value found for each field. A field whose label is
// missing or whose numeral does not parse is left at zero.
func (e *Extractor) Extract(text string) models.EngagementCounts {
	folded := Fold(text)

	var counts models.EngagementCounts
	for _, r := range e.rules {
		v := e.find(r, folded)
		switch r.field {
		case FieldLikes:
			if counts.Likes == 0 {
				counts.Likes = v
			}
		case FieldImpressions:
			if counts.Impressions == 0 {
				counts.Impressions = v
			}
		}
	}
	return counts
}

func (e *Extractor) find(r compiledRule, text string) int64 {
	m := r.pattern.FindStringSubmatch(text)
	if m == nil {
		slog.Debug("[Extractor] label not found", slog.String("field", string(r.field)))
		return 0
	}
	v, err := ParseNumber(m[1])
	if err == nil && !(v < math.MaxInt64) {
		err = &ParseError{Input: m[1]}
	}
	if err != nil {
		slog.Debug("[Extractor] numeral did not parse",
			slog.String("field", string(r.field)),
			slog.String("error", err.Error()))
		return 0
	}
	return int64(math.Round(v))
}

var defaultExtractor = NewExtractor(DefaultRules)

// ExtractCounts runs the default grammar over text.
func ExtractCounts(text string) models.EngagementCounts {
	return defaultExtractor.Extract(text)
}
