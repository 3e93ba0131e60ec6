package extraction

import (
	"regexp"
	"strings"

	"github.com/spacesedan/kyokan/internal/models"
)

var categoryLinePattern = regexp.MustCompile(`(?i)(?:カテゴリー?|ジャンル|category)\s*(?:[:=]|は)?\s*([^\s、,。)]+)`)

var categoryAliases = map[string]models.Category{
	"politics":  models.CategoryPolitical,
	"daily":     models.CategoryDailyLife,
	"dailylife": models.CategoryDailyLife,
	"love":      models.CategoryRomance,
	"rant":      models.CategoryComplaint,
	"humor":     models.CategoryJoke,
	"humour":    models.CategoryJoke,
	"attention": models.CategoryValidationSeeking,
	"flame":     models.CategoryInflammatory,
	"selfhelp":  models.CategorySelfHelp,
	"ad":        models.CategoryPromotional,
	"advert":    models.CategoryPromotional,
	"other":     models.CategoryUncategorized,
	"none":      models.CategoryUncategorized,
	"カテゴリなし":    models.CategoryUncategorized,
	"プロモーション":   models.CategoryPromotional,
}

// ParseCategory resolves an English or Japanese category name.
func ParseCategory(s string) (models.Category, bool) {
	name := strings.ToLower(strings.TrimSpace(Fold(s)))
	if name == "" {
		return "", false
	}

	key := strings.NewReplacer("_", "-", " ", "-").Replace(name)
	if c := models.Category(key); c.Valid() {
		return c, true
	}
	for c, label := range models.CategoryLabels {
		if name == label {
			return c, true
		}
	}
	if c, ok := categoryAliases[strings.ReplaceAll(key, "-", "")]; ok {
		return c, true
	}
	// "政治系" reads as "political-ish"
	if base, ok := strings.CutSuffix(name, "系"); ok {
		return ParseCategory(base)
	}
	return "", false
}

// ExtractCategory reads the category the model declared. It returns
// uncategorized for an unknown name and "" when no category line exists.
func ExtractCategory(text string) models.Category {
	m := categoryLinePattern.FindStringSubmatch(Fold(text))
	if m == nil {
		return ""
	}
	// compound answers such as "政治・社会" resolve to the first known part
	name := strings.Trim(m[1], "「」『』\"'*")
	for _, part := range strings.FieldsFunc(name, isCategorySeparator) {
		if c, ok := ParseCategory(part); ok {
			return c
		}
	}
	return models.CategoryUncategorized
}

func isCategorySeparator(r rune) bool {
	return r == '・' || r == '/' || r == '|'
}
