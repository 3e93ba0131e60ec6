package models

// Category is the declared content category of a post.
type Category string

const (
	CategoryPolitical         Category = "political"
	CategorySocial            Category = "social"
	CategoryDailyLife         Category = "daily-life"
	CategoryRomance           Category = "romance"
	CategoryComplaint         Category = "complaint"
	CategoryJoke              Category = "joke"
	CategoryValidationSeeking Category = "validation-seeking"
	CategoryInflammatory      Category = "inflammatory"
	CategorySelfHelp          Category = "self-help"
	CategoryPromotional       Category = "promotional"
	CategoryUncategorized     Category = "uncategorized"
)

var Categories = []Category{
	CategoryPolitical,
	CategorySocial,
	CategoryDailyLife,
	CategoryRomance,
	CategoryComplaint,
	CategoryJoke,
	CategoryValidationSeeking,
	CategoryInflammatory,
	CategorySelfHelp,
	CategoryPromotional,
	CategoryUncategorized,
}

// CategoryLabels maps each category to the Japanese name the model is asked to
// answer with.
var CategoryLabels = map[Category]string{
	CategoryPolitical:         "政治",
	CategorySocial:            "社会",
	CategoryDailyLife:         "日常",
	CategoryRomance:           "恋愛",
	CategoryComplaint:         "愚痴",
	CategoryJoke:              "ネタ",
	CategoryValidationSeeking: "承認欲求",
	CategoryInflammatory:      "炎上",
	CategorySelfHelp:          "自己啓発",
	CategoryPromotional:       "宣伝",
	CategoryUncategorized:     "その他",
}

func (c Category) Valid() bool {
	_, ok := CategoryLabels[c]
	return ok
}
