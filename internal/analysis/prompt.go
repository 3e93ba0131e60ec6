package analysis

import (
	"strings"

	"github.com/spacesedan/kyokan/internal/models"
)

// DefaultSystemPrompt fixes the answer layout the extractor expects.
var DefaultSystemPrompt = `
あなたはSNS投稿のスクリーンショットを読み取るアナリストです。

必ず次の形式だけで回答してください。

1. いいね数: <画像に表示されている数値をそのまま>
   インプレッション数: <画像に表示されている数値をそのまま>
   カテゴリ: <` + categoryChoices() + ` のいずれか1つ>
2. <投稿の言葉選び・雰囲気・タイミングを踏まえた短いコメント>

ルール:
- 数値は画像の表記どおりに書き、「2.8万」「1,234」のような表記も変換しないでください。
- 読み取れない数値は「不明」と書いてください。推測で数値を作らないでください。
- コメントは2〜3文。断定しすぎず、投稿者を攻撃しない口調にしてください。
`

var DefaultUserPrompt = "以下の画像に写っているSNS投稿について、上記の形式で回答してください。"

func categoryChoices() string {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, models.CategoryLabels[c])
	}
	return strings.Join(names, "・")
}
