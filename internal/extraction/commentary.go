package extraction

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// the answer to the second prompt item, e.g. "2. ...", "2) ..." or "**2.** ...".
// A period must be followed by a space or "**" so "2.8万" is not a marker.
var commentaryPattern = regexp.MustCompile(`(?s)(?:^|\n)[\s#*]*2\s*(?:\)|\.(?:\s|\*\*))\s*(?:\*\*)?\s*(.+)`)

// ExtractCommentary returns the model's qualitative remark as plain text.
func ExtractCommentary(text string) string {
	m := commentaryPattern.FindStringSubmatch(Fold(text))
	if m == nil {
		return ""
	}
	return MarkdownToText(strings.TrimSpace(m[1]))
}

// MarkdownToText flattens Markdown into plain text, one line per block.
func MarkdownToText(input string) string {
	md := blackfriday.New(blackfriday.WithNoExtensions())
	root := md.Parse([]byte(input))

	var b strings.Builder
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Text, blackfriday.Code:
			if entering {
				b.Write(node.Literal)
			}
		case blackfriday.CodeBlock:
			b.Write(node.Literal)
			b.WriteByte('\n')
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			b.WriteByte('\n')
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.Item:
			if !entering {
				b.WriteByte('\n')
			}
		}
		return blackfriday.GoToNext
	})

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
