package importer

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML 去掉富文本描述里的 HTML 标签并还原常见实体
func StripHTML(html string) string {
	if html == "" {
		return ""
	}

	text := tagPattern.ReplaceAllString(html, "")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
	)
	return strings.TrimSpace(replacer.Replace(text))
}
