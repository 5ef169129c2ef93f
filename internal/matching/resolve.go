package matching

import (
	"sort"
	"unicode/utf8"
)

// 默认阈值：0.7 用于拼写纠正（宁可不纠正也不要错并），0.5 用于补全建议。
const (
	DefaultResolveThreshold = 0.7
	DefaultSuggestThreshold = 0.5
	DefaultSuggestLimit     = 5
	minQueryLen             = 2
)

// Resolve 在历史词表中寻找与 candidate 最相似的名字。
// 相似度达到 threshold 才算命中；词表为空时不命中。
// 同分时取字典序较小者，保证结果与词表遍历顺序无关。
func Resolve(candidate string, vocabulary []string, threshold float64) (string, bool) {
	bestName := ""
	bestScore := -1.0

	for _, name := range vocabulary {
		score := Similarity(candidate, name)
		if score > bestScore || (score == bestScore && name < bestName) {
			bestScore = score
			bestName = name
		}
	}

	if bestScore < threshold || bestName == "" {
		return "", false
	}
	return bestName, true
}

// Suggest 返回按相似度降序的补全候选，至多 limit 条。
// 少于 2 个字符的查询没有区分度，直接返回空列表。
func Suggest(query string, vocabulary []string, threshold float64, limit int) []string {
	if utf8.RuneCountInString(query) < minQueryLen {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	type scored struct {
		name  string
		score float64
	}

	candidates := make([]scored, 0, len(vocabulary))
	for _, name := range vocabulary {
		if score := Similarity(query, name); score >= threshold {
			candidates = append(candidates, scored{name: name, score: score})
		}
	}

	// 稳定排序：同分保持词表原序
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.name)
	}
	return names
}
