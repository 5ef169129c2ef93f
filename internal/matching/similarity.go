// Package matching 实现动作名的近似匹配：
// 编辑距离相似度、历史词表内的最佳匹配解析、输入补全建议。
package matching

import (
	"strings"
)

// levenshtein 计算两个 rune 序列的编辑距离（插入/删除/替换各计 1）。
// 滚动两行数组，避免分配完整矩阵。
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// Similarity 返回 [0,1] 的归一化相似度：1 - 距离/较长串长度。
// 比较前统一小写；两个空串视为完全相同。
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein(ra, rb)
	return 1.0 - float64(dist)/float64(maxLen)
}
