package matching

import (
	"reflect"
	"testing"
)

func TestResolveTypo(t *testing.T) {
	name, ok := Resolve("Bnech Press", []string{"Bench Press"}, DefaultResolveThreshold)
	if !ok || name != "Bench Press" {
		t.Fatalf("Resolve = (%q, %v), want (\"Bench Press\", true)", name, ok)
	}
}

func TestResolveDissimilar(t *testing.T) {
	if name, ok := Resolve("Squat", []string{"Bench Press"}, DefaultResolveThreshold); ok {
		t.Fatalf("不相似的名字不应命中, got %q", name)
	}
}

func TestResolveEmptyVocabulary(t *testing.T) {
	if name, ok := Resolve("Deadlift", nil, DefaultResolveThreshold); ok {
		t.Fatalf("空词表不应命中, got %q", name)
	}
}

func TestResolvePicksBestMatch(t *testing.T) {
	vocab := []string{"Incline Press", "Bench Press", "Leg Press"}
	name, ok := Resolve("Bench Pres", vocab, DefaultResolveThreshold)
	if !ok || name != "Bench Press" {
		t.Fatalf("Resolve = (%q, %v), want (\"Bench Press\", true)", name, ok)
	}
}

func TestResolveTieBreaksLexicographically(t *testing.T) {
	// "ax" 与 "bx" 对 "cx" 的相似度相同（各差一个字符）
	name, ok := Resolve("cx", []string{"bx", "ax"}, 0.4)
	if !ok || name != "ax" {
		t.Fatalf("同分应取字典序较小者, got (%q, %v)", name, ok)
	}
	// 顺序相反也要得到一样的结果
	name2, ok2 := Resolve("cx", []string{"ax", "bx"}, 0.4)
	if !ok2 || name2 != name {
		t.Fatalf("结果依赖词表顺序: %q vs %q", name, name2)
	}
}

func TestSuggestShortQuery(t *testing.T) {
	vocab := []string{"Bench Press", "Squat"}
	for _, q := range []string{"", "b"} {
		if got := Suggest(q, vocab, DefaultSuggestThreshold, DefaultSuggestLimit); len(got) != 0 {
			t.Fatalf("Suggest(%q) = %v, want empty", q, got)
		}
	}
}

func TestSuggestRankedAndLimited(t *testing.T) {
	vocab := []string{"Front Squat", "Squats", "Squat", "Bench Press"}
	got := Suggest("Squat", vocab, DefaultSuggestThreshold, 2)
	want := []string{"Squat", "Squats"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Suggest = %v, want %v", got, want)
	}
	for i := 1; i < len(got); i++ {
		if Similarity("Squat", got[i]) > Similarity("Squat", got[i-1]) {
			t.Fatalf("建议未按相似度降序: %v", got)
		}
	}
}

func TestSuggestFiltersBelowThreshold(t *testing.T) {
	got := Suggest("Bench", []string{"Squat"}, DefaultSuggestThreshold, DefaultSuggestLimit)
	if !reflect.DeepEqual(got, []string{}) {
		t.Fatalf("低于阈值的名字应被过滤, got %v", got)
	}
}
