package matching

import (
	"testing"
)

func TestSimilarityIdentical(t *testing.T) {
	for _, s := range []string{"", "a", "Bench Press", "引体向上"} {
		if got := Similarity(s, s); got != 1.0 {
			t.Fatalf("Similarity(%q, %q) = %v, want 1", s, s, got)
		}
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Bench Press", "Bnech Press"},
		{"Squat", "Deadlift"},
		{"", "x"},
		{"abc", "abcd"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Fatalf("Similarity(%q,%q)=%v != Similarity(%q,%q)=%v", p[0], p[1], ab, p[1], p[0], ba)
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("Similarity(%q,%q)=%v out of [0,1]", p[0], p[1], ab)
		}
	}
}

func TestSimilarityEmpty(t *testing.T) {
	if got := Similarity("", ""); got != 1.0 {
		t.Fatalf("两个空串应为 1, got %v", got)
	}
	if got := Similarity("", "x"); got != 0.0 {
		t.Fatalf("空串与非空串应为 0, got %v", got)
	}
}

func TestSimilarityCaseFolded(t *testing.T) {
	if got := Similarity("BENCH PRESS", "bench press"); got != 1.0 {
		t.Fatalf("大小写不应影响相似度, got %v", got)
	}
}

func TestSimilarityKnownDistances(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"kitten", "sitting", 1.0 - 3.0/7.0},
		{"abc", "abd", 1.0 - 1.0/3.0},
		{"ab", "abcd", 0.5},
	}
	for _, c := range cases {
		if got := Similarity(c.a, c.b); got != c.want {
			t.Fatalf("Similarity(%q,%q)=%v, want %v", c.a, c.b, got, c.want)
		}
	}
}
