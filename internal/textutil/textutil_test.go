package textutil

import (
	"math"
	"testing"
)

func TestNormalize_Whitespace(t *testing.T) {
	got := Normalize("  Revenue   grew\t12%\n\nin  Q3  ")
	want := "revenue grew 12% in q3"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestNormalize_QuotesAndDashes(t *testing.T) {
	got := Normalize("“Smart” pricing — the ‘new’ normal…")
	want := `"smart" pricing - the 'new' normal...`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Expected unchanged text, got %q", got)
	}
	if got := Truncate("a longer sentence", 10); got != "a longe..." {
		t.Errorf("Expected truncated text with ellipsis, got %q", got)
	}
	if got := Truncate("abcdef", 2); got != "ab" {
		t.Errorf("Expected hard cut for tiny maxLen, got %q", got)
	}
}

func TestExtractNumbers_Formats(t *testing.T) {
	tests := []struct {
		text string
		want []float64
	}{
		{"revenue of 1,234.56 million", []float64{1234.56}},
		{"revenue of 1.234,56 million", []float64{1234.56}},
		{"growth of 12,5 percent", []float64{12.5}},
		{"1,234,567 units sold", []float64{1234567}},
		{"from 3.2 to 4.8", []float64{3.2, 4.8}},
		{"no numbers here", nil},
		{"trailing dot 42.", []float64{42}},
	}

	for _, tt := range tests {
		got := ExtractNumbers(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("ExtractNumbers(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-9 {
				t.Errorf("ExtractNumbers(%q)[%d] = %v, want %v", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestContainsNumber_Tolerance(t *testing.T) {
	text := "sales reached 1000 units"

	if !ContainsNumber(text, 1000, 0.01) {
		t.Error("Expected exact match within tolerance")
	}
	if !ContainsNumber(text, 1005, 0.01) {
		t.Error("Expected 0.5% deviation to match at 1% tolerance")
	}
	if ContainsNumber(text, 1020, 0.01) {
		t.Error("Expected 2% deviation not to match at 1% tolerance")
	}
}

func TestContainsNumber_NearZero(t *testing.T) {
	if !ContainsNumber("a delta of 0 points", 0, 0.01) {
		t.Error("Expected zero target to match zero in text")
	}
	if ContainsNumber("a delta of 5 points", 0, 0.01) {
		t.Error("Expected zero target not to match nonzero text")
	}
}

func TestSimilarityRatio(t *testing.T) {
	if got := SimilarityRatio("abc", "abc"); got != 1.0 {
		t.Errorf("Expected 1.0 for identical strings, got %v", got)
	}
	if got := SimilarityRatio("", ""); got != 1.0 {
		t.Errorf("Expected 1.0 for two empty strings, got %v", got)
	}
	if got := SimilarityRatio("abc", ""); got != 0.0 {
		t.Errorf("Expected 0.0 against empty string, got %v", got)
	}
	if got := SimilarityRatio("abc", "xyz"); got != 0.0 {
		t.Errorf("Expected 0.0 for disjoint strings, got %v", got)
	}

	// "abcd" vs "abxd": LCS is "abd" (3), ratio 2*3/8 = 0.75
	if got := SimilarityRatio("abcd", "abxd"); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Expected 0.75, got %v", got)
	}
}
