// Package textutil provides the text normalization and matching helpers
// the validators share: canonical forms for comparison, number extraction
// with European separator handling, and a sequence similarity ratio for
// fuzzy quote containment.
package textutil

import (
	"strconv"
	"strings"
)

// Normalize produces the canonical comparison form of text: lowercase,
// collapsed whitespace, unified quote/dash/ellipsis variants, zero-width
// characters removed.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "…", "...")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '„', '“', '”', '«', '»':
			b.WriteByte('"')
		case '‚', '‘', '’', '‹', '›':
			b.WriteByte('\'')
		case '–', '—':
			b.WriteByte('-')
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			// Zero-width characters, drop
		default:
			b.WriteRune(r)
		}
	}

	// Collapse all whitespace runs to single spaces
	return strings.Join(strings.Fields(b.String()), " ")
}

// Truncate shortens text to maxLen, appending an ellipsis when cut
func Truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}

// ExtractNumbers returns every number found in text. Thousands separators
// are stripped and decimal commas converted, so "1,234.56", "1.234,56"
// and "12,5" all parse.
func ExtractNumbers(text string) []float64 {
	var numbers []float64

	i := 0
	for i < len(text) {
		if !isDigit(text[i]) {
			i++
			continue
		}

		// Consume a run of digits, dots and commas; separators must be
		// followed by a digit to belong to the number.
		j := i
		for j < len(text) {
			c := text[j]
			if isDigit(c) {
				j++
				continue
			}
			if (c == '.' || c == ',') && j+1 < len(text) && isDigit(text[j+1]) {
				j++
				continue
			}
			break
		}

		if num, ok := parseNumber(text[i:j]); ok {
			numbers = append(numbers, num)
		}
		i = j
	}

	return numbers
}

// parseNumber normalizes separator conventions before parsing. When both
// '.' and ',' appear, the last one is the decimal separator; a lone comma
// acts as a decimal comma.
func parseNumber(s string) (float64, bool) {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// ContainsNumber reports whether text contains number within the given
// relative tolerance (0.01 = 1%). Near-zero targets fall back to an
// absolute comparison.
func ContainsNumber(text string, number, tolerance float64) bool {
	for _, num := range ExtractNumbers(text) {
		if abs(number) < 1e-10 {
			if abs(num-number) < 0.01 {
				return true
			}
			continue
		}
		if abs(num-number)/abs(number) <= tolerance {
			return true
		}
	}
	return false
}

// SimilarityRatio computes a similarity ratio in [0,1] between two
// strings: twice the length of their longest common subsequence over the
// total length. Equal strings score 1.0, disjoint strings 0.0.
func SimilarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	lcs := lcsLength(a, b)
	return 2.0 * float64(lcs) / float64(len(a)+len(b))
}

// lcsLength is the classic two-row DP over bytes. Inputs are normalized
// quote-sized strings, so the O(len(a)*len(b)) cost stays bounded.
func lcsLength(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
