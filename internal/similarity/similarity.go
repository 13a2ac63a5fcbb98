// Package similarity computes normalized text similarity for duplicate
// detection. It is pure: no I/O, no clocks, no shared state.
package similarity

import (
	"strings"
	"unicode"
)

// Ratio returns a similarity score in [0,1] for two strings. Both inputs are
// normalized first (lowercase, punctuation stripped, whitespace collapsed);
// identical normalized strings score 1.0, disjoint strings 0.0. The score is
// the matching-blocks ratio: 2*M/T where M is the total length of the common
// blocks and T the combined length of both normalized strings.
func Ratio(a, b string) float64 {
	na := []rune(Normalize(a))
	nb := []rune(Normalize(b))

	total := len(na) + len(nb)
	if total == 0 {
		return 1.0
	}

	// Canonical argument order keeps the ratio symmetric even when block
	// matching could break ties differently for swapped inputs.
	if string(na) > string(nb) {
		na, nb = nb, na
	}

	return 2.0 * float64(matchingRunes(na, nb)) / float64(total)
}

// Normalize lowercases the text, removes every rune that is not a letter,
// digit, underscore or whitespace, and collapses whitespace runs to single
// spaces. Removal, not replacement: word-internal punctuation collapses, so
// "don't" and "real-time" become "dont" and "realtime".
func Normalize(s string) string {
	s = strings.ToLower(s)
	runes := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			runes = append(runes, r)
		}
	}
	return strings.Join(strings.Fields(string(runes)), " ")
}

// matchingRunes counts the runes covered by the common blocks of a and b:
// the longest common substring, then recursively the pieces to its left and
// right.
func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}

	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

// longestCommonBlock finds the longest common substring of a and b, returning
// its start offsets and length. Ties resolve to the earliest block in a.
func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	// lengths[j] is the length of the common suffix ending at a[i-1], b[j-1]
	// for the current row i.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
