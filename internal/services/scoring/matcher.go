package scoring

import (
	"strings"
	"unicode/utf8"
)

// CanSpell reports whether candidate can be built from the letters of source,
// using each letter of source at most as many times as it occurs there.
// Both words are case-folded first. Safe for concurrent use.
func CanSpell(candidate, source string) bool {
	counts := letterCounts(strings.ToLower(source))
	for _, r := range strings.ToLower(candidate) {
		if counts[r] == 0 {
			return false
		}
		counts[r]--
	}
	return true
}

// WordScore returns the points for an accepted word: one per letter
func WordScore(word string) int {
	return utf8.RuneCountInString(word)
}

func letterCounts(word string) map[rune]int {
	counts := make(map[rune]int, len(word))
	for _, r := range word {
		counts[r]++
	}
	return counts
}
