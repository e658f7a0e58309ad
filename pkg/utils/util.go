package utils

import (
	"strings"
	"unicode/utf8"
)

// sliceRunes returns the substring of r between rune offsets start and end,
// clamped to the bounds of r. A start at or beyond end yields "".
func sliceRunes(r []rune, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return ""
	}
	return string(r[start:end])
}

// lastRuneIndex returns the rune offset of the last occurrence of substr
// in s, or -1 if substr is not present
func lastRuneIndex(s, substr string) int {
	idx := strings.LastIndex(s, substr)
	if idx < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:idx])
}
