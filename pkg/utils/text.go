package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// DigitsOnly strips everything but ASCII digits, e.g. "(614) 349-5140" -> "6143495140".
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LastToken returns the final whitespace-delimited token of s.
func LastToken(s string) string {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// SplitRxNumbers splits a comma or whitespace delimited list of prescription
// numbers. Empty tokens are dropped.
func SplitRxNumbers(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// ParseRxNumbers parses every token as a positive integer. ok is false when
// any token is not one, or when there are no tokens at all.
func ParseRxNumbers(s string) (nums []int64, ok bool) {
	tokens := SplitRxNumbers(s)
	if len(tokens) == 0 {
		return nil, false
	}
	nums = make([]int64, 0, len(tokens))
	for _, t := range tokens {
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil || n <= 0 {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}
