package censusservice

import (
	"strconv"
	"strings"
)

// CountToken is the placeholder a name template must carry.
const CountToken = "{count}"

// ReverseDigits returns the character-reverse of n's base-10
// representation. The reversal is textual, not numeric: 120 becomes
// "021", and the leading zero is preserved on purpose so the count is
// not readable at a glance in the guild name.
func ReverseDigits(n int) string {
	digits := []byte(strconv.Itoa(n))
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// RenderName substitutes the reversed member count into the first
// CountToken occurrence of template. A template without the token is
// returned unchanged; callers treat that as a misconfigured template,
// not an error.
func RenderName(template string, count int) string {
	return strings.Replace(template, CountToken, ReverseDigits(count), 1)
}

// ShouldUpdate reports whether a rename call is needed at all. Equal
// names mean a re-trigger with an unchanged count; skip.
func ShouldUpdate(currentName, renderedName string) bool {
	return currentName != renderedName
}
