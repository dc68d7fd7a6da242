package censusservice

import (
	"strconv"
	"testing"
)

func TestReverseDigits(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{name: "trailing zero preserved as leading zero", n: 120, want: "021"},
		{name: "single digit", n: 5, want: "5"},
		{name: "zero", n: 0, want: "0"},
		{name: "palindrome", n: 121, want: "121"},
		{name: "large", n: 987654, want: "456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReverseDigits(tt.n); got != tt.want {
				t.Errorf("ReverseDigits(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestReverseDigits_MatchesCharacterReverse(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 42, 100, 1203, 999999} {
		digits := []byte(strconv.Itoa(n))
		for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
			digits[i], digits[j] = digits[j], digits[i]
		}
		if got := ReverseDigits(n); got != string(digits) {
			t.Errorf("ReverseDigits(%d) = %q, want %q", n, got, string(digits))
		}
	}
}

func TestRenderName(t *testing.T) {
	tests := []struct {
		name     string
		template string
		count    int
		want     string
	}{
		{name: "token at front", template: "({count})name", count: 120, want: "(021)name"},
		{name: "token in middle", template: "club {count} lounge", count: 7, want: "club 7 lounge"},
		{name: "only first occurrence replaced", template: "{count}-{count}", count: 12, want: "21-{count}"},
		{name: "no token returns template unchanged", template: "plain name", count: 99, want: "plain name"},
		{name: "empty template", template: "", count: 3, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderName(tt.template, tt.count); got != tt.want {
				t.Errorf("RenderName(%q, %d) = %q, want %q", tt.template, tt.count, got, tt.want)
			}
		})
	}
}

func TestShouldUpdate(t *testing.T) {
	if ShouldUpdate("(021)name", "(021)name") {
		t.Error("equal names must not trigger an update")
	}
	if !ShouldUpdate("(021)name", "(7)name") {
		t.Error("differing names must trigger an update")
	}
	if ShouldUpdate("", "") {
		t.Error("two empty names are equal")
	}
}
