package cardgen

import (
	"fmt"
	"strings"
)

// CheckDigit returns the Luhn check digit that completes partial.
// The rightmost digit of partial sits next to the missing check digit and is doubled.
func CheckDigit(partial string) int {
	sum := luhnSum(NormalizeDigits(partial), true)
	return (10 - (sum % 10)) % 10
}

// LuhnValid reports whether number (separators allowed) passes the mod-10 check.
// An empty string sums to zero and is therefore valid.
func LuhnValid(number string) bool {
	return luhnSum(NormalizeDigits(number), false)%10 == 0
}

func luhnSum(digits string, dbl bool) int {
	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return sum
}

// ValidatePAN checks digits-only, a 13–19 length and the Luhn check digit.
func ValidatePAN(pan string) error {
	if pan == "" {
		return fmt.Errorf("pan is required")
	}
	if !IsDigits(pan) {
		return fmt.Errorf("pan must contain digits only")
	}
	if l := len(pan); l < 13 || l > 19 {
		return fmt.Errorf("pan length must be 13..19 digits (got %d)", l)
	}
	if !LuhnValid(pan) {
		return fmt.Errorf("invalid luhn check digit")
	}
	return nil
}

// NormalizeDigits drops every character that is not an ASCII digit.
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

var panSeparators = strings.NewReplacer(" ", "", "\t", "", "-", "")

// NormalizePAN removes spaces, tabs and dashes, keeping any other character.
func NormalizePAN(s string) string {
	return panSeparators.Replace(strings.TrimSpace(s))
}

// IsDigits reports whether s holds only ASCII digits. The empty string does.
func IsDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}
