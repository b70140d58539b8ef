package cardgen

import (
	"strings"
)

// GeneratePAN builds a Luhn-valid card number that starts with bin.
// The bin is expected to pass ValidateBIN; it is never truncated, and exactly
// one check digit is always appended even if bin already reaches the length.
func GeneratePAN(bin string, rnd Rand) string {
	total := Classify(bin).PANLength(rnd)
	fill := total - 1 - len(bin)
	if fill < 0 {
		fill = 0
	}

	var sb strings.Builder
	sb.Grow(len(bin) + fill + 1)
	sb.WriteString(bin)
	for i := 0; i < fill; i++ {
		sb.WriteByte('0' + byte(rnd.Intn(10)))
	}
	body := sb.String()
	return body + string(rune('0'+CheckDigit(body)))
}

// FormatPAN groups a digit string for display: AMEX 4-6-5, DINERS_CLUB 4-6-4,
// everything else in fours with the trailing partial group kept.
func FormatPAN(number string, network Network) string {
	switch network {
	case Amex:
		return groupExact(number, 4, 6, 5)
	case DinersClub:
		return groupExact(number, 4, 6, 4)
	}

	var sb strings.Builder
	for i := 0; i < len(number); i += 4 {
		end := i + 4
		if end > len(number) {
			end = len(number)
		}
		sb.WriteString(number[i:end])
		sb.WriteByte(' ')
	}
	return strings.TrimSpace(sb.String())
}

// groupExact splits number into the given group sizes when it has exactly that
// many digits, and returns it unchanged otherwise.
func groupExact(number string, sizes ...int) string {
	total := 0
	for _, s := range sizes {
		total += s
	}
	if len(number) != total || !IsDigits(number) {
		return number
	}
	parts := make([]string, 0, len(sizes))
	off := 0
	for _, s := range sizes {
		parts = append(parts, number[off:off+s])
		off += s
	}
	return strings.Join(parts, " ")
}

// MaskPAN hides the middle of a card number. Ten or more digits keep the
// leading six and trailing four; shorter numbers keep only the trailing four,
// and up to four digits are hidden entirely.
func MaskPAN(pan string) string {
	digits := NormalizePAN(pan)
	head, tail := 0, 4
	switch {
	case len(digits) <= 4:
		tail = 0
	case len(digits) >= 10:
		head = 6
	}
	return digits[:head] + strings.Repeat("*", len(digits)-head-tail) + digits[len(digits)-tail:]
}
