package cardgen

import (
	"fmt"
	"regexp"
	"strings"
)

// Network is a card scheme derived from the leading digits of a PAN.
type Network string

const (
	Visa       Network = "VISA"
	Mastercard Network = "MASTERCARD"
	Amex       Network = "AMEX"
	Discover   Network = "DISCOVER"
	JCB        Network = "JCB"
	DinersClub Network = "DINERS_CLUB"
	Maestro    Network = "MAESTRO"
	UnionPay   Network = "UNIONPAY"

	// Unknown is returned when no rule matches.
	Unknown Network = ""
)

// canonicalLen is the width prefixes are padded to before rule matching.
const canonicalLen = 16

type networkRule struct {
	network Network
	pattern *regexp.Regexp
}

// networkRules are evaluated in order and the first match wins. Every pattern
// describes the zero-padded 16-digit canonical form, not the issued length.
var networkRules = []networkRule{
	{Visa, regexp.MustCompile(`^4\d{12}(\d{3})?$`)},
	{Mastercard, regexp.MustCompile(`^(5[1-5]\d{2}|2(2(2[1-9]|[3-9]\d)|[3-6]\d{2}|7([01]\d|20)))\d{12}$`)},
	{Amex, regexp.MustCompile(`^3[47]\d{14}$`)},
	{Discover, regexp.MustCompile(`^6(011|5\d{2})\d{12}$`)},
	{JCB, regexp.MustCompile(`^(2131|1800|35\d{2})\d{12}$`)},
	{DinersClub, regexp.MustCompile(`^3(0[0-5]|[68]\d)\d{13}$`)},
	{Maestro, regexp.MustCompile(`^(5018|5020|5038|6304|6759|6761|6763)\d{12}$`)},
	{UnionPay, regexp.MustCompile(`^(62|88)\d{14}$`)},
}

var binFormat = regexp.MustCompile(`^\d{6,8}$`)

// Networks lists the known networks in classification priority order.
func Networks() []Network {
	out := make([]Network, len(networkRules))
	for i, rule := range networkRules {
		out[i] = rule.network
	}
	return out
}

// Classify maps a digit prefix to its network. Prefixes shorter than 16 digits
// are right-padded with zeros, longer ones are cut to their first 16 digits.
func Classify(prefix string) Network {
	canonical := prefix
	if len(canonical) < canonicalLen {
		canonical += strings.Repeat("0", canonicalLen-len(canonical))
	} else {
		canonical = canonical[:canonicalLen]
	}
	for _, rule := range networkRules {
		if rule.pattern.MatchString(canonical) {
			return rule.network
		}
	}
	return Unknown
}

// ValidateBIN reports why bin cannot seed a card number, or nil.
func ValidateBIN(bin string) error {
	if bin == "" {
		return fmt.Errorf("bin is required")
	}
	if !binFormat.MatchString(bin) {
		return fmt.Errorf("bin must be 6 to 8 digits")
	}
	if Classify(bin) == Unknown {
		return fmt.Errorf("bin %s does not belong to a known card network", bin)
	}
	return nil
}

func IsValidBIN(bin string) bool {
	return ValidateBIN(bin) == nil
}

// PANLength picks the total number of digits to issue for the network.
// MAESTRO and UNIONPAY draw uniformly from 16..19.
func (n Network) PANLength(rnd Rand) int {
	switch n {
	case Amex:
		return 15
	case DinersClub:
		return 14
	case Maestro, UnionPay:
		return 16 + rnd.Intn(4)
	default:
		return 16
	}
}

// CVVLength is 4 for AMEX and 3 for everything else.
func (n Network) CVVLength() int {
	if n == Amex {
		return 4
	}
	return 3
}

func (n Network) String() string {
	if n == Unknown {
		return "UNKNOWN"
	}
	return string(n)
}
