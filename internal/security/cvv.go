package security

import (
	"strconv"

	"github.com/alovak/cardflow-bingen/internal/cardgen"
)

// maxCVVLen is the widest CVV any network prints.
const maxCVVLen = 4

// RandomProvider synthesizes CVVs with no relation to the PAN or expiry.
type RandomProvider struct {
	rnd cardgen.Rand
}

func NewRandomProvider(rnd cardgen.Rand) *RandomProvider {
	return &RandomProvider{rnd: rnd}
}

// ComputeCVV draws from [1000,9999] for 4-digit networks and [100,999] otherwise.
func (p *RandomProvider) ComputeCVV(network cardgen.Network) string {
	if network.CVVLength() == 4 {
		return strconv.Itoa(1000 + p.rnd.Intn(9000))
	}
	return strconv.Itoa(100 + p.rnd.Intn(900))
}

// SanitizeCVV keeps the digits of a caller-supplied CVV, capped at four.
func SanitizeCVV(in string) string {
	digits := cardgen.NormalizeDigits(in)
	if len(digits) > maxCVVLen {
		return digits[:maxCVVLen]
	}
	return digits
}
