package security

import "github.com/alovak/cardflow-bingen/internal/cardgen"

// CVVProvider is the contract for producing the verification value printed on a card.
type CVVProvider interface {
	// ComputeCVV returns a CVV of the width the network prints (3, or 4 for AMEX).
	ComputeCVV(network cardgen.Network) string
}
