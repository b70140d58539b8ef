// Package authmsg renders generated cards as ISO 8583 (1987) authorization
// requests so they can be replayed against an acquirer or issuer simulator.
package authmsg

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/moov-io/iso8583"
	"github.com/moov-io/iso8583/specs"

	"github.com/alovak/cardflow-bingen/generator/models"
	"github.com/alovak/cardflow-bingen/internal/cardgen"
	"github.com/alovak/cardflow-bingen/internal/expiry"
)

const MTIAuthorizationRequest = "0100"

// Spec is the ASCII 1987 message layout. Fixed-width numeric fields are
// zero padded on the left.
var Spec = specs.Spec87ASCII

// Params are the transaction values shared by every message of a batch.
// STAN is the audit number of the first message and increments per card.
type Params struct {
	Amount   int64
	Currency string
	STAN     int
	At       time.Time
}

func DefaultParams(at time.Time) Params {
	return Params{Amount: 100, Currency: "840", STAN: 1, At: at}
}

func (p Params) validate() error {
	if p.Amount < 0 || p.Amount > 999_999_999_999 {
		return fmt.Errorf("amount must fit 12 digits")
	}
	if len(p.Currency) != 3 || !cardgen.IsDigits(p.Currency) {
		return fmt.Errorf("currency must be a 3-digit ISO 4217 code")
	}
	return nil
}

// Build creates an 0100 message carrying PAN (2), processing code (3),
// amount (4), transmission time (7), STAN (11), expiry (14) and currency (49).
func Build(card *models.Card, p Params) (*iso8583.Message, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	yymm := expiry.YYMM(card.Month, card.Year)
	if err := expiry.ValidateYYMM(yymm); err != nil {
		return nil, err
	}

	msg := iso8583.NewMessage(Spec)
	msg.MTI(MTIAuthorizationRequest)

	fields := []struct {
		id  int
		val string
	}{
		{2, card.PAN()},
		{3, "000000"},
		{4, fmt.Sprintf("%012d", p.Amount)},
		{7, p.At.UTC().Format("0102150405")},
		{11, fmt.Sprintf("%06d", p.STAN%1_000_000)},
		{14, yymm},
		{49, p.Currency},
	}
	for _, f := range fields {
		if err := msg.Field(f.id, f.val); err != nil {
			return nil, fmt.Errorf("setting field %d: %w", f.id, err)
		}
	}
	return msg, nil
}

// PackHex packs one message per card and returns them hex encoded.
func PackHex(cards []*models.Card, p Params) ([]string, error) {
	out := make([]string, 0, len(cards))
	for i, card := range cards {
		mp := p
		mp.STAN = p.STAN + i
		msg, err := Build(card, mp)
		if err != nil {
			return nil, fmt.Errorf("building message %d: %w", i, err)
		}
		packed, err := msg.Pack()
		if err != nil {
			return nil, fmt.Errorf("packing message %d: %w", i, err)
		}
		out = append(out, strings.ToUpper(hex.EncodeToString(packed)))
	}
	return out, nil
}
