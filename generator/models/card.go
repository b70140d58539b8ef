package models

import (
	"strings"
	"time"

	"github.com/alovak/cardflow-bingen/internal/binlookup"
	"github.com/alovak/cardflow-bingen/internal/cardgen"
)

// Card is one synthetic card. Number is formatted for display.
type Card struct {
	Number  string              `json:"number"`
	Month   string              `json:"month"`
	Year    string              `json:"year"`
	CVV     string              `json:"cvv"`
	Network cardgen.Network     `json:"network"`
	BINInfo *binlookup.Metadata `json:"bin_info"`
}

// PAN returns the number without display separators.
func (c *Card) PAN() string {
	return cardgen.NormalizePAN(c.Number)
}

// Line renders the card as number|month|year|cvv.
func (c *Card) Line() string {
	return strings.Join([]string{c.Number, c.Month, c.Year, c.CVV}, "|")
}

type Batch struct {
	ID        string    `json:"batch_id"`
	CreatedAt time.Time `json:"created_at"`
	Cards     []*Card   `json:"cards"`
}

// FormatText renders one Line per card, newline separated.
func FormatText(cards []*Card) string {
	lines := make([]string, len(cards))
	for i, c := range cards {
		lines[i] = c.Line()
	}
	return strings.Join(lines, "\n")
}
