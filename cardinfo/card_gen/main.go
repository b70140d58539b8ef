package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alovak/cardflow-bingen/generator"
	"github.com/alovak/cardflow-bingen/generator/models"
	"github.com/alovak/cardflow-bingen/internal/authmsg"
	"github.com/alovak/cardflow-bingen/internal/binlookup"
	"github.com/alovak/cardflow-bingen/internal/cardgen"
	"github.com/alovak/cardflow-bingen/internal/expiry"
	"github.com/alovak/cardflow-bingen/internal/logger"
	"github.com/alovak/cardflow-bingen/internal/security"
)

var (
	flagBINs    = flag.String("bins", "424242", "BIN prefixes separated by ';'")
	flagQty     = flag.Int("qty", generator.DefaultQuantity, "number of cards (1..100)")
	flagCVV     = flag.String("cvv", "", "fixed CVV (digits, up to 4); random when empty")
	flagMonth   = flag.String("month", expiry.Random, "expiry month MM or 'random'")
	flagYear    = flag.String("year", expiry.Random, "expiry year YY or 'random'")
	flagLookup  = flag.String("lookup", binlookup.DefaultBaseURL, "BIN lookup base URL")
	flagOffline = flag.Bool("offline", false, "skip BIN lookup")
	flagFormat  = flag.String("format", "text", "output: text|json|iso8583")
	flagMask    = flag.Bool("mask", false, "mask PANs in text and json output")
	flagTimeout = flag.Duration("timeout", 10*time.Second, "BIN lookup timeout")
)

func main() {
	flag.Parse()

	must(expiry.ValidateMonth(*flagMonth))
	must(expiry.ValidateYear(*flagYear))
	switch *flagFormat {
	case "text", "json", "iso8583":
	default:
		fail("-format must be text, json or iso8583")
	}
	if *flagMask && *flagFormat == "iso8583" {
		fail("-mask cannot be combined with -format iso8583")
	}

	log := logger.New("warn", os.Stderr)
	ctx := logger.ToContext(context.Background(), log)

	var lookup generator.BINLookup
	if !*flagOffline {
		lookup = binlookup.New(*flagLookup, &http.Client{Timeout: *flagTimeout})
	}

	svc := generator.NewService(lookup, cardgen.CryptoRand{}, generator.DefaultConfig())
	batch := must1(svc.GenerateBatch(ctx, generator.Request{
		BINs:     generator.SplitBINs(*flagBINs),
		CVV:      security.SanitizeCVV(*flagCVV),
		Month:    *flagMonth,
		Year:     *flagYear,
		Quantity: *flagQty,
	}))

	must(render(os.Stdout, batch, *flagFormat, *flagMask))
}

// render writes batch to w. Masking replaces the number on copies, batch is untouched.
func render(w io.Writer, batch *models.Batch, format string, mask bool) error {
	cards := batch.Cards
	if mask {
		cards = make([]*models.Card, len(batch.Cards))
		for i, c := range batch.Cards {
			masked := *c
			masked.Number = cardgen.MaskPAN(c.Number)
			cards[i] = &masked
		}
	}

	switch format {
	case "text":
		_, err := fmt.Fprintln(w, models.FormatText(cards))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(&models.Batch{ID: batch.ID, CreatedAt: batch.CreatedAt, Cards: cards})
	case "iso8583":
		messages, err := authmsg.PackHex(cards, authmsg.DefaultParams(batch.CreatedAt))
		if err != nil {
			return fmt.Errorf("packing authorization requests: %w", err)
		}
		for _, m := range messages {
			if _, err := fmt.Fprintln(w, m); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func must(err error) {
	if err != nil {
		fail("%v", err)
	}
}
func must1[T any](v T, err error) T {
	if err != nil {
		fail("%v", err)
	}
	return v
}
func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
