package generator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alovak/cardflow-bingen/generator/models"
	"github.com/alovak/cardflow-bingen/internal/binlookup"
	"github.com/alovak/cardflow-bingen/internal/cardgen"
	"github.com/alovak/cardflow-bingen/internal/expiry"
	"github.com/alovak/cardflow-bingen/internal/logger"
	"github.com/alovak/cardflow-bingen/internal/security"
)

const (
	MinQuantity = 1
	MaxQuantity = 100

	// yieldEvery is how many units are synthesized between scheduler yields.
	yieldEvery = 10
)

// BINLookup enriches a BIN with issuer metadata. Implementations absorb
// their own failures.
type BINLookup interface {
	Lookup(ctx context.Context, bin string) binlookup.Metadata
}

// Request is one batch. Month and Year take expiry.Random or a fixed value;
// an empty CVV means synthesize one per card.
type Request struct {
	BINs     []string
	CVV      string
	Month    string
	Year     string
	Quantity int
}

type Service struct {
	lookup      BINLookup
	rnd         cardgen.Rand
	cvv         security.CVVProvider
	concurrency int
	now         func() time.Time
	// loc decides which calendar year counts as current for expiry draws.
	loc *time.Location
}

// NewService wires a generator. lookup may be nil, in which case cards carry
// no BIN metadata. An unknown cfg.ExpiryTZ falls back to UTC.
func NewService(lookup BINLookup, rnd cardgen.Rand, cfg *Config) *Service {
	if rnd == nil {
		rnd = cardgen.CryptoRand{}
	}
	concurrency := 1
	loc := time.UTC
	if cfg != nil {
		if cfg.LookupConcurrency > 0 {
			concurrency = cfg.LookupConcurrency
		}
		if l, err := time.LoadLocation(cfg.ExpiryTZ); err == nil {
			loc = l
		}
	}
	return &Service{
		lookup:      lookup,
		rnd:         rnd,
		cvv:         security.NewRandomProvider(rnd),
		concurrency: concurrency,
		now:         time.Now,
		loc:         loc,
	}
}

// SplitBINs splits a ";"-separated BIN list, trimming entries and dropping empties.
func SplitBINs(raw string) []string {
	return normalizeBINs(strings.Split(raw, ";"))
}

// ClampQuantity bounds q to [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

func normalizeBINs(bins []string) []string {
	out := make([]string, 0, len(bins))
	for _, b := range bins {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// GenerateBatch validates the request and produces ClampQuantity(req.Quantity)
// cards. Validation failures are returned before any card is built.
func (s *Service) GenerateBatch(ctx context.Context, req Request) (*models.Batch, error) {
	bins := normalizeBINs(req.BINs)
	if len(bins) == 0 {
		return nil, ErrEmptyInput
	}

	var invalid []string
	for _, bin := range bins {
		if !cardgen.IsValidBIN(bin) {
			invalid = append(invalid, bin)
		}
	}
	if len(invalid) > 0 {
		return nil, &InvalidBINError{BINs: invalid}
	}

	batch := &models.Batch{
		ID:        uuid.New().String(),
		CreatedAt: s.now().UTC(),
	}
	log, ctx := logger.With(ctx, slog.String("batch_id", batch.ID))

	quantity := ClampQuantity(req.Quantity)
	cards, picked, err := s.synthesize(bins, req, quantity)
	if err != nil {
		log.Error("generating cards", slog.Any("err", err))
		return nil, err
	}

	if err := s.enrich(ctx, cards, picked); err != nil {
		log.Error("enriching cards", slog.Any("err", err))
		return nil, err
	}
	batch.Cards = cards

	log.Info("batch generated",
		slog.Int("quantity", quantity),
		slog.Int("bins", len(bins)),
	)
	return batch, nil
}

// synthesize builds the card data for every unit and reports which BIN each
// unit was drawn from. A panic inside the randomness or formatting code
// aborts the whole batch.
func (s *Service) synthesize(bins []string, req Request, quantity int) (cards []*models.Card, picked []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			cards, picked = nil, nil
			err = fmt.Errorf("%w: %v", ErrGeneration, r)
		}
	}()

	now := s.now().In(s.loc)
	cards = make([]*models.Card, quantity)
	picked = make([]string, quantity)
	for i := 0; i < quantity; i++ {
		bin := bins[s.rnd.Intn(len(bins))]
		picked[i] = bin
		network := cardgen.Classify(bin)
		pan := cardgen.GeneratePAN(bin, s.rnd)
		month := expiry.PickMonth(req.Month, s.rnd)
		year := expiry.PickYear(req.Year, now, s.rnd)
		cvv := req.CVV
		if cvv == "" {
			cvv = s.cvv.ComputeCVV(network)
		}

		cards[i] = &models.Card{
			Number:  cardgen.FormatPAN(pan, network),
			Month:   month,
			Year:    year,
			CVV:     cvv,
			Network: network,
		}

		if i%yieldEvery == 0 {
			runtime.Gosched()
		}
	}
	return cards, picked, nil
}

// enrich attaches lookup metadata to each card. Every goroutine owns exactly
// one slot, so the result does not depend on scheduling. Lookups absorb their
// own failures; a panicking lookup aborts the batch.
func (s *Service) enrich(ctx context.Context, cards []*models.Card, bins []string) error {
	if s.lookup == nil {
		return nil
	}
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, card := range cards {
		card, bin := card, bins[i]
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: lookup %s: %v", ErrGeneration, bin, r)
				}
			}()
			md := s.lookup.Lookup(ctx, bin)
			card.BINInfo = &md
			return nil
		})
	}
	return g.Wait()
}

// LookupBIN validates bin and returns its network and metadata.
func (s *Service) LookupBIN(ctx context.Context, bin string) (cardgen.Network, *binlookup.Metadata, error) {
	bin = strings.TrimSpace(bin)
	if !cardgen.IsValidBIN(bin) {
		return cardgen.Unknown, nil, &InvalidBINError{BINs: []string{bin}}
	}
	network := cardgen.Classify(bin)
	if s.lookup == nil {
		return network, nil, nil
	}
	md := s.lookup.Lookup(ctx, bin)
	return network, &md, nil
}
