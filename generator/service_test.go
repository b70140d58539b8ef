package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alovak/cardflow-bingen/internal/binlookup"
	"github.com/alovak/cardflow-bingen/internal/cardgen"
	"github.com/alovak/cardflow-bingen/internal/expiry"
)

type stubLookup struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (s *stubLookup) Lookup(_ context.Context, bin string) binlookup.Metadata {
	s.mu.Lock()
	s.calls = append(s.calls, bin)
	s.mu.Unlock()
	if s.fail {
		return binlookup.Fallback(bin)
	}
	return binlookup.Metadata{
		Number:  binlookup.Number{IIN: bin, Length: 16, Luhn: true},
		Scheme:  "stub",
		Success: true,
	}
}

type panicLookup struct{}

func (panicLookup) Lookup(context.Context, string) binlookup.Metadata {
	panic("lookup exploded")
}

type panicRand struct{}

func (panicRand) Intn(int) int { panic("entropy exhausted") }

func newTestService(lookup BINLookup, seed int64, cfg *Config) *Service {
	s := NewService(lookup, cardgen.NewSeededRand(seed), cfg)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestGenerateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("visa bin produces valid 16 digit cards", func(t *testing.T) {
		s := newTestService(&stubLookup{}, 1, nil)

		batch, err := s.GenerateBatch(ctx, Request{
			BINs:     []string{"424242"},
			Month:    expiry.Random,
			Year:     expiry.Random,
			Quantity: 3,
		})
		require.NoError(t, err)
		require.NotEmpty(t, batch.ID)
		require.Len(t, batch.Cards, 3)

		years := expiry.Years(s.now())
		for _, c := range batch.Cards {
			require.Equal(t, cardgen.Visa, c.Network)
			require.Len(t, strings.Split(c.Number, " "), 4)
			pan := c.PAN()
			require.Len(t, pan, 16)
			require.True(t, strings.HasPrefix(pan, "424242"))
			require.True(t, cardgen.LuhnValid(pan))
			require.Contains(t, expiry.Months(), c.Month)
			require.Contains(t, years, c.Year)
			require.Len(t, c.CVV, 3)
			require.NotNil(t, c.BINInfo)
			require.Equal(t, "424242", c.BINInfo.Number.IIN)
		}
	})

	t.Run("amex bin uses 15 digits and 4/6/5 grouping", func(t *testing.T) {
		s := newTestService(nil, 2, nil)

		batch, err := s.GenerateBatch(ctx, Request{
			BINs:     []string{"371449"},
			Month:    "07",
			Year:     "29",
			Quantity: 5,
		})
		require.NoError(t, err)
		require.Len(t, batch.Cards, 5)

		for _, c := range batch.Cards {
			require.Equal(t, cardgen.Amex, c.Network)
			groups := strings.Split(c.Number, " ")
			require.Len(t, groups, 3)
			require.Len(t, groups[0], 4)
			require.Len(t, groups[1], 6)
			require.Len(t, groups[2], 5)
			require.True(t, cardgen.LuhnValid(c.PAN()))
			require.Equal(t, "07", c.Month)
			require.Equal(t, "29", c.Year)
			require.Len(t, c.CVV, 4)
			require.Nil(t, c.BINInfo)
		}
	})

	t.Run("fixed cvv is used verbatim", func(t *testing.T) {
		s := newTestService(nil, 3, nil)

		batch, err := s.GenerateBatch(ctx, Request{
			BINs:     []string{"424242"},
			CVV:      "7",
			Month:    expiry.Random,
			Year:     expiry.Random,
			Quantity: 4,
		})
		require.NoError(t, err)
		for _, c := range batch.Cards {
			require.Equal(t, "7", c.CVV)
		}
	})

	t.Run("cards are drawn from every listed bin", func(t *testing.T) {
		lookup := &stubLookup{}
		s := newTestService(lookup, 4, nil)

		batch, err := s.GenerateBatch(ctx, Request{
			BINs:     []string{" 424242 ", "", "555555"},
			Month:    expiry.Random,
			Year:     expiry.Random,
			Quantity: MaxQuantity,
		})
		require.NoError(t, err)

		seen := map[cardgen.Network]bool{}
		for _, c := range batch.Cards {
			seen[c.Network] = true
		}
		require.True(t, seen[cardgen.Visa])
		require.True(t, seen[cardgen.Mastercard])
		require.Len(t, lookup.calls, MaxQuantity)
	})

	t.Run("invalid bins are all reported and nothing is looked up", func(t *testing.T) {
		lookup := &stubLookup{}
		s := newTestService(lookup, 5, nil)

		batch, err := s.GenerateBatch(ctx, Request{
			BINs:     []string{"123456", "ABCDEF"},
			Month:    expiry.Random,
			Year:     expiry.Random,
			Quantity: 2,
		})
		require.Nil(t, batch)

		var invalid *InvalidBINError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, []string{"123456", "ABCDEF"}, invalid.BINs)
		require.True(t, IsValidation(err))
		require.Empty(t, lookup.calls)
	})

	t.Run("empty input", func(t *testing.T) {
		s := newTestService(nil, 6, nil)

		_, err := s.GenerateBatch(ctx, Request{BINs: []string{" ", ""}, Quantity: 1})
		require.ErrorIs(t, err, ErrEmptyInput)
		require.True(t, IsValidation(err))
	})

	t.Run("quantity is clamped", func(t *testing.T) {
		s := newTestService(nil, 7, nil)

		for q, want := range map[int]int{0: 1, -3: 1, 5: 5, 100: 100, 500: 100} {
			batch, err := s.GenerateBatch(ctx, Request{
				BINs:     []string{"424242"},
				Month:    expiry.Random,
				Year:     expiry.Random,
				Quantity: q,
			})
			require.NoError(t, err)
			require.Len(t, batch.Cards, want, "quantity %d", q)
		}
	})

	t.Run("failed lookups leave fallback metadata", func(t *testing.T) {
		s := newTestService(&stubLookup{fail: true}, 8, nil)

		batch, err := s.GenerateBatch(ctx, Request{
			BINs:     []string{"601100"},
			Month:    expiry.Random,
			Year:     expiry.Random,
			Quantity: 2,
		})
		require.NoError(t, err)
		for _, c := range batch.Cards {
			require.Equal(t, cardgen.Discover, c.Network)
			require.Equal(t, binlookup.Fallback("601100"), *c.BINInfo)
		}
	})

	t.Run("same seed gives same cards regardless of lookup concurrency", func(t *testing.T) {
		req := Request{
			BINs:     []string{"424242", "371449", "555555"},
			Month:    expiry.Random,
			Year:     expiry.Random,
			Quantity: 40,
		}

		sequential, err := newTestService(&stubLookup{}, 42, nil).GenerateBatch(ctx, req)
		require.NoError(t, err)
		concurrent, err := newTestService(&stubLookup{}, 42, &Config{LookupConcurrency: 8}).GenerateBatch(ctx, req)
		require.NoError(t, err)

		require.Len(t, concurrent.Cards, len(sequential.Cards))
		for i := range sequential.Cards {
			require.Equal(t, sequential.Cards[i].Number, concurrent.Cards[i].Number)
			require.Equal(t, sequential.Cards[i].CVV, concurrent.Cards[i].CVV)
			require.Equal(t, sequential.Cards[i].BINInfo.Number.IIN, concurrent.Cards[i].BINInfo.Number.IIN)
			require.True(t, strings.HasPrefix(sequential.Cards[i].PAN(), sequential.Cards[i].BINInfo.Number.IIN))
		}
	})

	t.Run("panic during synthesis aborts the batch", func(t *testing.T) {
		s := NewService(nil, panicRand{}, nil)

		batch, err := s.GenerateBatch(ctx, Request{
			BINs:     []string{"424242"},
			Month:    expiry.Random,
			Year:     expiry.Random,
			Quantity: 3,
		})
		require.Nil(t, batch)
		require.True(t, errors.Is(err, ErrGeneration))
		require.False(t, IsValidation(err))
	})
}

func TestGenerateBatch_ExpiryYearPerService(t *testing.T) {
	// 2026-12-31 20:00 UTC is already 2027 in Tokyo.
	at := time.Date(2026, time.December, 31, 20, 0, 0, 0, time.UTC)
	req := Request{BINs: []string{"424242"}, Month: expiry.Random, Year: expiry.Random, Quantity: MaxQuantity}

	utc := NewService(nil, cardgen.NewSeededRand(10), &Config{ExpiryTZ: "UTC"})
	utc.now = func() time.Time { return at }
	tokyo := NewService(nil, cardgen.NewSeededRand(10), &Config{ExpiryTZ: "Asia/Tokyo"})
	tokyo.now = func() time.Time { return at }

	fromTokyo, err := tokyo.GenerateBatch(context.Background(), req)
	require.NoError(t, err)
	fromUTC, err := utc.GenerateBatch(context.Background(), req)
	require.NoError(t, err)

	for _, c := range fromTokyo.Cards {
		require.NotEqual(t, "26", c.Year)
	}
	for _, c := range fromUTC.Cards {
		require.NotEqual(t, "36", c.Year)
	}
}

func TestGenerateBatch_LookupPanic(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		s := newTestService(panicLookup{}, 9, &Config{LookupConcurrency: concurrency})

		batch, err := s.GenerateBatch(context.Background(), Request{
			BINs:     []string{"424242"},
			Month:    expiry.Random,
			Year:     expiry.Random,
			Quantity: 5,
		})
		require.Nil(t, batch)
		require.ErrorIs(t, err, ErrGeneration)
		require.False(t, IsValidation(err))
	}
}

func TestSplitBINs(t *testing.T) {
	require.Equal(t, []string{"424242", "555555"}, SplitBINs(" 424242 ; ;555555;"))
	require.Empty(t, SplitBINs(""))
	require.Empty(t, SplitBINs(" ; "))
}

func TestLookupBIN(t *testing.T) {
	ctx := context.Background()

	network, md, err := newTestService(&stubLookup{}, 1, nil).LookupBIN(ctx, "371449")
	require.NoError(t, err)
	require.Equal(t, cardgen.Amex, network)
	require.Equal(t, "stub", md.Scheme)

	network, md, err = newTestService(nil, 1, nil).LookupBIN(ctx, "424242")
	require.NoError(t, err)
	require.Equal(t, cardgen.Visa, network)
	require.Nil(t, md)

	_, _, err = newTestService(nil, 1, nil).LookupBIN(ctx, "12")
	var invalid *InvalidBINError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, []string{"12"}, invalid.BINs)
}
