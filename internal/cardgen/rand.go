package cardgen

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// Rand is the randomness used for digit fill, BIN selection, CVV and expiry.
// *math/rand.Rand satisfies it, which lets tests pin exact outputs with a seed.
type Rand interface {
	Intn(n int) int
}

// CryptoRand draws unbiased values from crypto/rand. Safe for concurrent use.
type CryptoRand struct{}

// Intn panics if n <= 0 or the system random source fails.
func (CryptoRand) Intn(n int) int {
	if n <= 0 {
		panic("cardgen: invalid argument to Intn")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("cardgen: crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// lockedRand serializes access to a seeded math/rand source.
type lockedRand struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeededRand returns a deterministic Rand that may be shared between goroutines.
func NewSeededRand(seed int64) Rand {
	return &lockedRand{r: mrand.New(mrand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
