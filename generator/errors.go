package generator

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when no BIN is left after trimming.
var ErrEmptyInput = errors.New("at least one BIN is required")

// ErrGeneration wraps unexpected faults that aborted a batch.
var ErrGeneration = errors.New("error generating cards")

// InvalidBINError names every BIN that failed format or network checks.
type InvalidBINError struct {
	BINs []string
}

func (e *InvalidBINError) Error() string {
	return "invalid BIN(s): " + strings.Join(e.BINs, ", ")
}

// IsValidation reports whether err is a caller input problem.
func IsValidation(err error) bool {
	var invalid *InvalidBINError
	return errors.Is(err, ErrEmptyInput) || errors.As(err, &invalid)
}
