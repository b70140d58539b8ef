package expiry

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alovak/cardflow-bingen/internal/cardgen"
)

// Random selects a uniformly drawn month or year instead of a fixed one.
const Random = "random"

// YearSpan is how many consecutive years, starting with the current one, can be drawn.
const YearSpan = 10

// Months returns "01".."12".
func Months() []string {
	out := make([]string, 12)
	for i := range out {
		out[i] = fmt.Sprintf("%02d", i+1)
	}
	return out
}

// Years returns the two-digit form of the YearSpan years starting at now's
// year, read in now's own location.
func Years(now time.Time) []string {
	first := now.Year()
	out := make([]string, YearSpan)
	for i := range out {
		out[i] = fmt.Sprintf("%02d", (first+i)%100)
	}
	return out
}

// PickMonth draws a month when sel is Random and returns sel unchanged otherwise.
func PickMonth(sel string, rnd cardgen.Rand) string {
	if sel != Random {
		return sel
	}
	months := Months()
	return months[rnd.Intn(len(months))]
}

// PickYear draws one of Years(now) when sel is Random and returns sel unchanged otherwise.
func PickYear(sel string, now time.Time, rnd cardgen.Rand) string {
	if sel != Random {
		return sel
	}
	years := Years(now)
	return years[rnd.Intn(len(years))]
}

// ValidateMonth accepts Random or a two-digit month 01..12.
func ValidateMonth(sel string) error {
	if sel == Random {
		return nil
	}
	if len(sel) != 2 || !cardgen.IsDigits(sel) {
		return fmt.Errorf("month must be %q or MM", Random)
	}
	mm, _ := strconv.Atoi(sel)
	if mm < 1 || mm > 12 {
		return fmt.Errorf("month must be 01..12")
	}
	return nil
}

// ValidateYear accepts Random or any two-digit year.
func ValidateYear(sel string) error {
	if sel == Random {
		return nil
	}
	if len(sel) != 2 || !cardgen.IsDigits(sel) {
		return fmt.Errorf("year must be %q or YY", Random)
	}
	return nil
}

// CardFace returns expiry as MM/YY for card imprint.
func CardFace(mm, yy string) string {
	return mm + "/" + yy
}

// YYMM returns the ISO 8583 expiration date form.
func YYMM(mm, yy string) string {
	return yy + mm
}

// ValidateYYMM checks a YYMM expiry with a month in 01..12.
func ValidateYYMM(yymm string) error {
	if len(yymm) != 4 {
		return fmt.Errorf("expiry must be YYMM (4 digits)")
	}
	if !cardgen.IsDigits(yymm) {
		return fmt.Errorf("expiry must be digits: YYMM")
	}
	mm := int(yymm[2]-'0')*10 + int(yymm[3]-'0')
	if mm < 1 || mm > 12 {
		return fmt.Errorf("expiry month must be 01..12")
	}
	return nil
}
