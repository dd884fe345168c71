package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownUnit is returned for a size whose suffix is not one of B, K, M, G.
var ErrUnknownUnit = errors.New("unknown memory unit")

// Unit multipliers converting a heap size token to megabytes.
// K and B are divided at a fixed scale before the final rounding.
const unitScale = 12

var (
	d1024 = decimal.NewFromInt(1024)

	GBMultiplier = d1024
	MBMultiplier = decimal.NewFromInt(1)
	KBMultiplier = decimal.NewFromInt(1).DivRound(d1024, unitScale)
	BMultiplier  = KBMultiplier.DivRound(d1024, unitScale)
)

// UnitMultiplier returns the megabyte multiplier for a unit suffix.
func UnitMultiplier(unit byte) (decimal.Decimal, bool) {
	switch unit {
	case 'G':
		return GBMultiplier, true
	case 'M':
		return MBMultiplier, true
	case 'K':
		return KBMultiplier, true
	case 'B':
		return BMultiplier, true
	}
	return decimal.Zero, false
}

// NormalizeToMB converts a size such as "2048K", "1.5G" or "0.0B" to megabytes,
// rounded half-to-even to two decimal places.
// Decimal commas are accepted ("12,5M").
func NormalizeToMB(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return decimal.Zero, fmt.Errorf("invalid memory size: %q", s)
	}

	multiplier, ok := UnitMultiplier(s[len(s)-1])
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(s[:len(s)-1], ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid memory size: %q", s)
	}

	return value.Mul(multiplier).RoundBank(2), nil
}

// FormatMB renders a megabyte count the way the JVM prints sizes.
func FormatMB(mb int) string {
	switch {
	case mb <= 0:
		return "0M"
	case mb >= 1024 && mb%1024 == 0:
		return fmt.Sprintf("%dG", mb/1024)
	case mb >= 1024:
		return fmt.Sprintf("%.2fG", float64(mb)/1024)
	default:
		return fmt.Sprintf("%dM", mb)
	}
}
