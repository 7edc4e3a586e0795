package token

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseUnits converts a human decimal amount ("1.5") into integer base units
// scaled by decimals. Input beyond the token's precision is truncated, never
// rounded, so "1.9999999" with 6 decimals becomes 1999999 base units.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", amount)
	}
	return d.Truncate(int32(decimals)).Shift(int32(decimals)).BigInt(), nil
}

// FormatUnits converts integer base units into a human decimal string.
// The result is exact with trailing zeros trimmed: 1500000 at 6 decimals
// renders as "1.5", zero as "0".
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}
