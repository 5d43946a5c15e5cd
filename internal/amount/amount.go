package amount

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Decimals is the number of nano units in one whole unit, as a power of ten.
const Decimals = 9

var (
	ErrNegative  = errors.New("amount must not be negative")
	ErrPrecision = errors.New("amount has more than 9 decimal places")
	ErrTooLarge  = errors.New("amount does not fit in 64 bits")
)

var maxNanos = decimal.NewFromUint64(math.MaxUint64)

// Parse converts a decimal string such as "0.1" into nano units.
func Parse(value string) (uint64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return FromDecimal(d)
}

func FromDecimal(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, ErrNegative
	}
	nanos := d.Shift(Decimals)
	if !nanos.Equal(nanos.Truncate(0)) {
		return 0, ErrPrecision
	}
	if nanos.GreaterThan(maxNanos) {
		return 0, ErrTooLarge
	}
	return nanos.BigInt().Uint64(), nil
}

func ToDecimal(nanos uint64) decimal.Decimal {
	return decimal.NewFromUint64(nanos).Shift(-Decimals)
}

// Format renders nano units as a plain decimal string without trailing zeros.
func Format(nanos uint64) string {
	return ToDecimal(nanos).String()
}
