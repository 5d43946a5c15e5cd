package raffle

import "math/bits"

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmeticOverflow
	}
	return diff, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

func checkedAddInt64(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// FeeSplit is the breakdown of a single ticket purchase.
type FeeSplit struct {
	Total uint64
	Fee   uint64
	Net   uint64
}

// SplitFee computes total = price*quantity, fee = floor(total*percent/100) and net = total-fee.
// Every step is checked; nothing wraps.
func SplitFee(price uint64, quantity uint32, feePercent uint8) (FeeSplit, error) {
	total, err := checkedMul(price, uint64(quantity))
	if err != nil {
		return FeeSplit{}, err
	}
	scaled, err := checkedMul(total, uint64(feePercent))
	if err != nil {
		return FeeSplit{}, err
	}
	fee := scaled / percentDenominator
	net, err := checkedSub(total, fee)
	if err != nil {
		return FeeSplit{}, err
	}
	return FeeSplit{Total: total, Fee: fee, Net: net}, nil
}
