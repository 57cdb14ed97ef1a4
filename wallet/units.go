package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const precision = 256

// maxUint256 bounds every value an EVM transaction or token call can carry
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a decimal amount such as "0.25"
func ParseAmount(s string) (*big.Float, error) {
	f, ok := new(big.Float).SetPrec(precision).SetString(strings.TrimSpace(s))
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	if f.IsInf() {
		return nil, fmt.Errorf("%w: amount must be finite: %s", ErrInvalidAmount, s)
	}
	if f.Sign() < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative: %s", ErrInvalidAmount, s)
	}
	if f.Cmp(new(big.Float).SetInt(maxUint256)) > 0 {
		return nil, fmt.Errorf("%w: amount out of range: %s", ErrInvalidAmount, s)
	}
	return f, nil
}

// ToBaseUnits converts a non-negative decimal amount into integer token units,
// rounding to the nearest unit. The result must fit in a uint256.
func ToBaseUnits(amount *big.Float, decimals uint8) (*big.Int, error) {
	if amount == nil {
		return nil, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	if amount.IsInf() || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	scale := new(big.Float).SetPrec(precision).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	scaled := new(big.Float).SetPrec(precision).Mul(amount, scale)
	scaled.Add(scaled, big.NewFloat(0.5))
	v, _ := scaled.Int(nil)
	if v == nil || v.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%w: %s exceeds uint256 at %d decimals", ErrInvalidAmount, amount.Text('g', 10), decimals)
	}
	return v, nil
}

// FromBaseUnits converts integer token units into a decimal amount
func FromBaseUnits(units *big.Int, decimals uint8) *big.Float {
	scale := new(big.Float).SetPrec(precision).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	return new(big.Float).SetPrec(precision).Quo(new(big.Float).SetPrec(precision).SetInt(units), scale)
}

// FormatAmount renders an amount without trailing zeros
func FormatAmount(f *big.Float) string {
	if f == nil {
		return "0"
	}
	s := f.Text('f', 18)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "" || s == "-0" {
		return "0"
	}
	return s
}
