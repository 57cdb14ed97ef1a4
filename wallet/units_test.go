package wallet

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint8
		units    string
	}{
		{"0.1", 18, "100000000000000000"},
		{"1", 6, "1000000"},
		{"2.5", 6, "2500000"},
		{"0.0000001", 6, "0"},
		{"123.456789", 6, "123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			f, err := ParseAmount(tt.amount)
			require.NoError(t, err)
			units, err := ToBaseUnits(f, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.units, units.String())
		})
	}
}

func TestParseAmountRejects(t *testing.T) {
	for _, s := range []string{"", "   ", "abc", "-1", "inf", "+Inf", "-inf", "NaN", "1e400", "1,5"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseAmount(s)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestToBaseUnitsRejects(t *testing.T) {
	huge, err := ParseAmount("1e70")
	require.NoError(t, err)

	tests := []struct {
		name   string
		amount *big.Float
	}{
		{"nil", nil},
		{"infinite", new(big.Float).SetInf(false)},
		{"negative", big.NewFloat(-1)},
		{"overflows uint256", huge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ToBaseUnits(tt.amount, 18)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Nil(t, v)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(nil))
	assert.Equal(t, "0", FormatAmount(FromBaseUnits(big.NewInt(0), 18)))
	assert.Equal(t, "1.25", FormatAmount(FromBaseUnits(big.NewInt(1_250_000), 6)))
	assert.Equal(t, "42", FormatAmount(FromBaseUnits(big.NewInt(42), 0)))
}
