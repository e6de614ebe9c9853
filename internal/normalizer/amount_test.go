package normalizer

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountPolicies_Convert(t *testing.T) {
	tests := []struct {
		amount   string
		major    int64
		major2dp int64
		minor    int64
	}{
		{"30.00", 30, 30, 3000},
		{"30", 30, 30, 3000},
		{"0.01", 0, 0, 1},
		{"10.5", 11, 11, 1050},
		{"10.49", 10, 10, 1049},
		{"30.495", 30, 31, 3050},
		{"19.999", 20, 20, 2000},
		{"1234.567", 1235, 1235, 123457},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)

			for _, c := range []struct {
				policy AmountPolicy
				want   int64
			}{{MajorUnits, tt.major}, {MajorUnitsTwoDecimals, tt.major2dp}, {MinorUnits, tt.minor}} {
				got, err := c.policy.Convert(amount)
				require.NoError(t, err, c.policy.Name)
				assert.Equal(t, c.want, got, c.policy.Name)
			}
		})
	}
}

func TestAmountPolicies_Convert_OutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		policy AmountPolicy
		amount string
	}{
		{"minor units wraps past int64", MinorUnits, "200000000000000000"},
		{"major units beyond int64", MajorUnits, "9223372036854775808"},
		{"two decimals beyond int64", MajorUnitsTwoDecimals, "1e30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.policy.Convert(decimal.RequireFromString(tt.amount))
			assert.ErrorIs(t, err, ErrAmountOutOfRange)
		})
	}

	got, err := MajorUnits.Convert(decimal.NewFromInt(math.MaxInt64))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestAmountDecoders(t *testing.T) {
	amount := decimal.NewFromInt(3000)

	assert.Equal(t, "30.00", DecodeMinorUnits.Decode(amount).StringFixed(2))
	assert.Equal(t, "3000", DecodeMajorUnits.Decode(amount).String())
	assert.Equal(t, "0.01", DecodeMinorUnits.Decode(decimal.NewFromInt(1)).String())
}

func TestLookupAmountPolicy(t *testing.T) {
	for _, name := range AmountPolicyNames() {
		p, err := LookupAmountPolicy(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name)
	}

	_, err := LookupAmountPolicy("cents")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minor_units")
}

func TestLookupAmountDecoder(t *testing.T) {
	d, err := LookupAmountDecoder("minor_units")
	require.NoError(t, err)
	assert.Equal(t, "minor_units", d.Name)

	_, err = LookupAmountDecoder("")
	assert.Error(t, err)
}

func TestAmountPolicyNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{"major_units", "major_units_2dp", "minor_units"}, AmountPolicyNames())
	assert.Equal(t, []string{"major_units", "minor_units"}, AmountDecoderNames())

	var names []string
	for _, p := range AmountPolicies() {
		names = append(names, p.Name)
	}
	assert.Equal(t, AmountPolicyNames(), names)
}
