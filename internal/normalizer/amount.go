package normalizer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// ErrAmountOutOfRange is returned when a converted amount does not fit the
// provider's integer field.
var ErrAmountOutOfRange = errors.New("amount out of range")

// AmountPolicy converts a major-unit amount into the integer the provider
// expects on the create call. The provider contract has changed between
// revisions, so the policy is selected by name from configuration.
type AmountPolicy struct {
	Name    string
	Convert func(amount decimal.Decimal) (int64, error)
}

// AmountDecoder converts an amount reported by the provider back into major
// units. It is configured independently of the outbound AmountPolicy.
type AmountDecoder struct {
	Name   string
	Decode func(amount decimal.Decimal) decimal.Decimal
}

var (
	// MajorUnits sends the amount rounded to whole reais (30.00 -> 30).
	MajorUnits = AmountPolicy{
		Name: "major_units",
		Convert: func(amount decimal.Decimal) (int64, error) {
			return toInt64(amount.Round(0))
		},
	}

	// MajorUnitsTwoDecimals rounds to centavos first, then to whole reais.
	MajorUnitsTwoDecimals = AmountPolicy{
		Name: "major_units_2dp",
		Convert: func(amount decimal.Decimal) (int64, error) {
			return toInt64(amount.Round(2).Round(0))
		},
	}

	// MinorUnits sends centavos: round(amount * 100).
	MinorUnits = AmountPolicy{
		Name: "minor_units",
		Convert: func(amount decimal.Decimal) (int64, error) {
			return toInt64(amount.Mul(hundred).Round(0))
		},
	}
)

// toInt64 returns the integer value of a whole decimal, refusing values
// that IntPart would silently wrap.
func toInt64(d decimal.Decimal) (int64, error) {
	if d.Abs().GreaterThan(maxInt64) {
		return 0, fmt.Errorf("%s: %w", d.String(), ErrAmountOutOfRange)
	}
	return d.IntPart(), nil
}

var (
	// DecodeMinorUnits divides the provider amount by 100.
	DecodeMinorUnits = AmountDecoder{
		Name: "minor_units",
		Decode: func(amount decimal.Decimal) decimal.Decimal {
			return amount.Div(hundred)
		},
	}

	// DecodeMajorUnits takes the provider amount as is.
	DecodeMajorUnits = AmountDecoder{
		Name: "major_units",
		Decode: func(amount decimal.Decimal) decimal.Decimal {
			return amount
		},
	}
)

var amountPolicies = map[string]AmountPolicy{
	MajorUnits.Name:            MajorUnits,
	MajorUnitsTwoDecimals.Name: MajorUnitsTwoDecimals,
	MinorUnits.Name:            MinorUnits,
}

var amountDecoders = map[string]AmountDecoder{
	DecodeMinorUnits.Name: DecodeMinorUnits,
	DecodeMajorUnits.Name: DecodeMajorUnits,
}

// LookupAmountPolicy returns the outbound policy registered under name.
func LookupAmountPolicy(name string) (AmountPolicy, error) {
	p, ok := amountPolicies[name]
	if !ok {
		return AmountPolicy{}, fmt.Errorf("unknown amount policy %q (valid: %v)", name, AmountPolicyNames())
	}
	return p, nil
}

// LookupAmountDecoder returns the inbound decoder registered under name.
func LookupAmountDecoder(name string) (AmountDecoder, error) {
	d, ok := amountDecoders[name]
	if !ok {
		return AmountDecoder{}, fmt.Errorf("unknown response amount policy %q (valid: %v)", name, AmountDecoderNames())
	}
	return d, nil
}

// AmountPolicies returns every registered outbound policy ordered by name.
func AmountPolicies() []AmountPolicy {
	policies := make([]AmountPolicy, 0, len(amountPolicies))
	for _, name := range AmountPolicyNames() {
		policies = append(policies, amountPolicies[name])
	}
	return policies
}

func AmountPolicyNames() []string {
	return sortedKeys(amountPolicies)
}

func AmountDecoderNames() []string {
	return sortedKeys(amountDecoders)
}

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
