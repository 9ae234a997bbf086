// Package pricing evaluates European option prices.
//
// Two models satisfy the Model capability:
//   - BlackScholes: closed-form lognormal pricing
//   - Binomial: Cox-Ross-Rubinstein lattice
//
// Contracts are validated once in NewContract. The formulas additionally
// report ErrNumericDomain instead of returning NaN or Inf when a contract
// reaches them without validation.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DaysPerYear converts maturity in days into years.
const DaysPerYear = 365.0

var (
	// ErrInvalidParameter reports a contract input outside its domain.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumericDomain reports an evaluation that produced a non-finite value.
	ErrNumericDomain = errors.New("numeric domain error")

	// ErrUnknownOptionType reports an option type other than Call or Put.
	ErrUnknownOptionType = errors.New("unknown option type")
)

// OptionType selects the call or put side of a contract.
type OptionType int

// Option types. The zero value is not a valid type.
const (
	Call OptionType = iota + 1 // right to buy at the strike
	Put                        // right to sell at the strike
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionType(%d)", int(t))
	}
}

// ParseOptionType accepts "call", "c", "put" and "p" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOptionType, s)
}

// Model is implemented by every pricing model.
type Model interface {
	CallPrice() (float64, error)
	PutPrice() (float64, error)
}

// Price dispatches to the call or put side of m.
func Price(m Model, t OptionType) (float64, error) {
	switch t {
	case Call:
		return m.CallPrice()
	case Put:
		return m.PutPrice()
	}
	return 0, fmt.Errorf("%w: %v", ErrUnknownOptionType, t)
}

// Contract holds the five inputs of a European option.
type Contract struct {
	SpotPrice      float64 `json:"spot_price"`
	StrikePrice    float64 `json:"strike_price"`
	TimeToMaturity float64 `json:"time_to_maturity"` // years
	RiskFreeRate   float64 `json:"risk_free_rate"`
	Volatility     float64 `json:"volatility"`
}

// NewContract validates its inputs and converts maturityDays into years.
func NewContract(spot, strike, maturityDays, rate, vol float64) (Contract, error) {
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"spot price", spot, true},
		{"strike price", strike, true},
		{"maturity days", maturityDays, true},
		{"risk-free rate", rate, false},
		{"volatility", vol, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return Contract{}, fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameter, c.name, c.value)
		}
		if c.positive && c.value <= 0 {
			return Contract{}, fmt.Errorf("%w: %s must be > 0, got %v", ErrInvalidParameter, c.name, c.value)
		}
	}

	return Contract{
		SpotPrice:      spot,
		StrikePrice:    strike,
		TimeToMaturity: maturityDays / DaysPerYear,
		RiskFreeRate:   rate,
		Volatility:     vol,
	}, nil
}

// DiscountedStrike returns K·e^(−rT).
func (c Contract) DiscountedStrike() float64 {
	return c.StrikePrice * math.Exp(-c.RiskFreeRate*c.TimeToMaturity)
}

// finite wraps ErrNumericDomain around a non-finite result.
func finite(what string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s evaluated to %v", ErrNumericDomain, what, v)
	}
	return v, nil
}
