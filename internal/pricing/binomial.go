package pricing

import (
	"fmt"
	"math"
)

// Binomial prices European options on a Cox-Ross-Rubinstein lattice.
type Binomial struct {
	Contract
	Steps int
}

// MaxSteps bounds the lattice size. Pricing costs O(steps²) time and
// O(steps) memory.
const MaxSteps = 10000

// NewBinomial returns a lattice model with the given number of time steps,
// between 1 and MaxSteps.
func NewBinomial(c Contract, steps int) (*Binomial, error) {
	if err := checkSteps(steps); err != nil {
		return nil, err
	}
	return &Binomial{Contract: c, Steps: steps}, nil
}

func checkSteps(steps int) error {
	if steps < 1 || steps > MaxSteps {
		return fmt.Errorf("%w: steps must be in [1, %d], got %d", ErrInvalidParameter, MaxSteps, steps)
	}
	return nil
}

// CallPrice returns the lattice value of the European call.
func (b *Binomial) CallPrice() (float64, error) {
	return b.price(func(st float64) float64 { return math.Max(st-b.StrikePrice, 0) })
}

// PutPrice returns the lattice value of the European put.
func (b *Binomial) PutPrice() (float64, error) {
	return b.price(func(st float64) float64 { return math.Max(b.StrikePrice-st, 0) })
}

func (b *Binomial) price(payoff func(float64) float64) (float64, error) {
	if err := checkSteps(b.Steps); err != nil {
		return 0, err
	}
	if b.SpotPrice <= 0 {
		return 0, fmt.Errorf("%w: spot price %v", ErrNumericDomain, b.SpotPrice)
	}

	dt := b.TimeToMaturity / float64(b.Steps)
	move := b.Volatility * math.Sqrt(dt)
	up := math.Exp(move)
	down := 1 / up
	if up == down || math.IsNaN(up) {
		return 0, fmt.Errorf("%w: degenerate lattice (σ=%v, dt=%v)", ErrNumericDomain, b.Volatility, dt)
	}

	probUp := (math.Exp(b.RiskFreeRate*dt) - down) / (up - down)
	if probUp < 0 || probUp > 1 {
		return 0, fmt.Errorf("%w: risk-neutral probability %v outside [0,1]", ErrNumericDomain, probUp)
	}
	probDown := 1 - probUp
	disc := math.Exp(-b.RiskFreeRate * dt)

	// values[j] is the node reached by j up moves. The net exponent keeps
	// wide lattices from computing Inf*0.
	values := make([]float64, b.Steps+1)
	for j := range values {
		st := b.SpotPrice * math.Exp(move*float64(2*j-b.Steps))
		values[j] = payoff(st)
	}
	for i := b.Steps - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			values[j] = disc * (probUp*values[j+1] + probDown*values[j])
		}
	}

	return finite("lattice price", values[0])
}
