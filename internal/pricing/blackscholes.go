package pricing

import (
	"fmt"
	"math"
)

// BlackScholes prices European options on a non-dividend-paying underlying
// under constant rate and volatility.
type BlackScholes struct {
	Contract
}

// NewBlackScholes returns the closed-form model for c.
func NewBlackScholes(c Contract) *BlackScholes {
	return &BlackScholes{Contract: c}
}

// d1d2 derives the standardized distances used by every formula below.
//
//	d1 = (ln(S/K) + (r + σ²/2)·T) / (σ·√T)
//	d2 = d1 − σ·√T
func (bs *BlackScholes) d1d2() (d1, d2 float64, err error) {
	S, K, T, r, sigma := bs.SpotPrice, bs.StrikePrice, bs.TimeToMaturity, bs.RiskFreeRate, bs.Volatility

	volSqrtT := sigma * math.Sqrt(T)
	if volSqrtT == 0 || math.IsNaN(volSqrtT) {
		return 0, 0, fmt.Errorf("%w: σ·√T = %v (σ=%v, T=%v)", ErrNumericDomain, volSqrtT, sigma, T)
	}
	if S <= 0 || K <= 0 {
		return 0, 0, fmt.Errorf("%w: ln(S/K) undefined for S=%v, K=%v", ErrNumericDomain, S, K)
	}

	d1 = (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / volSqrtT
	d2 = d1 - volSqrtT
	if math.IsNaN(d1) || math.IsNaN(d2) {
		return 0, 0, fmt.Errorf("%w: d1=%v d2=%v", ErrNumericDomain, d1, d2)
	}
	return d1, d2, nil
}

// CallPrice returns C = S·Φ(d1) − K·e^(−rT)·Φ(d2).
func (bs *BlackScholes) CallPrice() (float64, error) {
	d1, d2, err := bs.d1d2()
	if err != nil {
		return 0, err
	}
	return finite("call price", bs.SpotPrice*normCDF(d1)-bs.DiscountedStrike()*normCDF(d2))
}

// PutPrice returns P = K·e^(−rT)·Φ(−d2) − S·Φ(−d1).
func (bs *BlackScholes) PutPrice() (float64, error) {
	d1, d2, err := bs.d1d2()
	if err != nil {
		return 0, err
	}
	return finite("put price", bs.DiscountedStrike()*normCDF(-d2)-bs.SpotPrice*normCDF(-d1))
}

// Greeks are first and second order sensitivities of an option price.
// Vega and Rho are per unit change (not per percentage point), Theta is per year.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// Greeks returns the analytic sensitivities for the given side.
func (bs *BlackScholes) Greeks(t OptionType) (Greeks, error) {
	d1, d2, err := bs.d1d2()
	if err != nil {
		return Greeks{}, err
	}

	S, T, sigma := bs.SpotPrice, bs.TimeToMaturity, bs.Volatility
	sqrtT := math.Sqrt(T)
	discK := bs.DiscountedStrike()
	pdf := normPDF(d1)

	g := Greeks{
		Gamma: pdf / (S * sigma * sqrtT),
		Vega:  S * pdf * sqrtT,
	}
	decay := -S * pdf * sigma / (2 * sqrtT)

	switch t {
	case Call:
		g.Delta = normCDF(d1)
		g.Theta = decay - bs.RiskFreeRate*discK*normCDF(d2)
		g.Rho = discK * T * normCDF(d2)
	case Put:
		g.Delta = normCDF(d1) - 1
		g.Theta = decay + bs.RiskFreeRate*discK*normCDF(-d2)
		g.Rho = -discK * T * normCDF(-d2)
	default:
		return Greeks{}, fmt.Errorf("%w: %v", ErrUnknownOptionType, t)
	}

	for name, v := range map[string]float64{"delta": g.Delta, "gamma": g.Gamma, "vega": g.Vega, "theta": g.Theta, "rho": g.Rho} {
		if _, err := finite(name, v); err != nil {
			return Greeks{}, err
		}
	}
	return g, nil
}

// ParityResidual returns (C − P) − (S − K·e^(−rT)), which is zero up to
// rounding for any consistent pair of prices.
func (bs *BlackScholes) ParityResidual() (float64, error) {
	call, err := bs.CallPrice()
	if err != nil {
		return 0, err
	}
	put, err := bs.PutPrice()
	if err != nil {
		return 0, err
	}
	return (call - put) - (bs.SpotPrice - bs.DiscountedStrike()), nil
}
