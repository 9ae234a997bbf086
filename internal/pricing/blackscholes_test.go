package pricing

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func mustContract(t *testing.T, spot, strike, days, rate, vol float64) Contract {
	t.Helper()
	c, err := NewContract(spot, strike, days, rate, vol)
	if err != nil {
		t.Fatalf("NewContract(%v, %v, %v, %v, %v): %v", spot, strike, days, rate, vol, err)
	}
	return c
}

func prices(t *testing.T, m Model) (call, put float64) {
	t.Helper()
	call, err := m.CallPrice()
	if err != nil {
		t.Fatalf("call price: %v", err)
	}
	put, err = m.PutPrice()
	if err != nil {
		t.Fatalf("put price: %v", err)
	}
	return call, put
}

func TestBlackScholesTextbookBenchmark(t *testing.T) {
	bs := NewBlackScholes(mustContract(t, 100, 100, 365, 0.05, 0.2))
	call, put := prices(t, bs)

	if math.Abs(call-10.4506) > 1e-4 {
		t.Fatalf("call: expected ≈10.4506, got %.6f", call)
	}
	if math.Abs(put-5.5735) > 1e-4 {
		t.Fatalf("put: expected ≈5.5735, got %.6f", put)
	}
}

func TestBlackScholesPutCallParity(t *testing.T) {
	spots := []float64{50, 90, 100, 110, 250}
	strikes := []float64{80, 100, 120}
	days := []float64{1, 30, 365, 1000}
	rates := []float64{-0.01, 0, 0.03, 0.1}
	vols := []float64{0.05, 0.2, 0.6, 1.5}

	for _, s := range spots {
		for _, k := range strikes {
			for _, d := range days {
				for _, r := range rates {
					for _, v := range vols {
						bs := NewBlackScholes(mustContract(t, s, k, d, r, v))
						call, put := prices(t, bs)
						rhs := s - k*math.Exp(-r*d/DaysPerYear)
						if math.Abs((call-put)-rhs) > 1e-6 {
							t.Fatalf("parity violated S=%v K=%v days=%v r=%v σ=%v: C-P=%.10f S-Ke^-rT=%.10f", s, k, d, r, v, call-put, rhs)
						}
					}
				}
			}
		}
	}
}

func TestBlackScholesAtTheMoneyZeroRateSymmetry(t *testing.T) {
	for _, v := range []float64{0.1, 0.3, 0.9} {
		bs := NewBlackScholes(mustContract(t, 75, 75, 180, 0, v))
		call, put := prices(t, bs)
		if math.Abs(call-put) > 1e-9 {
			t.Fatalf("σ=%v: expected call == put, got %.12f vs %.12f", v, call, put)
		}
	}
}

func TestBlackScholesVolatilityMonotonic(t *testing.T) {
	prevCall, prevPut := -1.0, -1.0
	for v := 0.05; v <= 1.0; v += 0.05 {
		bs := NewBlackScholes(mustContract(t, 100, 110, 200, 0.05, v))
		call, put := prices(t, bs)
		if call <= prevCall || put <= prevPut {
			t.Fatalf("σ=%.2f: prices not strictly increasing: call %.8f -> %.8f, put %.8f -> %.8f", v, prevCall, call, prevPut, put)
		}
		prevCall, prevPut = call, put
	}
}

func TestBlackScholesMoneynessLimits(t *testing.T) {
	const (
		strike = 100.0
		days   = 365.0
		rate   = 0.05
		vol    = 0.2
	)
	discK := strike * math.Exp(-rate*days/DaysPerYear)

	deep := NewBlackScholes(mustContract(t, 1e6, strike, days, rate, vol))
	call, put := prices(t, deep)
	if math.Abs(call-(1e6-discK)) > 1e-6 {
		t.Fatalf("deep ITM call: expected %.6f, got %.6f", 1e6-discK, call)
	}
	if put > 1e-9 {
		t.Fatalf("deep OTM put: expected ≈0, got %g", put)
	}

	tiny := NewBlackScholes(mustContract(t, 1e-6, strike, days, rate, vol))
	call, put = prices(t, tiny)
	if call > 1e-9 {
		t.Fatalf("deep OTM call: expected ≈0, got %g", call)
	}
	if math.Abs(put-(discK-1e-6)) > 1e-6 {
		t.Fatalf("deep ITM put: expected %.6f, got %.6f", discK, put)
	}
}

func TestBlackScholesVanishingVolatility(t *testing.T) {
	cases := []struct {
		name string
		spot float64
	}{
		{"in the money", 120},
		{"at the money", 100},
		{"out of the money", 90},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bs := NewBlackScholes(mustContract(t, tc.spot, 100, 365, 0.05, 1e-9))
			call, err := bs.CallPrice()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := math.Max(tc.spot-100*math.Exp(-0.05), 0)
			if math.Abs(call-want) > 1e-6 {
				t.Fatalf("expected discounted intrinsic %.8f, got %.8f", want, call)
			}
		})
	}
}

func TestBlackScholesNumericDomain(t *testing.T) {
	cases := []struct {
		name string
		c    Contract
	}{
		{"zero volatility", Contract{SpotPrice: 100, StrikePrice: 100, TimeToMaturity: 1, RiskFreeRate: 0.05, Volatility: 0}},
		{"zero maturity", Contract{SpotPrice: 100, StrikePrice: 100, TimeToMaturity: 0, RiskFreeRate: 0.05, Volatility: 0.2}},
		{"negative maturity", Contract{SpotPrice: 100, StrikePrice: 100, TimeToMaturity: -1, RiskFreeRate: 0.05, Volatility: 0.2}},
		{"zero spot", Contract{SpotPrice: 0, StrikePrice: 100, TimeToMaturity: 1, RiskFreeRate: 0.05, Volatility: 0.2}},
		{"negative strike", Contract{SpotPrice: 100, StrikePrice: -5, TimeToMaturity: 1, RiskFreeRate: 0.05, Volatility: 0.2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bs := &BlackScholes{Contract: tc.c}
			if _, err := bs.CallPrice(); !errors.Is(err, ErrNumericDomain) {
				t.Fatalf("call: expected ErrNumericDomain, got %v", err)
			}
			if _, err := bs.PutPrice(); !errors.Is(err, ErrNumericDomain) {
				t.Fatalf("put: expected ErrNumericDomain, got %v", err)
			}
			if _, err := bs.Greeks(Call); !errors.Is(err, ErrNumericDomain) {
				t.Fatalf("greeks: expected ErrNumericDomain, got %v", err)
			}
		})
	}
}

func TestBlackScholesRepeatable(t *testing.T) {
	bs := NewBlackScholes(mustContract(t, 101.5, 97, 45, 0.031, 0.27))
	want, _ := prices(t, bs)

	var wg sync.WaitGroup
	got := make([]float64, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = bs.CallPrice()
		}(i)
	}
	wg.Wait()

	for i, v := range got {
		if v != want {
			t.Fatalf("evaluation %d: expected %v, got %v", i, want, v)
		}
	}
}

func TestBlackScholesGreeksBenchmark(t *testing.T) {
	bs := NewBlackScholes(mustContract(t, 100, 100, 365, 0.05, 0.2))

	call, err := bs.Greeks(Call)
	if err != nil {
		t.Fatalf("call greeks: %v", err)
	}
	put, err := bs.Greeks(Put)
	if err != nil {
		t.Fatalf("put greeks: %v", err)
	}

	if math.Abs(call.Delta-0.636831) > 1e-5 {
		t.Fatalf("call delta: expected ≈0.636831, got %.6f", call.Delta)
	}
	if math.Abs(call.Gamma-0.018762) > 1e-5 {
		t.Fatalf("gamma: expected ≈0.018762, got %.6f", call.Gamma)
	}
	if math.Abs(call.Vega-37.524) > 1e-3 {
		t.Fatalf("vega: expected ≈37.524, got %.4f", call.Vega)
	}
	if math.Abs((call.Delta-put.Delta)-1) > 1e-12 {
		t.Fatalf("delta parity: call %.6f put %.6f", call.Delta, put.Delta)
	}
	if call.Gamma != put.Gamma || call.Vega != put.Vega {
		t.Fatalf("gamma/vega differ between sides: %+v vs %+v", call, put)
	}
}

func TestBlackScholesGreeksMatchFiniteDifferences(t *testing.T) {
	base := Contract{SpotPrice: 105, StrikePrice: 100, TimeToMaturity: 0.5, RiskFreeRate: 0.03, Volatility: 0.25}
	const h = 1e-4

	bump := func(t *testing.T, side OptionType, mutate func(c *Contract, d float64)) float64 {
		t.Helper()
		up, down := base, base
		mutate(&up, h)
		mutate(&down, -h)
		pu, err := Price(NewBlackScholes(up), side)
		if err != nil {
			t.Fatalf("bumped up: %v", err)
		}
		pd, err := Price(NewBlackScholes(down), side)
		if err != nil {
			t.Fatalf("bumped down: %v", err)
		}
		return (pu - pd) / (2 * h)
	}

	for _, side := range []OptionType{Call, Put} {
		t.Run(side.String(), func(t *testing.T) {
			g, err := NewBlackScholes(base).Greeks(side)
			if err != nil {
				t.Fatalf("greeks: %v", err)
			}

			checks := []struct {
				name     string
				analytic float64
				numeric  float64
			}{
				{"delta", g.Delta, bump(t, side, func(c *Contract, d float64) { c.SpotPrice += d })},
				{"vega", g.Vega, bump(t, side, func(c *Contract, d float64) { c.Volatility += d })},
				{"rho", g.Rho, bump(t, side, func(c *Contract, d float64) { c.RiskFreeRate += d })},
				{"theta", g.Theta, -bump(t, side, func(c *Contract, d float64) { c.TimeToMaturity += d })},
			}
			for _, c := range checks {
				if math.Abs(c.analytic-c.numeric) > 1e-4*math.Max(1, math.Abs(c.numeric)) {
					t.Fatalf("%s: analytic %.8f, finite difference %.8f", c.name, c.analytic, c.numeric)
				}
			}
		})
	}
}

func TestBlackScholesParityResidual(t *testing.T) {
	bs := NewBlackScholes(mustContract(t, 87, 93, 120, 0.045, 0.33))
	res, err := bs.ParityResidual()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res) > 1e-9 {
		t.Fatalf("expected residual ≈0, got %g", res)
	}
}
