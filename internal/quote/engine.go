// Package quote turns a Config into call and put prices, resolving any
// omitted spot price or volatility through a market.Provider.
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/market"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// ErrMissingInput reports a value that is neither configured nor resolvable.
var ErrMissingInput = errors.New("missing input")

// Source values record where an input came from.
const (
	SourceConfig     = "config"
	SourceProvider   = "provider"
	SourceHistorical = "historical"
	SourceATM        = "atm"
)

// Engine resolves a Config into a priced quote, filling missing spot and
// volatility from a market.Provider.
type Engine struct {
	cfg  Config
	prov market.Provider
	now  func() time.Time
}

// Quote is the price of one side of the contract.
type Quote struct {
	Price  float64         `json:"price"`
	Greeks *pricing.Greeks `json:"greeks,omitempty"`
}

// Sources lists where each resolved input came from.
type Sources struct {
	Spot       string `json:"spot"`
	Strike     string `json:"strike"`
	Volatility string `json:"volatility"`
}

// Result is the outcome of Engine.Run: the contract actually priced, both
// sides, and where each input came from.
type Result struct {
	Underlying     string           `json:"underlying,omitempty"`
	Model          string           `json:"model"`
	AsOf           time.Time        `json:"as_of"`
	MaturityDays   float64          `json:"maturity_days"`
	Contract       pricing.Contract `json:"contract"`
	Call           Quote            `json:"call"`
	Put            Quote            `json:"put"`
	ParityResidual *float64         `json:"parity_residual,omitempty"`
	Sources        Sources          `json:"sources"`
}

// NewEngine returns an engine for cfg. prov may be nil when cfg carries
// both spot and volatility.
func NewEngine(cfg Config, prov market.Provider) *Engine {
	return &Engine{cfg: cfg.withDefaults(), prov: prov, now: time.Now}
}

// Config returns the effective configuration after defaults.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run resolves inputs and prices the contract.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	cfg := e.cfg
	asOf := e.now().UTC()
	res := &Result{Underlying: cfg.Underlying, Model: cfg.Model, AsOf: asOf, MaturityDays: cfg.MaturityDays}

	spot, err := e.resolveSpot(ctx, &res.Sources)
	if err != nil {
		return nil, err
	}

	strike := cfg.Strike
	res.Sources.Strike = SourceConfig
	if strike == 0 {
		strike = spot
		res.Sources.Strike = SourceATM
	}

	vol, err := e.resolveVolatility(ctx, asOf, &res.Sources)
	if err != nil {
		return nil, err
	}

	contract, err := pricing.NewContract(spot, strike, cfg.MaturityDays, cfg.RiskFreeRate, vol)
	if err != nil {
		return nil, fmt.Errorf("building contract: %w", err)
	}
	res.Contract = contract
	logger.Debugf("contract S=%.4f K=%.4f T=%.6f r=%.4f σ=%.4f", contract.SpotPrice, contract.StrikePrice, contract.TimeToMaturity, contract.RiskFreeRate, contract.Volatility)

	model, err := e.model(contract)
	if err != nil {
		return nil, err
	}

	for _, side := range []struct {
		t pricing.OptionType
		q *Quote
	}{{pricing.Call, &res.Call}, {pricing.Put, &res.Put}} {
		p, err := pricing.Price(model, side.t)
		if err != nil {
			return nil, fmt.Errorf("pricing %s: %w", side.t, err)
		}
		side.q.Price = p

		if bs, ok := model.(*pricing.BlackScholes); ok {
			g, err := bs.Greeks(side.t)
			if err != nil {
				return nil, fmt.Errorf("%s greeks: %w", side.t, err)
			}
			side.q.Greeks = &g
		}
	}

	if bs, ok := model.(*pricing.BlackScholes); ok {
		residual, err := bs.ParityResidual()
		if err != nil {
			return nil, fmt.Errorf("parity check: %w", err)
		}
		res.ParityResidual = &residual
	}

	logger.Infof("%s %s call=%.4f put=%.4f", cfg.Model, cfg.Underlying, res.Call.Price, res.Put.Price)
	return res, nil
}

func (e *Engine) resolveSpot(ctx context.Context, src *Sources) (float64, error) {
	if e.cfg.Spot != 0 {
		src.Spot = SourceConfig
		return e.cfg.Spot, nil
	}
	if e.prov == nil || e.cfg.Underlying == "" {
		return 0, fmt.Errorf("%w: spot requires a value or an underlying with a market provider", ErrMissingInput)
	}

	spot, err := e.prov.Spot(ctx, e.cfg.Underlying)
	if err != nil {
		return 0, fmt.Errorf("resolving spot for %s: %w", e.cfg.Underlying, err)
	}
	src.Spot = SourceProvider
	logger.Debugf("resolved spot %s = %.4f", e.cfg.Underlying, spot)
	return spot, nil
}

func (e *Engine) resolveVolatility(ctx context.Context, asOf time.Time, src *Sources) (float64, error) {
	if e.cfg.Volatility != 0 {
		src.Volatility = SourceConfig
		return e.cfg.Volatility, nil
	}
	if e.prov == nil || e.cfg.Underlying == "" {
		return 0, fmt.Errorf("%w: volatility requires a value or an underlying with a market provider", ErrMissingInput)
	}

	to := asOf.Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -e.cfg.LookbackDays)
	bars, err := e.prov.Bars(ctx, e.cfg.Underlying, from, to)
	if err != nil {
		return 0, fmt.Errorf("loading bars for %s: %w", e.cfg.Underlying, err)
	}
	hv, err := market.HistoricalVolatility(bars)
	if err != nil {
		return 0, fmt.Errorf("historical volatility for %s: %w", e.cfg.Underlying, err)
	}
	src.Volatility = SourceHistorical
	logger.Infof("hist vol %s = %.2f%% over %d bars", e.cfg.Underlying, hv*100, len(bars))
	return hv, nil
}

func (e *Engine) model(c pricing.Contract) (pricing.Model, error) {
	switch e.cfg.Model {
	case ModelBlackScholes:
		return pricing.NewBlackScholes(c), nil
	case ModelBinomial:
		return pricing.NewBinomial(c, e.cfg.Steps)
	}
	return nil, fmt.Errorf("unknown model %q", e.cfg.Model)
}
