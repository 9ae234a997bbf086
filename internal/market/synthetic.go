package market

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SyntheticOrigin is the first trading day of every synthetic walk. The walk
// opens at the configured start price on this date, so any window of bars and
// the spot price are cut from one series.
var SyntheticOrigin = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

// syntheticProvider generates a reproducible lognormal random walk.
type syntheticProvider struct {
	seed       uint64
	startPrice float64
	annualVol  float64
	now        func() time.Time
}

// NewSyntheticProvider returns an offline Provider. Identical seeds produce
// identical bars. Spot is the last close of the walk on or before today.
func NewSyntheticProvider(seed uint64, startPrice, annualVol float64) Provider {
	if startPrice <= 0 {
		startPrice = 100
	}
	if annualVol <= 0 {
		annualVol = 0.2
	}
	return &syntheticProvider{seed: seed, startPrice: startPrice, annualVol: annualVol, now: time.Now}
}

func (p *syntheticProvider) Spot(ctx context.Context, underlying string) (float64, error) {
	today := p.now().UTC().Truncate(24 * time.Hour)
	bars, err := p.walk(ctx, SyntheticOrigin, today)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("synthetic spot %s: no bars before %s: %w", underlying, today.Format("2006-01-02"), ErrInsufficientData)
	}
	return bars[len(bars)-1].Close, nil
}

// Bars returns the weekdays of the walk that fall between `from` and `to`.
// Days before SyntheticOrigin are not covered.
func (p *syntheticProvider) Bars(ctx context.Context, underlying string, from, to time.Time) ([]Bar, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("synthetic bars: range end %s before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	return p.walk(ctx, from.UTC().Truncate(24*time.Hour), to.UTC().Truncate(24*time.Hour))
}

// walk replays the series from SyntheticOrigin through `to` and keeps the
// bars dated on or after `from`.
func (p *syntheticProvider) walk(ctx context.Context, from, to time.Time) ([]Bar, error) {
	dailyVol := p.annualVol / math.Sqrt(TradingDaysPerYear)
	shock := distuv.Normal{Mu: -0.5 * dailyVol * dailyVol, Sigma: dailyVol, Src: rand.NewSource(p.seed)}
	wick := distuv.Normal{Mu: 0, Sigma: 0.25 * dailyVol, Src: rand.NewSource(p.seed + 1)}

	var out []Bar
	price := p.startPrice
	for cur := SyntheticOrigin; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday {
			continue
		}
		open := price
		close := open * math.Exp(shock.Rand())
		high := math.Max(open, close) * (1 + math.Abs(wick.Rand()))
		low := math.Min(open, close) * (1 - math.Abs(wick.Rand()))
		price = close
		if cur.Before(from) {
			continue
		}
		out = append(out, Bar{Date: cur, Open: open, High: high, Low: low, Close: close, Vol: 1000})
	}
	return out, nil
}
