// Package market supplies the inputs a quote needs but a caller may omit:
// the underlying's spot price and the daily bars used to estimate
// historical volatility.
package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// TradingDaysPerYear annualises daily return volatility.
const TradingDaysPerYear = 252.0

// ErrInsufficientData reports too few bars to estimate volatility.
var ErrInsufficientData = errors.New("insufficient market data")

// Bar simplified OHLC
type Bar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
	Vol   float64   `json:"volume"`
}

// Provider supplies market data for an underlying.
type Provider interface {
	// Spot returns the latest available price of the underlying.
	Spot(ctx context.Context, underlying string) (float64, error)
	// Bars returns daily bars between from and to inclusive, oldest first.
	Bars(ctx context.Context, underlying string, from, to time.Time) ([]Bar, error)
}

// fallbackProvider tries primary first and uses secondary on error.
type fallbackProvider struct {
	primary   Provider
	secondary Provider
}

// WithFallback returns a Provider that delegates to secondary whenever
// primary fails.
func WithFallback(primary, secondary Provider) Provider {
	if secondary == nil {
		return primary
	}
	return &fallbackProvider{primary: primary, secondary: secondary}
}

func (p *fallbackProvider) Spot(ctx context.Context, underlying string) (float64, error) {
	spot, err := p.primary.Spot(ctx, underlying)
	if err == nil {
		return spot, nil
	}
	logger.Warnf("primary spot lookup for %s failed, using secondary: %v", underlying, err)
	return p.secondary.Spot(ctx, underlying)
}

func (p *fallbackProvider) Bars(ctx context.Context, underlying string, from, to time.Time) ([]Bar, error) {
	bars, err := p.primary.Bars(ctx, underlying, from, to)
	if err == nil && len(bars) > 0 {
		return bars, nil
	}
	logger.Warnf("primary bars for %s unavailable (err=%v), using secondary", underlying, err)
	return p.secondary.Bars(ctx, underlying, from, to)
}

// HistoricalVolatility returns the annualised sample standard deviation of
// daily log returns of bar closes.
func HistoricalVolatility(bars []Bar) (float64, error) {
	if len(bars) < 3 {
		return 0, fmt.Errorf("%w: need at least 3 bars, got %d", ErrInsufficientData, len(bars))
	}

	rets := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Close, bars[i].Close
		if prev <= 0 || cur <= 0 {
			return 0, fmt.Errorf("%w: non-positive close on %s", ErrInsufficientData, bars[i].Date.Format("2006-01-02"))
		}
		rets = append(rets, math.Log(cur/prev))
	}

	return stat.StdDev(rets, nil) * math.Sqrt(TradingDaysPerYear), nil
}
