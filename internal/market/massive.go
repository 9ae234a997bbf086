package market

import (
	"context"
	"fmt"
	"net/http"
	"time"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// massiveProvider implements Provider on top of the Massive REST SDK.
type massiveProvider struct {
	client *massive.Client
}

// NewMassiveProvider constructs a Massive-backed provider.
func NewMassiveProvider(apiKey string) Provider {
	return NewMassiveProviderWithClient(apiKey, &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
		},
	})
}

// NewMassiveProviderWithClient lets callers supply the HTTP client, e.g. one
// pointed at a test server.
func NewMassiveProviderWithClient(apiKey string, hc *http.Client) Provider {
	logger.Infof("initializing Massive data provider")
	return &massiveProvider{client: massive.NewWithClient(apiKey, hc)}
}

// Spot returns the previous session's adjusted close.
func (p *massiveProvider) Spot(ctx context.Context, underlying string) (float64, error) {
	adjusted := true
	params := &models.GetPreviousCloseAggParams{Ticker: underlying, Adjusted: &adjusted}

	logger.Debugf("previous close request: %s", underlying)
	res, err := p.client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("massive previous close %s: %w", underlying, err)
	}
	if len(res.Results) == 0 {
		return 0, fmt.Errorf("massive previous close %s: %w", underlying, ErrInsufficientData)
	}

	spot := res.Results[len(res.Results)-1].Close
	logger.Tracef("previous close %s = %.4f", underlying, spot)
	return spot, nil
}

// Bars returns adjusted daily aggregates in ascending order.
func (p *massiveProvider) Bars(ctx context.Context, underlying string, from, to time.Time) ([]Bar, error) {
	adjusted := true
	order := models.Asc
	limit := 50000
	params := &models.ListAggsParams{
		Ticker:     underlying,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(to),
		Adjusted:   &adjusted,
		Order:      &order,
		Limit:      &limit,
	}

	logger.Debugf(
		"fetching bars: %s from=%s to=%s",
		underlying,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	)

	var out []Bar
	iter := p.client.ListAggs(ctx, params)
	for iter.Next() {
		agg := iter.Item()
		out = append(out, Bar{
			Date:  time.Time(agg.Timestamp).UTC(),
			Open:  agg.Open,
			High:  agg.High,
			Low:   agg.Low,
			Close: agg.Close,
			Vol:   agg.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		logger.Errorf("bars request failed for %s: %v", underlying, err)
		return nil, fmt.Errorf("massive aggregates %s: %w", underlying, err)
	}

	logger.Tracef("bars received: %d records", len(out))
	return out, nil
}
