// Package report writes quote results as JSON and CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/quote"
)

const (
	priceDecimals = 4
	greekDecimals = 6
	inputDecimals = 6

	JSONFile = "quote.json"
	CSVFile  = "quote.csv"
)

// Report is the rounded, serialisable form of a quote.Result.
type Report struct {
	Underlying     string        `json:"underlying,omitempty"`
	Model          string        `json:"model"`
	AsOf           string        `json:"as_of"`
	Inputs         Inputs        `json:"inputs"`
	Call           Side          `json:"call"`
	Put            Side          `json:"put"`
	ParityResidual *float64      `json:"parity_residual,omitempty"`
	Sources        quote.Sources `json:"sources"`
}

// Inputs echoes the priced contract.
type Inputs struct {
	Spot         float64 `json:"spot"`
	Strike       float64 `json:"strike"`
	MaturityDays float64 `json:"maturity_days"`
	Years        float64 `json:"years"`
	RiskFreeRate float64 `json:"risk_free_rate"`
	Volatility   float64 `json:"volatility"`
}

// Side holds the rounded price and, for Black-Scholes, Greeks of one option side.
type Side struct {
	Price  float64         `json:"price"`
	Greeks *pricing.Greeks `json:"greeks,omitempty"`
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func side(q quote.Quote) Side {
	s := Side{Price: round(q.Price, priceDecimals)}
	if g := q.Greeks; g != nil {
		s.Greeks = &pricing.Greeks{
			Delta: round(g.Delta, greekDecimals),
			Gamma: round(g.Gamma, greekDecimals),
			Vega:  round(g.Vega, greekDecimals),
			Theta: round(g.Theta, greekDecimals),
			Rho:   round(g.Rho, greekDecimals),
		}
	}
	return s
}

// Build converts res into its rounded report form.
func Build(res *quote.Result) Report {
	c := res.Contract
	r := Report{
		Underlying: res.Underlying,
		Model:      res.Model,
		AsOf:       res.AsOf.UTC().Format(time.RFC3339),
		Inputs: Inputs{
			Spot:         round(c.SpotPrice, priceDecimals),
			Strike:       round(c.StrikePrice, priceDecimals),
			MaturityDays: res.MaturityDays,
			Years:        round(c.TimeToMaturity, inputDecimals),
			RiskFreeRate: round(c.RiskFreeRate, inputDecimals),
			Volatility:   round(c.Volatility, inputDecimals),
		},
		Call:    side(res.Call),
		Put:     side(res.Put),
		Sources: res.Sources,
	}
	if res.ParityResidual != nil {
		v := round(*res.ParityResidual, 10)
		r.ParityResidual = &v
	}
	return r
}

// WriteJSON writes quote.json into outdir.
func WriteJSON(res *quote.Result, outdir string) error {
	b, err := json.MarshalIndent(Build(res), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, JSONFile), b, 0644)
}

// WriteCSV writes quote.csv into outdir, one row per option side.
func WriteCSV(res *quote.Result, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, CSVFile))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	headers := []string{"underlying", "model", "as_of", "side", "spot", "strike", "maturity_days", "risk_free_rate", "volatility", "price", "delta", "gamma", "vega", "theta", "rho"}
	if err := w.Write(headers); err != nil {
		return err
	}

	c := res.Contract
	for _, s := range []struct {
		name string
		q    quote.Quote
	}{{pricing.Call.String(), res.Call}, {pricing.Put.String(), res.Put}} {
		greeks := make([]string, 5)
		if g := s.q.Greeks; g != nil {
			for i, v := range []float64{g.Delta, g.Gamma, g.Vega, g.Theta, g.Rho} {
				greeks[i] = fixed(v, greekDecimals)
			}
		}
		row := append([]string{
			res.Underlying,
			res.Model,
			res.AsOf.UTC().Format(time.RFC3339),
			s.name,
			fixed(c.SpotPrice, priceDecimals),
			fixed(c.StrikePrice, priceDecimals),
			fmt.Sprintf("%g", res.MaturityDays),
			fixed(c.RiskFreeRate, inputDecimals),
			fixed(c.Volatility, inputDecimals),
			fixed(s.q.Price, priceDecimals),
		}, greeks...)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
