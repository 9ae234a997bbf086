package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Model names accepted in Config.Model.
const (
	ModelBlackScholes = "black-scholes" // closed form, the default
	ModelBinomial     = "binomial"      // Cox-Ross-Rubinstein lattice with Config.Steps periods
)

const (
	defaultSteps        = 500
	defaultLookbackDays = 90
	defaultReportDir    = "./out"
)

// Config describes a single quote request.
type Config struct {
	Underlying   string  `json:"underlying,omitempty"`    // e.g. "SPY", needed when spot or volatility come from a provider
	Spot         float64 `json:"spot,omitempty"`          // 0 = latest price from provider
	Strike       float64 `json:"strike,omitempty"`        // 0 = at the money
	MaturityDays float64 `json:"maturity_days"`           // calendar days to expiry
	RiskFreeRate float64 `json:"risk_free_rate"`          // continuously compounded, e.g. 0.05
	Volatility   float64 `json:"volatility,omitempty"`    // 0 = historical volatility from provider bars
	Model        string  `json:"model,omitempty"`         // "black-scholes" (default) or "binomial"
	Steps        int     `json:"steps,omitempty"`         // binomial lattice steps, default 500
	LookbackDays int     `json:"lookback_days,omitempty"` // historical volatility window, default 90
	ReportDir    string  `json:"report_dir,omitempty"`    // output directory
	Verbosity    string  `json:"verbosity,omitempty"`     // error, warn, info (default), debug, trace
}

// LoadConfig reads a JSON config file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig decodes JSON, rejecting unknown fields.
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// withDefaults returns a copy with empty fields filled in.
func (c Config) withDefaults() Config {
	c.Model = strings.ToLower(strings.TrimSpace(c.Model))
	switch c.Model {
	case "", "bs", "blackscholes":
		c.Model = ModelBlackScholes
	case "crr":
		c.Model = ModelBinomial
	}
	if c.Steps <= 0 {
		c.Steps = defaultSteps
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = defaultLookbackDays
	}
	if c.ReportDir == "" {
		c.ReportDir = defaultReportDir
	}
	c.Underlying = strings.ToUpper(strings.TrimSpace(c.Underlying))
	return c
}
