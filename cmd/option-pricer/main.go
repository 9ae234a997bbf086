package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/market"
	"github.com/contactkeval/option-pricer/internal/quote"
	"github.com/contactkeval/option-pricer/internal/report"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("option-pricer", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to JSON quote config (not allowed with -rest)")
	envFile := fs.String("env", ".env", "optional dotenv file with MASSIVE_API_KEY")
	rest := fs.Bool("rest", false, "run as REST server; quote inputs come from each POST /price body")
	port := fs.String("port", ":8080", "REST server listen address")
	seed := fs.Uint64("seed", 20, "synthetic provider seed")
	verbosity := fs.String("v", "", "log level: error, warn, info, debug, trace")

	var over quote.Config
	fs.StringVar(&over.Underlying, "underlying", "", "underlying ticker")
	fs.Float64Var(&over.Spot, "spot", 0, "spot price (0 = from provider)")
	fs.Float64Var(&over.Strike, "strike", 0, "strike price (0 = at the money)")
	fs.Float64Var(&over.MaturityDays, "days", 0, "days to maturity")
	fs.Float64Var(&over.RiskFreeRate, "rate", 0, "risk-free rate, continuously compounded")
	fs.Float64Var(&over.Volatility, "vol", 0, "volatility (0 = historical)")
	fs.StringVar(&over.Model, "model", "", "black-scholes or binomial")
	fs.IntVar(&over.Steps, "steps", 0, "binomial steps")
	fs.StringVar(&over.ReportDir, "out", "", "report output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *rest {
		if name := quoteFlag(fs); name != "" {
			return fmt.Errorf("-%s cannot be combined with -rest: quote inputs come from the POST /price body", name)
		}
	}

	var cfg quote.Config
	if *configPath != "" {
		var err error
		if cfg, err = quote.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	applyFlags(fs, &cfg, over)

	if *verbosity != "" {
		cfg.Verbosity = *verbosity
	}
	level := logger.Info
	if cfg.Verbosity != "" {
		var err error
		if level, err = logger.ParseLevel(cfg.Verbosity); err != nil {
			return err
		}
	}
	logger.SetVerbosity(level)

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("could not load %s: %v", *envFile, err)
	}
	prov := newProvider(os.Getenv("MASSIVE_API_KEY"), *seed)

	if *rest {
		srv := &http.Server{Addr: *port, Handler: newMux(prov), ReadHeaderTimeout: 10 * time.Second}
		logger.Infof("starting REST server on %s", *port)
		return srv.ListenAndServe()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	engine := quote.NewEngine(cfg, prov)
	res, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("quote failed: %w", err)
	}

	fmt.Fprintf(stdout, "%s call=%.4f put=%.4f\n", res.Model, res.Call.Price, res.Put.Price)

	outDir := engine.Config().ReportDir
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", outDir, err)
	}
	if err := report.WriteJSON(res, outDir); err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}
	if err := report.WriteCSV(res, outDir); err != nil {
		return fmt.Errorf("writing csv report: %w", err)
	}
	logger.Infof("finished in %v, wrote reports to %s", time.Since(start), outDir)
	return nil
}

// quoteFlag returns the name of the first explicitly set flag that feeds a
// single CLI quote, or "" if none was set.
func quoteFlag(fs *flag.FlagSet) string {
	var name string
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config", "underlying", "spot", "strike", "days", "rate", "vol", "model", "steps", "out":
			if name == "" {
				name = f.Name
			}
		}
	})
	return name
}

// applyFlags copies explicitly set flags over the file config.
func applyFlags(fs *flag.FlagSet, cfg *quote.Config, over quote.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "underlying":
			cfg.Underlying = over.Underlying
		case "spot":
			cfg.Spot = over.Spot
		case "strike":
			cfg.Strike = over.Strike
		case "days":
			cfg.MaturityDays = over.MaturityDays
		case "rate":
			cfg.RiskFreeRate = over.RiskFreeRate
		case "vol":
			cfg.Volatility = over.Volatility
		case "model":
			cfg.Model = over.Model
		case "steps":
			cfg.Steps = over.Steps
		case "out":
			cfg.ReportDir = over.ReportDir
		}
	})
}

func newProvider(apiKey string, seed uint64) market.Provider {
	synthetic := market.NewSyntheticProvider(seed, 100, 0.2)
	if apiKey == "" {
		logger.Infof("synthetic provider enabled")
		return synthetic
	}
	logger.Infof("massive provider enabled, synthetic fallback")
	return market.WithFallback(market.NewMassiveProvider(apiKey), synthetic)
}
