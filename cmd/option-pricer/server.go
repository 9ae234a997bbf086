package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/market"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/quote"
	"github.com/contactkeval/option-pricer/internal/report"
)

const maxBody = 1 << 16

func newMux(prov market.Provider) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/price", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		cfg, err := quote.ParseConfig(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		logger.Debugf("received /price request for %q", cfg.Underlying)
		res, err := quote.NewEngine(cfg, prov).Run(r.Context())
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, pricing.ErrInvalidParameter) || errors.Is(err, quote.ErrMissingInput) {
				status = http.StatusBadRequest
			}
			logger.Errorf("/price failed: %v", err)
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report.Build(res))
	})
	return mux
}
