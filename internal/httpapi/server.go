package httpapi

import (
	"net/http"
	"time"

	"github.com/aguswahy13/bike-rental/internal/config"
	"github.com/aguswahy13/bike-rental/internal/metrics"
)

func NewServer(cfg config.Config, mux *http.ServeMux, rec *metrics.Recorder) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(mux, rec),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
