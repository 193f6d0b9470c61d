package httpapi

import (
	"net/http"

	"github.com/aguswahy13/bike-rental/internal/metrics"
)

// NewMux registers the health, metrics and static routes. Feature routes
// are added by the caller.
func NewMux(staticDir string, rec *metrics.Recorder, probes ...Probe) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, probes)
	mux.Handle("GET /metrics", rec.Handler())
	if staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	return mux
}
