package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aguswahy13/bike-rental/internal/utils"
)

// Probe is one readiness check run by /healthz.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	probes []Probe
}

func NewHealthchecker(probes ...Probe) healthchecker {
	return &healthcheckerImpl{probes: probes}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	for _, p := range h.probes {
		if err := p.Check(r.Context()); err != nil {
			slog.Error("health probe failed", "probe", p.Name, "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to check "+p.Name)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, probes []Probe) {
	healthchecker := NewHealthchecker(probes...)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
