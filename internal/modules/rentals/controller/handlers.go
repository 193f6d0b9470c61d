package controller

import (
	"bytes"
	"log/slog"
	"net/http"
	"slices"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/charts"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/views"
	"github.com/aguswahy13/bike-rental/internal/utils"
)

// summarize loads the dataset and runs the pipeline for the request's query.
// On failure it has already written the error response.
func (c *rentalControllerImpl) summarize(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, pipeline.Result, bool) {
	ds, err := c.service.Dataset(r.Context())
	if err != nil {
		slog.Error("load dataset failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load dataset")
		return nil, pipeline.Result{}, false
	}
	f, err := parseFilter(r.URL.Query(), ds)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, pipeline.Result{}, false
	}
	res, err := c.service.Summarize(r.Context(), f)
	if err != nil {
		slog.Error("summarize failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to summarize rentals")
		return nil, pipeline.Result{}, false
	}
	return ds, res, true
}

func (c *rentalControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ds, res, ok := c.summarize(w, r)
	if !ok {
		return
	}
	data := views.BuildDashboard(ds, res, r.URL.Query())
	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, &data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *rentalControllerImpl) handleInsightsPartial(w http.ResponseWriter, r *http.Request) {
	_, res, ok := c.summarize(w, r)
	if !ok {
		return
	}
	data := views.BuildInsights(res, r.URL.Query())
	var buf bytes.Buffer
	if err := views.RenderInsightsPartial(&buf, &data); err != nil {
		slog.Error("insights partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *rentalControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !slices.Contains(charts.Names, name) {
		utils.WriteError(w, http.StatusNotFound, "unknown chart")
		return
	}
	_, res, ok := c.summarize(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := charts.Render(&buf, name, res); err != nil {
		slog.Error("chart render failed", "chart", name, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("chart: write response failed", "chart", name, "error", err)
	}
}

func (c *rentalControllerImpl) handleFilters(w http.ResponseWriter, r *http.Request) {
	ds, err := c.service.Dataset(r.Context())
	if err != nil {
		slog.Error("load dataset failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}
	utils.WriteJSON(w, http.StatusOK, newFiltersResponse(ds))
}

func (c *rentalControllerImpl) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, res, ok := c.summarize(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, newSummaryResponse(res))
}

func (c *rentalControllerImpl) handleHourly(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, res, ok := c.summarize(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, newHourlyResponse(res.Hourly, limit))
}
