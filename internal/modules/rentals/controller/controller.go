package controller

import (
	"context"
	"net/http"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
)

// RentalService is what the handlers need from the service layer.
type RentalService interface {
	Dataset(ctx context.Context) (*dataset.Dataset, error)
	Summarize(ctx context.Context, f pipeline.Filter) (pipeline.Result, error)
}

type RentalController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type rentalControllerImpl struct {
	service RentalService
}

func NewRentalController(service RentalService) RentalController {
	return &rentalControllerImpl{service: service}
}

func (c *rentalControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /partials/insights", c.handleInsightsPartial)
	mux.HandleFunc("GET /charts/{name}", c.handleChart)
	mux.HandleFunc("GET /api/v1/filters", c.handleFilters)
	mux.HandleFunc("GET /api/v1/summary", c.handleSummary)
	mux.HandleFunc("GET /api/v1/hourly", c.handleHourly)
}
