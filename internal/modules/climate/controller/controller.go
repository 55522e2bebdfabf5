package controller

import (
	"net/http"

	"climate-server/internal/modules/climate/repository"
)

// Routes lists what the welcome page advertises, in display order.
var Routes = []string{
	"/api/v1.0/precipitation",
	"/api/v1.0/stations",
	"/api/v1.0/stations/detail",
	"/api/v1.0/tobs",
	"/api/v1.0/temp/start",
	"/api/v1.0/temp/start/end",
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	repository repository.ClimateRepository
}

func NewClimateController(repository repository.ClimateRepository) ClimateController {
	return &climateControllerImpl{repository: repository}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/stations/detail", c.handleStationDetails)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTobs)
	mux.HandleFunc("GET /api/v1.0/temp/{start}", c.handleTemperatureStats)
	mux.HandleFunc("GET /api/v1.0/temp/{start}/{$}", c.handleTemperatureStats)
	mux.HandleFunc("GET /api/v1.0/temp/{start}/{end}", c.handleTemperatureStats)
}
