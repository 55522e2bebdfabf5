package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"climate-server/internal/httpapi"
	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/views"
	"climate-server/internal/utils"
)

// openEndLabel is reported as "End Date" when the range has no upper bound.
const openEndLabel = "Latest"

type temperatureStatsResponse struct {
	StartDate string   `json:"Start Date"`
	EndDate   string   `json:"End Date"`
	Min       *float64 `json:"Min Temperature"`
	Max       *float64 `json:"Max Temperature"`
	Avg       *float64 `json:"Avg Temperature"`
}

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, &views.IndexData{Routes: Routes}); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	precipitation, err := c.repository.RecentPrecipitation(r.Context())
	if err != nil {
		c.writeRepositoryError(w, r, "failed to load precipitation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, precipitation)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.repository.ListStations(r.Context())
	if err != nil {
		c.writeRepositoryError(w, r, "failed to load stations", err)
		return
	}
	if stations == nil {
		stations = []string{}
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleStationDetails(w http.ResponseWriter, r *http.Request) {
	stations, err := c.repository.Stations(r.Context())
	if err != nil {
		c.writeRepositoryError(w, r, "failed to load stations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	temps, err := c.repository.MostActiveStationRecentTemps(r.Context())
	if err != nil {
		c.writeRepositoryError(w, r, "failed to load temperatures", err)
		return
	}
	if temps == nil {
		temps = []float64{}
	}
	utils.WriteJSON(w, http.StatusOK, temps)
}

// handleTemperatureStats serves both /temp/{start} and /temp/{start}/{end}.
// start and end are passed through unvalidated.
func (c *climateControllerImpl) handleTemperatureStats(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start")
	var end *string
	if s := r.PathValue("end"); s != "" {
		end = &s
	}

	stats, err := c.repository.TemperatureStats(r.Context(), start, end)
	if err != nil {
		c.writeRepositoryError(w, r, "failed to load temperature statistics", err)
		return
	}

	resp := temperatureStatsResponse{
		StartDate: start,
		EndDate:   openEndLabel,
		Min:       stats.Min,
		Max:       stats.Max,
		Avg:       stats.Avg,
	}
	if end != nil {
		resp.EndDate = *end
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (c *climateControllerImpl) writeRepositoryError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg,
		"path", r.URL.Path,
		"request_id", httpapi.RequestIDFromContext(r.Context()),
		"error", err,
	)
	if errors.Is(err, repository.ErrEmptyDataset) {
		msg = "no measurements in dataset"
	}
	utils.WriteError(w, http.StatusInternalServerError, msg)
}
