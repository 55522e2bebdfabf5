package climate

import (
	"database/sql"
	"net/http"

	"climate-server/internal/modules/climate/controller"
	"climate-server/internal/modules/climate/repository"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, driver string) {
	climateRepository := repository.NewRepository(db, driver)
	climateController := controller.NewClimateController(climateRepository)
	climateController.RegisterRoutes(mux)
}
