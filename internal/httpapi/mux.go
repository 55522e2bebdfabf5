package httpapi

import (
	"database/sql"
	"net/http"
)

// NewMux returns a mux with the infrastructure routes; features add their own.
func NewMux(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	return mux
}
