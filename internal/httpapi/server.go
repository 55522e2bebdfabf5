package httpapi

import (
	"net/http"
	"time"

	"climate-server/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Handler wraps mux with the request id and access log middleware.
func Handler(mux *http.ServeMux) http.Handler {
	return requestID(requestLogger(mux))
}
