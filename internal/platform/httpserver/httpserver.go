package httpserver

import (
	"net/http"
	"time"
)

// New builds the process's HTTP server. The write timeout sits a grace
// period above the request timeout so the timeout middleware, not the
// server, is what cuts off slow handlers and the client still gets an
// error body.
func New(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
