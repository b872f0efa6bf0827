// Package httpserver constructs the process HTTP server. Per-request
// deadlines live in the router middleware; the timeouts here bound the
// connection itself.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	// writeTimeout must exceed the router's request timeout so the handler,
	// not the server, decides how a slow request fails.
	writeTimeout = 35 * time.Second
	idleTimeout  = 2 * time.Minute
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
