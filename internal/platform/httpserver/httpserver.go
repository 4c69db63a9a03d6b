// Package httpserver builds the process's HTTP server with shared timeouts.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server with header-read and idle timeouts set. Request
// bodies can be large (registry payloads), so no blanket read timeout.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
