package infra

import (
	"context"
	"net"
	"net/http"
	"time"
)

// HTTPServer owns the listener lifecycle for the public API. The write
// timeout set here is the ceiling for ordinary requests; the event stream
// handler pushes its own deadline out per write.
type HTTPServer struct {
	srv *http.Server
}

// NewHTTPServer builds the server around the router with timeouts taken
// from configuration.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{srv: &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		MaxHeaderBytes:    1 << 20,
	}}
}

// Addr reports the listen address.
func (s *HTTPServer) Addr() string {
	return s.srv.Addr
}

// Start blocks serving connections until Shutdown or a listener error.
func (s *HTTPServer) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests before stopping the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
