// Package admin serves the operational HTTP endpoints of the signup server:
// Prometheus metrics, a database health check and pprof.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const timeout = 45 * time.Second

// pinger is satisfied by *sql.DB.
type pinger interface {
	PingContext(ctx context.Context) error
}

// pprofProfiles are exposed under /debug/pprof/{name}. They may contain
// sensitive data, so they only live on the admin listener.
var pprofProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

type Server struct {
	svc    *http.Server
	logger logging.Logger
}

func NewServer(addr string, gatherer prometheus.Gatherer, db pinger, logger logging.Logger) *Server {
	return &Server{
		svc: &http.Server{
			Addr:         addr,
			Handler:      handler(gatherer, db),
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  timeout,
		},
		logger: logger.With("module", "admin_server"),
	}
}

func (s *Server) BindAddress() string {
	return s.svc.Addr
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.svc.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is done, then shuts down.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping admin server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.svc.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting admin server", "address", lis.Addr().String())

	if err := s.svc.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func handler(gatherer prometheus.Gatherer, db pinger) http.Handler {
	r := mux.NewRouter()

	r.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(healthz(db))

	r.HandleFunc("/debug/pprof/", pprof.Index)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	for _, name := range pprofProfiles {
		r.Handle(fmt.Sprintf("/debug/pprof/%s", name), pprof.Handler(name))
	}

	return r
}

func healthz(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}
