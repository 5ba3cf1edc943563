// Package server exposes the preprocessing pipeline over HTTP: one
// multipart processing endpoint, a health check and the Prometheus
// scrape target. It depends only on the processor surface.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/ksuid"

	"github.com/wudi/scankit/config"
	"github.com/wudi/scankit/observability"
	"github.com/wudi/scankit/textprobe"
)

// Server is the HTTP front end.
type Server struct {
	cfg     config.File
	log     observability.Logger
	metrics *observability.PrometheusMetrics
	reg     *prometheus.Registry
	probe   textprobe.Probe

	httpServer *http.Server
}

// New assembles the server with its own metrics registry.
func New(cfg config.File, log observability.Logger, probe textprobe.Probe) *Server {
	if log == nil {
		log = observability.NopLogger{}
	}
	if probe == nil {
		probe = textprobe.Default()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:     cfg,
		log:     log,
		metrics: observability.NewPrometheus(reg),
		reg:     reg,
		probe:   probe,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/process", s.metrics.InstrumentHandler("process",
		s.withRequestID(http.HandlerFunc(s.handleProcess))))
	mux.Handle("/classify", s.metrics.InstrumentHandler("classify",
		s.withRequestID(http.HandlerFunc(s.handleClassify))))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return mux
}

// Run serves until ctx is cancelled, then drains connections within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", observability.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("http server shutting down")
		timeout := time.Duration(s.cfg.Server.ShutdownTimeout) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.log.Info("http server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type requestIDKey struct{}

// withRequestID tags every request with a ksuid and logs its outcome.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ksuid.New().String()
		start := time.Now()
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
		s.log.Info("request served",
			observability.String("request_id", id),
			observability.String("method", r.Method),
			observability.String("path", r.URL.Path),
			observability.Duration("elapsed", time.Since(start)),
		)
	})
}

// requestID returns the id placed on the context by withRequestID.
func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
