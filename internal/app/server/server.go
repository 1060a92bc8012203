package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"francoggm/vnpay-go-redis/internal/app/server/handlers"
	"francoggm/vnpay-go-redis/internal/config"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	cfg      *config.Config
	router   *chi.Mux
	handlers *handlers.Handlers
	logger   *slog.Logger
}

func NewServer(cfg *config.Config, h *handlers.Handlers, logger *slog.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		handlers: h,
		logger:   logger,
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	s.router.Get("/liveness", s.handlers.Liveness)
	s.router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	s.router.Post("/payments", s.handlers.CreatePayment)
	s.router.Get("/payments/{code}", s.handlers.GetPayment)
	s.router.Post("/payments/{code}/querydr", s.handlers.QueryPayment)

	s.router.Get(s.cfg.VNPay.ReturnPath, s.handlers.VNPayReturn)
	s.router.Get(s.cfg.VNPay.IPNPath, s.handlers.VNPayIPN)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", slog.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
