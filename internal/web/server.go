package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/camuig/sina-stock-bot/internal/config"
	"github.com/camuig/sina-stock-bot/internal/logger"
	"github.com/camuig/sina-stock-bot/internal/storage"
	"github.com/camuig/sina-stock-bot/internal/subscription"
)

type Server struct {
	httpServer *http.Server
	store      *subscription.Store
	repo       *storage.Repository
	port       int
	logger     *logger.Logger
}

func NewServer(store *subscription.Store, repo *storage.Repository, cfg config.WebConfig, log *logger.Logger) *Server {
	s := &Server{
		store:  store,
		repo:   repo,
		port:   cfg.Port,
		logger: log.With("component", "web"),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the routes without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/api/groups", s.handleGroups)
	mux.HandleFunc("/api/pushes", s.handlePushes)
	return mux
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
