package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/quorahq/accountserver/config"
	"github.com/quorahq/accountserver/internal/auth"
	"github.com/quorahq/accountserver/internal/db"
	"github.com/quorahq/accountserver/internal/handlers"
	"github.com/quorahq/accountserver/internal/logging"
	"github.com/quorahq/accountserver/internal/mq"
	"github.com/quorahq/accountserver/internal/services"
	"github.com/quorahq/accountserver/internal/store/memstore"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
	log        logging.Logger
}

// New wires the store, event publisher and account service selected by cfg
// behind a chi router.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	srv := &Server{log: log}

	var st services.Store
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		st = memstore.New()
	default:
		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		srv.db = dbConn
		st = services.NewSQLStore(dbConn)
	}

	opts := []services.AccountOption{services.WithSessionTTL(cfg.SessionTTL)}
	events, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		srv.closeResources()
		return nil, err
	}
	if events != nil {
		srv.mq = events
		opts = append(opts, services.WithEvents(events, cfg.MQ.EventsChannel))
	}

	accounts := services.NewAccountService(st, auth.NewHasher(), tokens, log, opts...)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/user", func(r chi.Router) {
		handlers.UserRouter(r, accounts, log)
	})
	router.Route("/userprofile", func(r chi.Router) {
		handlers.ProfileRouter(r, accounts, log)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	srv.router = router
	srv.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info(ctx, "server configured",
		"port", port,
		"store", cfg.StoreBackend,
		"mq", cfg.MQ.Backend,
		"session_ttl", cfg.SessionTTL.String(),
	)
	return srv, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the database and broker.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeResources()
	return err
}

func (s *Server) closeResources() {
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			s.log.Warn(context.Background(), "close mq failed", "error", err)
		}
		s.mq = nil
	}
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}
