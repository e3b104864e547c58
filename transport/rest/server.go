package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// shutdowner is a mounted handler that owns connections http.Server does not
// track, such as hijacked websockets.
type shutdowner interface {
	Shutdown()
}

type Server struct {
	logger   *slog.Logger
	handlers *handlers

	mounts map[string]http.Handler
}

func New(logger *slog.Logger, games gameManager) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		handlers: &handlers{
			logger: logger.With("component", "rest"),
			games:  games,
		},
		mounts: make(map[string]http.Handler),
	}
}

// Mount serves h under pattern next to the game routes.
func (that *Server) Mount(pattern string, h http.Handler) {
	that.mounts[pattern] = h
}

// Handler wires the routes.
func (that *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)

	r.Post("/games", that.handlers.createGame)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", that.handlers.getGame)
		r.Delete("/", that.handlers.deleteGame)
		r.Post("/turn", that.handlers.makeTurn)
		r.Post("/computer", that.handlers.computerMove)
		r.Post("/reset", that.handlers.resetGame)
	})

	for pattern, h := range that.mounts {
		r.Handle(pattern, h)
	}

	return r
}

// Start - serves HTTP until ctx is done, then shuts down gracefully. Mounted
// handlers with a Shutdown method are shut down too before Start returns.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}

		for pattern, h := range that.mounts {
			if s, ok := h.(shutdowner); ok {
				that.logger.Debug("shutting down mount", "pattern", pattern)
				s.Shutdown()
			}
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-stopped

	return nil
}
