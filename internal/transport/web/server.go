// Package web serves the question answering API over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/sandevgo/ceramicsrag/internal/config"
	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

// Asker answers a single stateless question.
type Asker interface {
	Ask(ctx context.Context, query string, history []core.Turn) (*core.Answer, error)
}

type Sessions interface {
	Create(ctx context.Context) (string, error)
	History(ctx context.Context, id string) ([]core.Turn, error)
	Ask(ctx context.Context, id, query string) (*core.Answer, error)
}

type IndexInfo interface {
	Size() int
	Dimensions() int
	EmbeddingModel() string
}

type Server struct {
	cfg      *config.ServerConfig
	asker    Asker
	sessions Sessions
	index    IndexInfo

	server *http.Server
}

func NewServer(cfg *config.ServerConfig, asker Asker, sessions Sessions, index IndexInfo) *Server {
	return &Server{
		cfg:      cfg,
		asker:    asker,
		sessions: sessions,
		index:    index,
	}
}

// Handler builds the router. The logger of ctx is attached to every request.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(*log.FromCtx(ctx)))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/index", s.handleIndex)
		r.Post("/answer", s.handleAnswer)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}/messages", s.handleListMessages)
		r.Post("/sessions/{id}/messages", s.handlePostMessage)
	})
	return r
}

// Start blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Handler(ctx),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	log.FromCtx(ctx).Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
