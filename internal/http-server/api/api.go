package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"CopperxBot/internal/config"
	handlerErrors "CopperxBot/internal/http-server/handlers/errors"
	"CopperxBot/internal/http-server/handlers/health"
	"CopperxBot/internal/http-server/handlers/key"
	"CopperxBot/internal/http-server/handlers/session"
	"CopperxBot/internal/http-server/middleware/authenticate"
	"CopperxBot/internal/lib/sl"
	"CopperxBot/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const requestTimeout = 10 * time.Second

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Deps are the collaborators behind the operations API. Keys may be nil
// when no key storage is configured.
type Deps struct {
	Auth     authenticate.Authenticate
	Sessions session.Core
	Keys     key.Core
	Hub      *ws.Hub
}

func New(conf *config.Config, log *slog.Logger, deps Deps) *Server {
	server := &Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(handlerErrors.NotFound(log))
	router.MethodNotAllowed(handlerErrors.NotAllowed(log))

	var clients health.Clients
	if deps.Hub != nil {
		clients = deps.Hub
	}
	router.With(render.SetContentType(render.ContentTypeJSON)).
		Get("/health", health.Health(time.Now(), clients))

	if deps.Hub != nil {
		router.Get("/api/v1/events", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(deps.Hub, deps.Auth, log, w, r)
		})
	}

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.Timeout(requestTimeout))
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Use(authenticate.New(log, deps.Auth))

		v1.Route("/sessions/{user_id}", func(r chi.Router) {
			r.Get("/", session.Get(log, deps.Sessions))
			r.Post("/cancel", session.Cancel(log, deps.Sessions))
		})
		v1.Route("/key", func(r chi.Router) {
			r.Post("/new", key.Generate(log, deps.Keys))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:           router,
		ErrorLog:          httpLog,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("api server shutdown", sl.Err(err))
		}
	}()

	err = s.httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
