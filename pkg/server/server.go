// Package server exposes a [pipeline.Studio] over HTTP.
//
// Routes:
//
//	GET    /health                 liveness and build info
//	GET    /rings                  ring snapshot
//	PUT    /rings                  replace rings from a snapshot or container
//	POST   /rings                  add a ring
//	PATCH  /rings/{index}          edit ring flags, layers and offsets
//	DELETE /rings/{index}          delete a ring
//	POST   /rings/{index}/params   set or pin a parameter
//	GET    /instances              live instances
//	POST   /paint                  paint instances
//	PUT    /template               upload a module template
//	GET    /plan                   ring stack plan (SVG, or DOT with ?format=dot)
//	POST   /export                 export and store a container
//	GET    /assets                 list stored assets
//	GET    /assets/{name}          download an asset
//	DELETE /assets/{name}          delete an asset
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ringtower/pkg/buildinfo"
	"github.com/matzehuels/ringtower/pkg/pipeline"
	"github.com/matzehuels/ringtower/pkg/store"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 64 << 20

// Server routes HTTP requests to a studio.
type Server struct {
	studio *pipeline.Studio
	store  store.Store
	logger *log.Logger
	router chi.Router
}

// New builds the router. st may be nil, in which case the asset routes
// answer 404.
func New(studio *pipeline.Studio, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{studio: studio, store: st, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
	})

	r.Route("/rings", func(r chi.Router) {
		r.Get("/", s.getRings)
		r.Put("/", s.putRings)
		r.Post("/", s.addRing)
		r.Route("/{index}", func(r chi.Router) {
			r.Patch("/", s.patchRing)
			r.Delete("/", s.deleteRing)
			r.Post("/params", s.postParam)
		})
	})

	r.Get("/instances", s.getInstances)
	r.Post("/paint", s.postPaint)
	r.Put("/template", s.putTemplate)
	r.Get("/plan", s.getPlan)
	r.Post("/export", s.postExport)

	r.Route("/assets", func(r chi.Router) {
		r.Get("/", s.listAssets)
		r.Get("/{name}", s.getAsset)
		r.Delete("/{name}", s.deleteAsset)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
