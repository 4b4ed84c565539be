package http

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/guidebook/pkg/usecase"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
	"github.com/secmon-lab/guidebook/pkg/utils/safe"
)

// maxBodySize limits JSON request bodies
const maxBodySize = 1 << 20

type Server struct {
	router       *chi.Mux
	uc           *usecase.UseCases
	staticFS        fs.FS
	secureCookie    bool
	trustUserHeader bool
}

type Options func(*Server)

// WithStaticFS serves a single page app from fsys for every non API path
func WithStaticFS(fsys fs.FS) Options {
	return func(s *Server) {
		s.staticFS = fsys
	}
}

// WithSecureCookie marks the session cookie Secure regardless of the request scheme
func WithSecureCookie(enabled bool) Options {
	return func(s *Server) {
		s.secureCookie = enabled
	}
}

// WithTrustUserHeader takes the user id from the X-User-ID header. Enable it only behind
// an auth proxy that sets the header and strips it from client requests.
func WithTrustUserHeader(enabled bool) Options {
	return func(s *Server) {
		s.trustUserHeader = enabled
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(sessionMiddleware(s.secureCookie, s.trustUserHeader))

		r.Get("/topics", topicsHandler(uc))

		r.Route("/guides", func(r chi.Router) {
			r.Post("/preview", guidePreviewHandler(uc))
			r.Get("/{topic}", guideHandler(uc))
		})

		r.Get("/progress", progressListHandler(uc))
		r.Post("/progress", progressSetHandler(uc))

		r.Post("/videos/summarize", videoSummarizeHandler(uc))

		r.Post("/chat", chatHandler(uc))
		r.Post("/chat/reset", chatResetHandler(uc, s.secureCookie))

		r.Get("/resources/{kind}", resourceHandler(uc))
	})

	// Static file serving for SPA (catch-all, must be last)
	if s.staticFS != nil {
		r.Get("/*", spaHandler(s.staticFS))
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger embeds a logger tagged with the request id into the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// spaHandler handles SPA routing by serving static files and falling back to index.html
func spaHandler(staticFS fs.FS) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(r.URL.Path, "/")
		if urlPath == "" {
			urlPath = "index.html"
		}

		file, err := staticFS.Open(urlPath)
		if err != nil {
			// Unknown paths belong to the client side router
			if _, err := fs.Stat(staticFS, "index.html"); err == nil {
				http.ServeFileFS(w, r, staticFS, "index.html")
				return
			}
			http.NotFound(w, r)
			return
		}
		safe.Close(r.Context(), file)

		fileServer.ServeHTTP(w, r)
	}
}
