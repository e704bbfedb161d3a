package httpserver

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct{ mux *chi.Mux }

// New builds the router. Forwarding headers are honoured only for requests
// arriving from trustedProxies.
func New(trustedProxies ...netip.Prefix) *Server {
	m := chi.NewRouter()

	// middlewares must be registered before any route
	m.Use(TrustedRealIP(trustedProxies))
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(CORS())
	m.Use(chimw.StripSlashes) // "/api/hotels/" and "/api/hotels" are the same route
	m.Use(Timeout(15 * time.Second))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "Not Found", "")
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
