package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/adapters/media"
	"hotel_booking/internal/app"
)

type Handlers struct {
	Hotels   *app.HotelService
	Rooms    *app.RoomService
	Bookings *app.BookingService
	Users    *app.UserService
	Auth     *app.AuthService
	Media    *media.Store

	BaseURL        string
	MaxUploadBytes int64
	// AuthLimiter throttles /api/auth/*; nil disables it.
	AuthLimiter *IPRateLimiter
}

func (s *Server) MountHandlers(h *Handlers) {
	requireAuth := RequireAuth(h.Auth)

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/", h.apiRoot)
		r.Get("/media/*", h.serveMedia)

		r.Route("/auth", func(r chi.Router) {
			if h.AuthLimiter != nil {
				r.Use(h.AuthLimiter.Middleware)
			}
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/refresh", h.refresh)
			r.Post("/logout", h.logout)
			r.With(requireAuth).Get("/me", h.me)
		})

		// hotel and room catalogues are public to read
		r.Route("/hotels", func(r chi.Router) {
			r.Get("/", h.listHotels)
			r.Get("/{id}", h.getHotel)
			r.With(requireAuth).Post("/", h.createHotel)
			r.With(requireAuth).Put("/{id}", h.updateHotel)
			r.With(requireAuth).Delete("/{id}", h.deleteHotel)
		})
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.listRooms)
			r.Get("/{id}", h.getRoom)
			r.With(requireAuth).Post("/", h.createRoom)
			r.With(requireAuth).Put("/{id}", h.updateRoom)
			r.With(requireAuth).Delete("/{id}", h.deleteRoom)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.listBookings)
			r.Post("/", h.createBooking)
			r.Get("/{id}", h.getBooking)
			r.Put("/{id}", h.updateBooking)
			r.Delete("/{id}", h.deleteBooking)
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Get("/{id}", h.getUser)
			r.Put("/{id}", h.updateUser)
			r.Delete("/{id}", h.deleteUser)
		})
	})
}

func (h *Handlers) apiRoot(w http.ResponseWriter, r *http.Request) {
	base := h.BaseURL + "/api/"
	writeJSON(w, http.StatusOK, map[string]string{
		"hotels":   base + "hotels/",
		"rooms":    base + "rooms/",
		"bookings": base + "bookings/",
		"users":    base + "users/",
		"auth":     base + "auth/",
	})
}

func (h *Handlers) limitBody(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
}
