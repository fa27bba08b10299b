package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type Server struct{ mux *chi.Mux }

func New() *Server {
	m := chi.NewRouter()

	// all middlewares go before any route is added
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(15 * time.Second))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	admin := RequireRole(domain.RoleAdmin)
	s.mux.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.With(h.Protect).Get("/me", h.me)
		})
		r.Route("/hotels", func(r chi.Router) {
			r.Get("/", h.listHotels)
			r.With(h.Protect, admin).Post("/", h.createHotel)
			r.With(h.Protect).Get("/available", h.availableHotels)
			r.Get("/{id}", h.getHotel)
			r.With(h.Protect, admin).Put("/{id}", h.updateHotel)
			r.With(h.Protect, admin).Delete("/{id}", h.deleteHotel)
			r.With(h.Protect).Post("/{id}/bookings", h.createBooking)
		})
		r.Route("/bookings", func(r chi.Router) {
			r.Use(h.Protect)
			r.Get("/", h.listBookings)
			r.Get("/{id}", h.getBooking)
			r.Put("/{id}", h.updateBooking)
			r.Delete("/{id}", h.deleteBooking)
		})
	})
}
