// Package handler implements the HTTP surface of the Staybook traveller
// front end. All handlers are methods on Server; methods are split into
// feature-specific files (house.go, cart.go, auth.go, ...) but all share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"staybook/internal/cart"
	"staybook/internal/domain"
	"staybook/internal/favorite"
	"staybook/internal/filter"
	"staybook/internal/middleware"
	"staybook/internal/ws"
)

// HouseServicer defines the house operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the upstream API.
type HouseServicer interface {
	Search(ctx context.Context, token string, p filter.Params) (domain.HousePage, error)
	Get(ctx context.Context, token string, id int64) (domain.House, error)
	HostActivities(ctx context.Context, token string, hostID int64, page int) (domain.ActivityPage, error)
}

// AuthServicer defines the account operations the handlers depend on.
type AuthServicer interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error)
}

// FavoriteToggler defines the optimistic favorite state the handlers depend on.
type FavoriteToggler interface {
	Seed(key favorite.Key, fav bool)
	IsFavorite(key favorite.Key) bool
	Set(ctx context.Context, token string, key favorite.Key, want bool) (bool, error)
}

// CartProvider hands out the cart store for a (visitor, house) scope.
type CartProvider interface {
	Store(visitor uuid.UUID, houseID int64) *cart.Store
}

// Server holds the handler dependencies. Construct it with NewServer and
// mount its routes with Routes.
type Server struct {
	houses    HouseServicer
	auth      AuthServicer
	favorites FavoriteToggler
	carts     CartProvider
	hub       *ws.Hub
	log       *slog.Logger

	now            func() time.Time
	secureCookies  bool
	allowedOrigins []string
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithClock overrides the time source used for date defaulting. Tests use it
// to pin "tomorrow".
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithSecureCookies marks auth cookies Secure. Enable outside local dev.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secureCookies = secure }
}

// WithAllowedOrigins sets the cross-origin allow list for the WebSocket
// handshake. Pass the same origins the CORS middleware allows.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// NewServer constructs the Server with all its dependencies.
func NewServer(houses HouseServicer, auth AuthServicer, favorites FavoriteToggler, carts CartProvider, hub *ws.Hub, opts ...Option) *Server {
	s := &Server{
		houses:    houses,
		auth:      auth,
		favorites: favorites,
		carts:     carts,
		hub:       hub,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the router for the whole surface. Identity middleware
// (visitor cookie, token cookie) is mounted here because the handlers read
// both from context; request ID, logging, CORS and recovery are wired by the
// caller around this router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.NewVisitorID())
	r.Use(middleware.NewTokenReader())

	r.Get("/healthz", s.GetHealth)

	r.Get("/houses", s.ListHouses)
	r.Get("/houses/{id}", s.GetHouse)

	r.Route("/houses/{id}/cart", func(r chi.Router) {
		r.Get("/", s.GetCart)
		r.Post("/", s.AddToCart)
		r.Delete("/", s.ClearCart)
		r.Delete("/{activityID}", s.RemoveFromCart)
		r.Get("/events", s.CartEvents)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Post("/houses/{id}/favorite", s.Favorite)
		r.Post("/houses/{id}/unfavorite", s.Unfavorite)
	})

	r.Post("/login", s.Login)
	r.Post("/register", s.Register)
	r.Post("/logout", s.Logout)

	return r
}
