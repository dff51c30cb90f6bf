package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/google/uuid"                        // request ids
	"github.com/labstack/echo/v4"                   // the Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock recover and request-id middleware
	"github.com/redis/go-redis/v9"                  // shared client for cache and rate limit
	"go.uber.org/zap"                               // structured logging

	"github.com/iliyamo/popcorn-palace/internal/config"     // cache and rate limit settings
	"github.com/iliyamo/popcorn-palace/internal/handler"    // HTTP handlers
	"github.com/iliyamo/popcorn-palace/internal/middleware" // JWT, role, cache and rate limit middleware
	"github.com/iliyamo/popcorn-palace/internal/utils"      // role names
)

// Deps carries everything the router wires together.  Auth may be nil when
// AuthEnabled is false; Redis may be nil, which disables caching and rate
// limiting.
type Deps struct {
	Movies    *handler.MovieHandler
	Showtimes *handler.ShowtimeHandler
	Bookings  *handler.BookingHandler
	Auth      *handler.AuthHandler

	AuthEnabled bool
	JWTSecret   string

	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Log       *zap.Logger
	Pingers   []handler.Pinger
}

// New builds the Echo instance with global middleware and every route.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))

	RegisterRoutes(e, d.Pingers...)
	if d.AuthEnabled && d.Auth != nil {
		RegisterAuth(e, d.Auth)
	}
	RegisterCatalogue(e, d)
	RegisterBookings(e, d)
	return e
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, pingers ...handler.Pinger) {
	e.GET("/healthz", handler.Health(pingers...))
}

// RegisterAuth registers the admin login endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/auth/login", a.Login)
}

// RegisterCatalogue registers movie and showtime routes.  Reads are cached;
// writes purge the cache and, when auth is on, require the ADMIN role.
func RegisterCatalogue(e *echo.Echo, d Deps) {
	cached := middleware.NewRedisCache(d.Cache, d.Redis)
	write := writeChain(d)

	m := d.Movies
	e.GET("/movies/all", m.ListMovies, cached)
	e.GET("/movies/:id", m.GetMovie, cached)
	e.POST("/movies", m.AddMovie, write...)
	e.PUT("/movies/update/:title", m.UpdateMovieByTitle, write...)
	e.PUT("/movies/update/id/:id", m.UpdateMovieByID, write...)
	e.DELETE("/movies/:title", m.DeleteMovieByTitle, write...)
	e.DELETE("/movies/id/:id", m.DeleteMovieByID, write...)

	s := d.Showtimes
	e.GET("/showtimes/all", s.ListShowtimes, cached)
	e.GET("/showtimes/bookings", s.ListShowtimeSales, cached)
	e.GET("/showtimes/:id", s.GetShowtime, cached)
	e.POST("/showtimes", s.AddShowtime, write...)
	e.PUT("/showtimes/update/:id", s.UpdateShowtime, write...)
	e.DELETE("/showtimes/:id", s.DeleteShowtime, write...)
}

// RegisterBookings registers the booking routes.  They are open to every
// caller; writes still purge cached ticket counts.
func RegisterBookings(e *echo.Echo, d Deps) {
	purge := middleware.InvalidateCache(d.Cache, d.Redis, d.Log)

	b := d.Bookings
	e.GET("/bookings", b.ListBookings)
	e.GET("/bookings/:id", b.GetBooking)
	e.POST("/bookings", b.CreateBooking, purge)
	e.PUT("/bookings/:id", b.UpdateBooking, purge)
	e.DELETE("/bookings/:id", b.DeleteBooking, purge)
}

// writeChain returns the middleware for catalogue writes.  Authentication
// runs before the purge so a rejected request never touches the cache.
func writeChain(d Deps) []echo.MiddlewareFunc {
	var chain []echo.MiddlewareFunc
	if d.AuthEnabled {
		chain = append(chain, middleware.JWTAuth(d.JWTSecret), middleware.RequireRole(utils.RoleAdmin))
	}
	return append(chain, middleware.InvalidateCache(d.Cache, d.Redis, d.Log))
}
