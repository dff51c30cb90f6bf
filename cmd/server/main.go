package main // Entry point package

import (
	"context"   // context for startup, shutdown and the consumer
	"errors"    // errors to tell a clean server close apart
	"fmt"       // fmt wraps startup errors
	"net/http"  // net/http for ErrServerClosed
	"os"        // os for the exit code
	"os/signal" // signal for graceful shutdown
	"syscall"   // syscall names SIGTERM
	"time"      // time for the shutdown deadline

	"go.uber.org/zap" // structured logging

	"github.com/iliyamo/popcorn-palace/internal/cache"             // Redis seat locks
	"github.com/iliyamo/popcorn-palace/internal/config"            // environment config loader
	"github.com/iliyamo/popcorn-palace/internal/database"          // MySQL connection and schema
	"github.com/iliyamo/popcorn-palace/internal/handler"           // HTTP handlers
	"github.com/iliyamo/popcorn-palace/internal/logger"            // zap construction
	"github.com/iliyamo/popcorn-palace/internal/queue"             // RabbitMQ publisher and consumer
	"github.com/iliyamo/popcorn-palace/internal/repository"        // MySQL stores
	"github.com/iliyamo/popcorn-palace/internal/repository/memory" // in-process stores
	"github.com/iliyamo/popcorn-palace/internal/router"            // route registration
	"github.com/iliyamo/popcorn-palace/internal/service"           // business rules
	"github.com/iliyamo/popcorn-palace/internal/utils"             // password hashing
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// stores bundles the three persistence views the services need.
type stores struct {
	movies    service.MovieStore
	showtimes service.ShowtimeStore
	bookings  service.BookingStore
	pingers   []handler.Pinger
	close     func() error
}

func run() error {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	rdb := config.NewRedisClient(config.LoadRedisConfig()) // nil when Redis is down
	if rdb == nil {
		log.Warn("redis unavailable; cache, rate limit and seat locks disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	opts := []service.BookingOption{service.WithBookingLogger(log.Named("booking"))}
	if rdb != nil && cfg.SeatLockEnabled {
		opts = append(opts, service.WithSeatLocker(cache.NewSeatLocks(rdb), cfg.SeatLockTTL))
	}
	if cfg.EventsEnabled {
		opts = append(opts, service.WithPublisher(queue.NewPublisher(cfg.RabbitURL, log.Named("publisher")), service.DefaultPublishTimeout))
	}
	if cfg.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.BookingLogPath, log.Named("consumer"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	clock := service.SystemClock
	movies := service.NewMovieService(st.movies, clock, log.Named("movie"))
	showtimes := service.NewShowtimeService(st.showtimes, st.movies, clock, log.Named("showtime"))
	bookings := service.NewBookingService(st.bookings, st.showtimes, clock, opts...)
	defer bookings.Close() // let queued booking events go out before the stores close

	deps := router.Deps{
		Movies:      handler.NewMovieHandler(movies, log),
		Showtimes:   handler.NewShowtimeHandler(showtimes, log),
		Bookings:    handler.NewBookingHandler(bookings, log),
		AuthEnabled: cfg.AuthEnabled,
		JWTSecret:   cfg.JWTSecret,
		Redis:       rdb,
		Cache:       config.LoadCacheConfig(),
		RateLimit:   config.LoadRateLimitConfig(),
		Log:         log,
		Pingers:     st.pingers,
	}
	if cfg.AuthEnabled {
		hash := cfg.AdminPasswordHash
		if hash != "" && !utils.ValidHash(hash) {
			return errors.New("ADMIN_PASSWORD_HASH is not a bcrypt hash")
		}
		if hash == "" {
			if hash, err = utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost); err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
		}
		deps.Auth = handler.NewAuthHandler(handler.AuthConfig{
			AdminUser:         cfg.AdminUser,
			AdminPasswordHash: hash,
			JWTSecret:         cfg.JWTSecret,
			AccessTTLMin:      cfg.AccessTTLMin,
		}, log)
	}
	e := router.New(deps)

	addr := ":" + cfg.Port // Address string with port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))

	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStores selects the persistence backend named by STORE_DRIVER.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		m := memory.New()
		return &stores{
			movies:    m.Movies(),
			showtimes: m.Showtimes(),
			bookings:  m.Bookings(),
			close:     func() error { return nil },
		}, nil
	}

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if cfg.DBMigrate {
		mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := database.Migrate(mctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("schema ready")
	}
	return &stores{
		movies:    repository.NewMovieRepo(db),
		showtimes: repository.NewShowtimeRepo(db),
		bookings:  repository.NewBookingRepo(db),
		pingers:   []handler.Pinger{db},
		close:     db.Close,
	}, nil
}
