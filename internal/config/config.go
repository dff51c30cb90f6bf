package config // package config loads application configuration from environment variables

import (
	"errors" // errors joins every configuration problem into one report
	"fmt"    // fmt formats the individual problems
	"os"     // os provides access to environment variables
	"time"   // time for lock and token lifetimes

	"github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// Store drivers understood by StoreDriver.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Optional integrations (Redis, RabbitMQ, auth)
// are switched on by their *_ENABLED flags.
type Config struct {
	Env      string // application environment (e.g. "dev", "prod")
	Port     string // HTTP port to listen on
	LogLevel string // zap level override; empty keeps the env default

	StoreDriver string // "mysql" or "memory"
	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name
	DBMigrate   bool   // create tables on startup

	AuthEnabled       bool   // require an admin token for catalogue and schedule writes
	JWTSecret         string // secret used to sign JWTs
	AccessTTLMin      int    // access token time-to-live in minutes
	AdminUser         string // admin login name
	AdminPasswordHash string // bcrypt hash of the admin password
	AdminPassword     string // plain admin password, hashed at startup when no hash is given
	BcryptCost        int    // bcrypt cost for hashing ADMIN_PASSWORD

	SeatLockEnabled bool          // guard seat allocation with a Redis lock
	SeatLockTTL     time.Duration // lifetime of a seat lock

	EventsEnabled   bool   // publish booking events to RabbitMQ
	ConsumerEnabled bool   // run the booking event consumer in-process
	RabbitURL       string // AMQP URL of the broker
	BookingLogPath  string // file the consumer appends events to
}

// Load reads an optional .env file and then builds a Config from the
// environment.  Missing required variables and malformed values are all
// reported together.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env file is fine; real env vars win
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	l := &loader{}
	cfg := Config{
		Env:      envStr("APP_ENV", "dev"),
		Port:     envStr("APP_PORT", "8080"),
		LogLevel: os.Getenv("LOG_LEVEL"),

		StoreDriver: envStr("STORE_DRIVER", StoreMySQL),
		DBPass:      os.Getenv("DB_PASS"), // empty allowed
		DBMigrate:   envBool("DB_MIGRATE", true),

		AuthEnabled:       envBool("AUTH_ENABLED", false),
		AccessTTLMin:      envInt("ACCESS_TOKEN_TTL_MIN", 60),
		AdminUser:         envStr("ADMIN_USER", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		BcryptCost:        envInt("BCRYPT_COST", 10),

		SeatLockEnabled: envBool("SEAT_LOCK_ENABLED", true),
		SeatLockTTL:     envDur("SEAT_LOCK_TTL", 5*time.Second),

		EventsEnabled:   envBool("EVENTS_ENABLED", false),
		ConsumerEnabled: envBool("EVENTS_CONSUMER_ENABLED", false),
		RabbitURL:       rabbitURL(),
		BookingLogPath:  os.Getenv("BOOKING_LOG_PATH"),
	}

	switch cfg.StoreDriver {
	case StoreMySQL:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = l.must("DB_PORT")
		cfg.DBName = l.must("DB_NAME")
	case StoreMemory:
	default:
		l.fail(fmt.Errorf("invalid STORE_DRIVER %q (want %q or %q)", cfg.StoreDriver, StoreMySQL, StoreMemory))
	}

	if cfg.AuthEnabled {
		cfg.JWTSecret = l.must("JWT_SECRET")
		if cfg.AdminPasswordHash == "" && cfg.AdminPassword == "" {
			l.fail(errors.New("missing required env var: ADMIN_PASSWORD_HASH or ADMIN_PASSWORD"))
		}
		if cfg.AccessTTLMin < 1 {
			l.fail(fmt.Errorf("invalid ACCESS_TOKEN_TTL_MIN: %d", cfg.AccessTTLMin))
		}
	}
	if cfg.SeatLockTTL <= 0 {
		l.fail(fmt.Errorf("invalid SEAT_LOCK_TTL: %s", cfg.SeatLockTTL))
	}
	return cfg, l.err()
}

// rabbitURL honours both RABBITMQ_URL and the older AMQP_URL name.
func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// loader collects configuration problems instead of exiting on the first.
type loader struct {
	errs []error
}

func (l *loader) fail(err error) { l.errs = append(l.errs, err) }

func (l *loader) err() error { return errors.Join(l.errs...) }

// must retrieves the value of a required environment variable and records
// an error when it is unset or empty.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		l.fail(fmt.Errorf("missing required env var: %s", key))
	}
	return v
}
