package database

import (
	"context"
	"doghouse/config"
	"errors"
	"fmt"
	stdlog "log"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotConfigured means one of the required connection parameters is missing.
	ErrNotConfigured = errors.New("storage not configured")
	// ErrUnavailable means the store could not be reached within the connect timeout.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrWrite wraps a failed insert. The transaction has already been rolled back.
	ErrWrite = errors.New("storage write failed")
)

// Repository owns connectivity to the dogs table. The underlying pool is
// opened lazily on the first Connect and reused; every Connect checks out a
// dedicated connection that the caller must Close.
type Repository struct {
	cfg       *config.Config
	dialector gorm.Dialector

	mu sync.Mutex
	db *gorm.DB
}

// Option customizes a Repository.
type Option func(*Repository)

// WithDialector replaces the driver-derived dialector. Used to run the
// repository over an existing *sql.DB, whose pool settings are left as they are.
func WithDialector(d gorm.Dialector) Option {
	return func(r *Repository) {
		r.dialector = d
	}
}

// NewRepository creates a repository for the given settings. No I/O happens here.
func NewRepository(cfg *config.Config, opts ...Option) *Repository {
	r := &Repository{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configured reports whether every required connection parameter is present.
func (r *Repository) Configured() bool {
	if r.cfg.DBDriver == DriverSQLite {
		return r.cfg.DatabaseURL != ""
	}
	return r.cfg.DBHost != "" && r.cfg.DBName != "" && r.cfg.DBUser != "" && r.cfg.DBPassword != ""
}

func (r *Repository) connectTimeout() time.Duration {
	if r.cfg.DBConnectTimeout <= 0 {
		return 3 * time.Second
	}
	return time.Duration(r.cfg.DBConnectTimeout) * time.Second
}

// Connect checks out a dedicated connection. It returns ErrNotConfigured when
// settings are incomplete and an error wrapping ErrUnavailable when the store
// cannot be reached before the connect timeout.
func (r *Repository) Connect(ctx context.Context) (*Conn, error) {
	if !r.Configured() {
		return nil, ErrNotConfigured
	}

	db, err := r.pool()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, r.connectTimeout())
	defer cancel()

	raw, err := sqlDB.Conn(connectCtx)
	if err != nil {
		recordStorageError(err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := raw.PingContext(connectCtx); err != nil {
		recordStorageError(err)
		_ = raw.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// A Context on the session clones the statement, so pinning the
	// connection below does not leak into the shared pool handle.
	session := db.Session(&gorm.Session{Context: ctx})
	session.Statement.ConnPool = raw

	return &Conn{db: session, raw: raw}, nil
}

// pool opens the shared *gorm.DB once. A failed open is not cached.
func (r *Repository) pool() (*gorm.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return r.db, nil
	}

	logLevel := logger.Silent
	if r.cfg.LogLevel == "DEBUG" {
		logLevel = logger.Info
	}

	dialector := r.dialector
	if dialector == nil {
		switch r.cfg.DBDriver {
		case DriverSQLite:
			dialector = sqlite.Open(buildSQLiteDSN(r.cfg.DatabaseURL, r.cfg))
		case DriverPostgres, "":
			dialector = postgres.Open(buildPostgresDSN(r.cfg))
		default:
			return nil, fmt.Errorf("unsupported storage driver %q", r.cfg.DBDriver)
		}
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger: metricsLogger{inner: logger.New(
			stdlog.New(log.Logger, "", 0),
			logger.Config{
				LogLevel:                  logLevel,
				SlowThreshold:             time.Second,
				IgnoreRecordNotFoundError: true,
			},
		)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", r.cfg.DBDriver, err)
	}

	// An injected dialector wraps a pool the caller already tuned.
	if r.dialector == nil {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}

		pool := currentPoolConfig(r.cfg)
		sqlDB.SetMaxIdleConns(pool.maxIdleConns)
		sqlDB.SetMaxOpenConns(pool.maxOpenConns)
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
		sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)
	}

	log.Info().Str("driver", db.Dialector.Name()).Msg("Storage pool opened")
	r.db = db
	return db, nil
}

// Status reports "unconfigured", "up" or "down" for health output.
func (r *Repository) Status(ctx context.Context) string {
	if !r.Configured() {
		return "unconfigured"
	}
	conn, err := r.Connect(ctx)
	if err != nil {
		return "down"
	}
	_ = conn.Close()
	return "up"
}

// Close releases the pool. Safe to call when it was never opened.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}

	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	log.Info().Msg("Closing storage pool...")
	r.db = nil
	return sqlDB.Close()
}
