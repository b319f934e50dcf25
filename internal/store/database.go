package store

import (
	"context"
	"embed"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Database wraps the PostgreSQL connection pool used by the season sink.
type Database struct {
	conn   *sqlx.DB
	logger *zap.Logger
}

// NewDatabase opens and pings a PostgreSQL connection.
func NewDatabase(ctx context.Context, dsn string, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	database := NewDatabaseFromDB(db, logger)
	if err := database.HealthCheck(ctx); err != nil {
		_ = database.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return database, nil
}

// NewDatabaseFromDB wraps an existing handle.
func NewDatabaseFromDB(db *sqlx.DB, logger *zap.Logger) *Database {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Database{conn: db, logger: logger.Named("store")}
}

// Close closes the connection pool.
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying handle.
func (db *Database) DB() *sqlx.DB {
	return db.conn
}

// RunMigrations applies the embedded schema migrations.
func (db *Database) RunMigrations() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}

	driver, err := postgres.WithInstance(db.conn.DB, &postgres.Config{})
	if err != nil {
		return errors.Wrap(err, "migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "create migrator")
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			db.logger.Info("schema up to date")
			return nil
		}
		return errors.Wrap(err, "apply migrations")
	}

	version, _, _ := m.Version()
	db.logger.Info("migrations applied", zap.Uint("version", version))
	return nil
}

// HealthCheck pings the database.
func (db *Database) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.conn.PingContext(ctx)
}
