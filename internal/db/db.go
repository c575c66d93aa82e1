package db

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/billmal071/pavilion/internal/config"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations
var migrations embed.FS

var conn *sqlx.DB

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Init opens the configured database and applies migrations
func Init() error {
	cfg := config.Get().Database

	db, err := Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return err
	}
	if err := Migrate(db, cfg.Driver); err != nil {
		db.Close()
		return err
	}

	conn = db
	return nil
}

// Open connects to a sqlite file or a postgres server
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite, "":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			// Ensure directory exists
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, err
			}
		}

		db, err := sqlx.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// sqlite allows one writer at a time
		db.SetMaxOpenConns(1)

		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil

	case DriverPostgres:
		db, err := sqlx.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Migrate applies every pending schema migration for the driver
func Migrate(db *sqlx.DB, driver string) error {
	var (
		target database.Driver
		dir    string
		err    error
	)
	switch driver {
	case DriverSQLite, "":
		dir = "migrations/sqlite"
		target, err = sqlitemigrate.WithInstance(db.DB, &sqlitemigrate.Config{})
	case DriverPostgres:
		dir = "migrations/postgres"
		target, err = pgxmigrate.WithInstance(db.DB, &pgxmigrate.Config{})
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	src, err := iofs.New(migrations, dir)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// DB returns the database connection
func DB() *sqlx.DB {
	return conn
}

// Close closes the database connection
func Close() error {
	if conn != nil {
		return conn.Close()
	}
	return nil
}
