package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var db *sql.DB

// Config carries the connection parameters, typically read from the environment.
type Config struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SchemaPath string // optional; when set the schema script is applied on startup
}

// InitDB opens and pings the connection pool. The caller decides whether a
// failure is fatal: billing endpoints are expected to fail closed with a
// service-unavailable signal when no store is configured, so returning the
// error instead of exiting keeps that decision out of this package.
func InitDB(cfg Config) error {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	pool, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if err := pool.Ping(); err != nil {
		pool.Close()
		return fmt.Errorf("connecting to database: %w", err)
	}

	if cfg.SchemaPath != "" {
		if err := applySchema(pool, cfg.SchemaPath); err != nil {
			pool.Close()
			return err
		}
	}

	db = pool
	return nil
}

// applySchema reads and executes the schema script at schemaPath.
func applySchema(pool *sql.DB, schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}
	if _, err := pool.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	return nil
}

// GetDB returns the database connection pool. Nil when InitDB failed or was
// never called; services treat a nil pool as "persistence not configured".
func GetDB() *sql.DB {
	return db
}
