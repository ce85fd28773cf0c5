package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. dbKind is "sqlite" or
// "postgres"; dsn is the sqlite file path or the postgres URL.
func Connect(dbKind, dsn string) error {
	switch dbKind {
	case "sqlite":
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %v", err)
			}
		}
		db, err := sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		DB = db
	case "postgres":
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		DB = db
	default:
		return fmt.Errorf("unsupported database type: %s", dbKind)
	}

	// Initialize schema
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	// Create items table
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			question TEXT,
			answer TEXT,
			repetitions INTEGER DEFAULT 0,
			ease_factor REAL DEFAULT 2.5,
			interval_days INTEGER DEFAULT 0,
			due_date TIMESTAMP NOT NULL,
			last_reviewed_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create items table: %v", err)
	}

	// Create review_events table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS review_events (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL,
			quality TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			processed BOOLEAN DEFAULT FALSE,
			FOREIGN KEY (item_id) REFERENCES items(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create review_events table: %v", err)
	}

	// Create day_plans and plan_items tables
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS day_plans (
			plan_date TIMESTAMP PRIMARY KEY,
			shortfall BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create day_plans table: %v", err)
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS plan_items (
			plan_date TIMESTAMP NOT NULL,
			item_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (plan_date, item_id),
			FOREIGN KEY (plan_date) REFERENCES day_plans(plan_date),
			FOREIGN KEY (item_id) REFERENCES items(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create plan_items table: %v", err)
	}

	return nil
}
