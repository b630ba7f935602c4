package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/costwatch/costwatch/internal/config"
)

// New creates a new database connection
func New(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the anomaly results table if it does not exist
func Migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS cost_anomalies (
	id BIGSERIAL PRIMARY KEY,
	resource_id TEXT NOT NULL,
	subscription_id TEXT NOT NULL,
	date DATE NOT NULL,
	actual_cost DOUBLE PRECISION NOT NULL,
	expected_cost DOUBLE PRECISION NOT NULL,
	variance DOUBLE PRECISION NOT NULL,
	variance_percentage DOUBLE PRECISION NOT NULL,
	z_score DOUBLE PRECISION NOT NULL,
	anomaly_type TEXT NOT NULL,
	severity TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	detected_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cost_anomalies_subscription ON cost_anomalies (subscription_id, date);
CREATE INDEX IF NOT EXISTS idx_cost_anomalies_severity ON cost_anomalies (severity);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
