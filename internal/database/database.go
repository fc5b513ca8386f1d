// Package database archives dungeon alerts in PostgreSQL.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/events"

	_ "github.com/lib/pq"
)

// Schema creates the alerts table. Applied by EnsureSchema at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS dungeon_alerts (
	alert_id    UUID PRIMARY KEY,
	alert_type  TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	boss_name   TEXT,
	room        INTEGER,
	cause       TEXT,
	gold_found  INTEGER,
	hp          INTEGER,
	event_ts    BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS dungeon_alerts_run_id_idx ON dungeon_alerts (run_id);
`

const insertAlertQuery = `
		INSERT INTO dungeon_alerts (alert_id, alert_type, run_id, boss_name, room, cause, gold_found, hp, event_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (alert_id) DO NOTHING
		RETURNING alert_id
	`

// DB wraps a database connection and provides alert archive operations.
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection using the provided DSN.
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Successfully connected to PostgreSQL database")

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		slog.Info("Closing database connection")
		return db.conn.Close()
	}
	return nil
}

// EnsureSchema creates the alerts table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// InsertAlert stores an alert with idempotency protection on alert_id.
// It reports false without error when the alert was already archived.
func (db *DB) InsertAlert(ctx context.Context, alert events.Alert) (bool, error) {
	var alertID string
	err := db.conn.QueryRowContext(ctx, insertAlertQuery,
		alert.AlertID,
		string(alert.Type),
		alert.RunID,
		nullString(alert.BossName),
		nullInt(alert.Room),
		nullString(alert.Cause),
		nullGold(alert),
		nullInt(alert.HP),
		alert.EventTS,
	).Scan(&alertID)

	if err != nil {
		if err == sql.ErrNoRows {
			slog.Debug("Alert already archived, skipping", "alert_id", alert.AlertID)
			return false, nil
		}
		return false, fmt.Errorf("failed to insert alert: %w", err)
	}

	slog.Debug("Archived alert",
		"alert_id", alertID,
		"alert_type", alert.Type,
		"run_id", alert.RunID,
	)
	return true, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// nullGold keeps gold_found only on jackpot alerts, where zero is not meaningful anyway.
func nullGold(alert events.Alert) sql.NullInt64 {
	if alert.Type != events.AlertJackpotLoot {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(alert.GoldFound), Valid: true}
}
