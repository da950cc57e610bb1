package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"trading-monitor/internal/model"
)

// SQLite journals alerts into a single-writer SQLite database.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLite opens (or creates) the journal database with WAL mode and the
// alerts schema.
func NewSQLite(path string, log zerolog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single-writer connection pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Info().Str("path", path).Msg("alert journal opened")
	return &SQLite{db: db, log: log.With().Str("comp", "recorder").Logger()}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id         TEXT    NOT NULL,
			kind       TEXT    NOT NULL,
			asset      TEXT    NOT NULL,
			ts         INTEGER NOT NULL,
			message    TEXT    NOT NULL,
			region     TEXT,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
			PRIMARY KEY (kind, asset, ts)
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_asset_ts ON alerts (asset, ts);
	`)
	return err
}

func (r *SQLite) Name() string { return "sqlite" }

// Send inserts one alert row. The (kind, asset, ts) primary key mirrors
// the in-memory dedup key, so a replayed alert is a no-op.
func (r *SQLite) Send(ctx context.Context, ev model.AlertEvent) error {
	var region any
	if ev.Region != nil {
		b, err := json.Marshal(ev.Region)
		if err != nil {
			return fmt.Errorf("sqlite journal: marshal region: %w", err)
		}
		region = string(b)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO alerts (id, kind, asset, ts, message, region)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Kind.String(), ev.Asset, ev.Timestamp, ev.Message, region)
	if err != nil {
		return fmt.Errorf("sqlite journal: insert: %w", err)
	}
	return nil
}

// Recent returns the newest alerts for an asset, most recent first.
func (r *SQLite) Recent(ctx context.Context, asset string, limit int) ([]model.AlertEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, asset, ts, message, region
		FROM alerts WHERE asset = ? ORDER BY ts DESC LIMIT ?
	`, asset, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite journal: query: %w", err)
	}
	defer rows.Close()

	var out []model.AlertEvent
	for rows.Next() {
		var (
			ev     model.AlertEvent
			kind   string
			region sql.NullString
		)
		if err := rows.Scan(&ev.ID, &kind, &ev.Asset, &ev.Timestamp, &ev.Message, &region); err != nil {
			return nil, fmt.Errorf("sqlite journal: scan: %w", err)
		}
		ev.Kind = model.AlertKindFromString(kind)
		if region.Valid {
			var br model.BreakRegion
			if err := json.Unmarshal([]byte(region.String), &br); err == nil {
				ev.Region = &br
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *SQLite) Close() error { return r.db.Close() }
