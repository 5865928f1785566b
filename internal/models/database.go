package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	sqlitecloud "github.com/sqlitecloud/sqlitecloud-go"
)

const sqliteTimestampLayout = "2006-01-02 15:04:05"

// Database represents the database connection and operations
type Database struct {
	db *sqlitecloud.SQCloud
}

// NewDatabase creates a new database connection
func NewDatabase(dsn string) (*Database, error) {
	log.Info().Str("dsn", maskConnectionString(dsn)).Msg("Connecting to SQLite Cloud database")

	db, err := sqlitecloud.Connect(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite Cloud: %w", err)
	}

	database := &Database{
		db: db,
	}

	if err := database.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return database, nil
}

// maskConnectionString hides the API key in logs for security
func maskConnectionString(connStr string) string {
	if i := strings.Index(connStr, "apikey="); i >= 0 {
		return connStr[:i] + "apikey=***"
	}
	return connStr
}

func (d *Database) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS collection_cache (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id TEXT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('dataset', 'comments')),
			create_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			update_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			json_response TEXT NOT NULL,
			CONSTRAINT unique_collection UNIQUE(subject_id, kind)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_collection_cache_subject ON collection_cache(subject_id)`,
	}

	for _, stmt := range stmts {
		if err := d.db.Execute(stmt); err != nil {
			return fmt.Errorf("failed to create collection_cache table: %w", err)
		}
	}
	return nil
}

// StoreCollection inserts or replaces the cached response for (subject, kind).
func (d *Database) StoreCollection(c *CachedCollection) error {
	log.Debug().Str("subject_id", c.SubjectID).Str("kind", string(c.Kind)).Msg("Storing cached collection")

	sql := `INSERT INTO collection_cache (subject_id, kind, json_response)
			VALUES (?, ?, ?)
			ON CONFLICT(subject_id, kind) DO UPDATE SET
				json_response = excluded.json_response,
				update_date = CURRENT_TIMESTAMP`

	if err := d.db.ExecuteArray(sql, []interface{}{c.SubjectID, string(c.Kind), string(c.JSONResponse)}); err != nil {
		return fmt.Errorf("failed to store collection %s/%s: %w", c.Kind, c.SubjectID, err)
	}
	return nil
}

// GetLatestCollection returns the cached response for (subject, kind), or nil
// when nothing has been stored yet.
func (d *Database) GetLatestCollection(subjectID string, kind CollectionKind) (*CachedCollection, error) {
	sql := `SELECT json_response, update_date FROM collection_cache
			WHERE subject_id = ? AND kind = ?
			LIMIT 1`

	result, err := d.db.SelectArray(sql, []interface{}{subjectID, string(kind)})
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s/%s: %w", kind, subjectID, err)
	}

	if result.GetNumberOfRows() == 0 {
		return nil, nil
	}

	payload, err := result.GetStringValue(0, 0)
	if err != nil {
		return nil, err
	}
	updated, err := result.GetStringValue(0, 1)
	if err != nil {
		return nil, err
	}

	return &CachedCollection{
		SubjectID:    subjectID,
		Kind:         kind,
		UpdateDate:   parseTimestamp(updated),
		JSONResponse: []byte(payload),
	}, nil
}

// parseTimestamp reads a SQLite CURRENT_TIMESTAMP value (UTC). Unparseable
// values yield the zero time, which is never fresh.
func parseTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(sqliteTimestampLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
