// Package mirror holds the client-side cache of analysis summaries. It is a
// denormalized copy with no authority: the per-service stores remain the
// source of truth, and the mirror is the only place where summaries from all
// origin services are unioned into one browsable collection. Consistency is
// last-writer-wins; clearing the mirror never touches server-side state, and
// losing it is non-fatal since it can be rebuilt from each service's listing
// endpoint.
package mirror

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed summary cache.
type Store struct {
	db *sql.DB
}

// Entry is the denormalized view of one analysis artifact, sufficient for
// cross-source browsing without contacting any backend service.
type Entry struct {
	ArtifactID       string    `json:"chatId"`
	SourceID         string    `json:"sourceId"`
	ChatName         string    `json:"chatName"`
	IsGroup          bool      `json:"isGroup"`
	Summary          string    `json:"summary"`
	MessageCount     int       `json:"messageCount,omitempty"`
	ParticipantCount int       `json:"participantCount,omitempty"`
	Origin           string    `json:"source"`
	ChatDate         time.Time `json:"date"`
	CachedAt         time.Time `json:"timestamp"`
}

// New opens (and creates if needed) the mirror database at path.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS summaries (
			artifact_id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL,
			chat_name TEXT NOT NULL,
			is_group INTEGER NOT NULL DEFAULT 0,
			summary TEXT NOT NULL,
			message_count INTEGER NOT NULL DEFAULT 0,
			participant_count INTEGER NOT NULL DEFAULT 0,
			origin TEXT NOT NULL,
			chat_date DATETIME,
			cached_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_summaries_source ON summaries(source_id);
		CREATE INDEX IF NOT EXISTS idx_summaries_origin ON summaries(origin);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts or replaces an entry, keyed by artifact identifier.
// Last writer wins; there is no conflict detection.
func (s *Store) Upsert(e Entry) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO summaries
			(artifact_id, source_id, chat_name, is_group, summary, message_count, participant_count, origin, chat_date, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ArtifactID, e.SourceID, e.ChatName, e.IsGroup, e.Summary, e.MessageCount, e.ParticipantCount, e.Origin, e.ChatDate, e.CachedAt)
	return err
}

// Remove drops every cached entry for a source.
func (s *Store) Remove(sourceID string) error {
	_, err := s.db.Exec(`DELETE FROM summaries WHERE source_id = ?`, sourceID)
	return err
}

// RemoveArtifact drops a single cached entry.
func (s *Store) RemoveArtifact(artifactID string) error {
	_, err := s.db.Exec(`DELETE FROM summaries WHERE artifact_id = ?`, artifactID)
	return err
}

// Clear empties the cache. Server-side stores are not affected.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM summaries`)
	return err
}

// List returns cached entries newest first, optionally filtered by origin.
func (s *Store) List(origin string) ([]Entry, error) {
	query := `
		SELECT artifact_id, source_id, chat_name, is_group, summary, message_count, participant_count, origin, chat_date, cached_at
		FROM summaries`
	args := []any{}
	if origin != "" {
		query += ` WHERE origin = ?`
		args = append(args, origin)
	}
	query += ` ORDER BY cached_at DESC`

	return s.queryEntries(query, args...)
}

// Search returns entries whose chat name or summary contains the keyword,
// newest first.
func (s *Store) Search(keyword string) ([]Entry, error) {
	pattern := "%" + keyword + "%"
	return s.queryEntries(`
		SELECT artifact_id, source_id, chat_name, is_group, summary, message_count, participant_count, origin, chat_date, cached_at
		FROM summaries
		WHERE chat_name LIKE ? OR summary LIKE ?
		ORDER BY cached_at DESC
	`, pattern, pattern)
}

func (s *Store) queryEntries(query string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var chatDate sql.NullTime
		err := rows.Scan(&e.ArtifactID, &e.SourceID, &e.ChatName, &e.IsGroup, &e.Summary,
			&e.MessageCount, &e.ParticipantCount, &e.Origin, &chatDate, &e.CachedAt)
		if err != nil {
			return nil, err
		}
		if chatDate.Valid {
			e.ChatDate = chatDate.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
