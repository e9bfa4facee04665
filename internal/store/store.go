package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the SQLite-backed entity store. It exposes typed
// load/list/create/update/remove operations per entity family plus the
// origin-aware upserts consumed by the pull reconciler.
//
// All methods are safe for concurrent use; SQLite serialises writes and the
// store holds no mutable state of its own.
type Store struct {
	db *sql.DB
}

// New creates a Store on an open SQLite connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// timeFormat is the timestamp format used by all TEXT time columns.
const timeFormat = time.RFC3339

// newID returns a fresh canonical record identifier.
func newID() string {
	return uuid.NewString()
}

// now returns the current UTC time truncated to seconds, matching the
// RFC3339 second resolution used in the schema.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr converts a NullString back to an optional string pointer.
func stringPtr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseTime parses an RFC3339 timestamp column.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// marshalSettings serialises an opaque settings blob for a TEXT column.
// A nil blob is stored as an empty object so round-trips stay symmetric.
func marshalSettings(s Settings) (string, error) {
	if s == nil {
		return "{}", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshalling network settings: %w", err)
	}
	return string(data), nil
}

// unmarshalSettings deserialises a settings TEXT column.
func unmarshalSettings(data string) (Settings, error) {
	if data == "" {
		return Settings{}, nil
	}
	var s Settings
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshalling network settings: %w", err)
	}
	return s, nil
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
