// Package records persists moderation records and ban requests. Both tables
// are keyed by the id of the Discord message announcing the entry, so entry
// and announcement resolve from one another without a mapping table.
package records

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"sentinel-bot/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
    id         TEXT PRIMARY KEY,
    author_id  TEXT NOT NULL,
    user_id    INTEGER NOT NULL,
    reason     TEXT NOT NULL,
    action     TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    editors    TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_records_user ON records(user_id, created_at);

CREATE TABLE IF NOT EXISTS ban_requests (
    id         TEXT PRIMARY KEY,
    author_id  TEXT NOT NULL,
    user_id    INTEGER NOT NULL,
    reason     TEXT NOT NULL,
    state      TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

-- At most one pending ban request per subject, enforced where it cannot
-- race: in the store itself.
CREATE UNIQUE INDEX IF NOT EXISTS idx_ban_requests_pending
    ON ban_requests(user_id) WHERE state = 'Pending';
`

// Init opens the records database and ensures the schema exists.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to records database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create records tables: %w", err)
	}
	return db, nil
}

// Store wraps record and ban-request persistence.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// CreateRecord inserts a finalized record.
func (s *Store) CreateRecord(record model.Record) error {
	if record.Editors == "" {
		record.Editors = "[]"
	}
	query := `INSERT INTO records (id, author_id, user_id, reason, action, created_at, editors)
	          VALUES (:id, :author_id, :user_id, :reason, :action, :created_at, :editors)`
	if _, err := s.db.NamedExec(query, record); err != nil {
		return fmt.Errorf("failed to insert record %s: %w", record.ID, err)
	}
	return nil
}

// GetRecord retrieves a record by its announcement message id. A missing
// record returns (nil, nil).
func (s *Store) GetRecord(id string) (*model.Record, error) {
	var record model.Record
	err := s.db.Get(&record, "SELECT * FROM records WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return &record, nil
}

// RecordsBySubject lists a subject's records newest first, optionally only
// those created before the cutoff.
func (s *Store) RecordsBySubject(userID int64, before *time.Time) ([]model.Record, error) {
	var records []model.Record
	query := "SELECT * FROM records WHERE user_id = ?"
	args := []interface{}{userID}
	if before != nil {
		query += " AND created_at < ?"
		args = append(args, before.Unix())
	}
	query += " ORDER BY created_at DESC"
	if err := s.db.Select(&records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get records for user %d: %w", userID, err)
	}
	return records, nil
}

// CountWarnings returns how many Warning records a subject has.
func (s *Store) CountWarnings(userID int64) (int, error) {
	var count int
	err := s.db.Get(&count, "SELECT COUNT(*) FROM records WHERE user_id = ? AND action = ?", userID, model.ActionWarning)
	if err != nil {
		return 0, fmt.Errorf("failed to count warnings for user %d: %w", userID, err)
	}
	return count, nil
}

// CountWarningsSince returns a subject's Warning records created at or
// after the given time.
func (s *Store) CountWarningsSince(userID int64, since time.Time) (int, error) {
	var count int
	err := s.db.Get(&count,
		"SELECT COUNT(*) FROM records WHERE user_id = ? AND action = ? AND created_at >= ?",
		userID, model.ActionWarning, since.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to count warnings for user %d: %w", userID, err)
	}
	return count, nil
}

// UpdateRecordReason replaces a record's reason and appends the editor.
func (s *Store) UpdateRecordReason(id, reason, editorID string) error {
	return s.updateRecord(id, editorID, "reason", reason)
}

// UpdateRecordAction replaces a record's action and appends the editor.
func (s *Store) UpdateRecordAction(id string, action model.Action, editorID string) error {
	return s.updateRecord(id, editorID, "action", string(action))
}

func (s *Store) updateRecord(id, editorID, column, value string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin record update: %w", err)
	}
	defer tx.Rollback()

	var editorsRaw string
	if err := tx.Get(&editorsRaw, "SELECT editors FROM records WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to load record %s for update: %w", id, err)
	}
	var editors []string
	if err := json.Unmarshal([]byte(editorsRaw), &editors); err != nil {
		editors = nil
	}
	editors = append(editors, editorID)
	updated, err := json.Marshal(editors)
	if err != nil {
		return fmt.Errorf("failed to encode editors for record %s: %w", id, err)
	}

	query := fmt.Sprintf("UPDATE records SET %s = ?, editors = ? WHERE id = ?", column)
	if _, err := tx.Exec(query, value, string(updated), id); err != nil {
		return fmt.Errorf("failed to update record %s: %w", id, err)
	}
	return tx.Commit()
}

// DeleteRecord removes a record by id.
func (s *Store) DeleteRecord(id string) error {
	result, err := s.db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for record %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no record found with id %s", id)
	}
	return nil
}

// CreateBanRequest inserts a ban request. Creating a second Pending request
// for the same subject returns model.ErrPendingBanRequestExists via the
// partial unique index, regardless of how the callers interleave.
func (s *Store) CreateBanRequest(request model.BanRequest) error {
	query := `INSERT INTO ban_requests (id, author_id, user_id, reason, state, created_at)
	          VALUES (:id, :author_id, :user_id, :reason, :state, :created_at)`
	if _, err := s.db.NamedExec(query, request); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return model.ErrPendingBanRequestExists
		}
		return fmt.Errorf("failed to insert ban request %s: %w", request.ID, err)
	}
	return nil
}

// PendingBanRequest returns the subject's pending ban request, or nil.
func (s *Store) PendingBanRequest(userID int64) (*model.BanRequest, error) {
	var request model.BanRequest
	err := s.db.Get(&request,
		"SELECT * FROM ban_requests WHERE user_id = ? AND state = ? LIMIT 1",
		userID, model.BanRequestPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending ban request for user %d: %w", userID, err)
	}
	return &request, nil
}
