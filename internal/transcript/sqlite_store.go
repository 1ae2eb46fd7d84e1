package transcript

import (
	"fmt"
	"time"

	"crawshaw.io/sqlite"
)

// SQLiteStore is an implementation of Store that uses SQLite.
type SQLiteStore struct {
	conn   *sqlite.Conn
	dbPath string
}

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Initialize initializes the store with the given database path.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	s.conn = conn

	err = s.createTable()
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// createTable creates the inversion_transcript table if it doesn't exist.
func (s *SQLiteStore) createTable() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS inversion_transcript (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		guess TEXT NOT NULL,
		vector_error REAL NOT NULL,
		best_error REAL NOT NULL,
		embedding BLOB,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, seq)
	);`

	stmt, err := s.conn.Prepare(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare create table statement: %w", err)
	}
	defer stmt.Reset()

	_, err = stmt.Step()
	if err != nil {
		return fmt.Errorf("failed to execute create table statement: %w", err)
	}

	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Append records one scored iteration of a session.
func (s *SQLiteStore) Append(entry Entry) error {
	insertSQL := `
	INSERT OR REPLACE INTO inversion_transcript
		(session_id, seq, guess, vector_error, best_error, embedding, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);`

	stmt, err := s.conn.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, entry.SessionID)
	stmt.BindInt64(2, int64(entry.Seq))
	stmt.BindText(3, entry.Guess)
	stmt.BindFloat(4, entry.VectorError)
	stmt.BindFloat(5, entry.BestError)
	stmt.BindBytes(6, entry.Embedding)
	stmt.BindInt64(7, entry.Timestamp.Unix())

	_, err = stmt.Step()
	if err != nil {
		return fmt.Errorf("failed to insert transcript entry: %w", err)
	}

	return nil
}

// Session returns all entries of a session, ordered by sequence number.
func (s *SQLiteStore) Session(sessionID string) ([]Entry, error) {
	querySQL := `
	SELECT session_id, seq, guess, vector_error, best_error, embedding, created_at
	FROM inversion_transcript
	WHERE session_id = ?
	ORDER BY seq ASC;`

	stmt, err := s.conn.Prepare(querySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, sessionID)

	var entries []Entry
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, fmt.Errorf("failed to step through results: %w", err)
		}
		if !hasRow {
			break
		}

		entry := Entry{
			SessionID:   stmt.ColumnText(0),
			Seq:         int(stmt.ColumnInt64(1)),
			Guess:       stmt.ColumnText(2),
			VectorError: stmt.ColumnFloat(3),
			BestError:   stmt.ColumnFloat(4),
			Timestamp:   time.Unix(stmt.ColumnInt64(6), 0),
		}

		embeddingLen := stmt.ColumnLen(5)
		if embeddingLen > 0 {
			embedding := make([]byte, embeddingLen)
			stmt.ColumnBytes(5, embedding)
			entry.Embedding = embedding
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Clear removes all transcript entries and reports how many were deleted.
func (s *SQLiteStore) Clear() (int, error) {
	countSQL := `SELECT COUNT(*) FROM inversion_transcript;`

	countStmt, err := s.conn.Prepare(countSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare count statement: %w", err)
	}

	hasRow, err := countStmt.Step()
	if err != nil {
		countStmt.Reset()
		return 0, fmt.Errorf("failed to count transcript entries: %w", err)
	}

	count := 0
	if hasRow {
		count = int(countStmt.ColumnInt64(0))
	}
	countStmt.Reset()

	deleteSQL := `DELETE FROM inversion_transcript;`

	stmt, err := s.conn.Prepare(deleteSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Reset()

	_, err = stmt.Step()
	if err != nil {
		return 0, fmt.Errorf("failed to delete transcript entries: %w", err)
	}

	return count, nil
}
