package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/mejaggi/nexus-answers-56/internal/chat"
)

// SQLiteStore persists edge-server state: user accounts, saved analytics
// records and message feedback.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        email TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        name TEXT,
        department TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS analytics (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        execution_time_ms INTEGER NOT NULL DEFAULT 0,
        invocation_count INTEGER NOT NULL DEFAULT 0,
        input_tokens INTEGER NOT NULL DEFAULT 0,
        output_tokens INTEGER NOT NULL DEFAULT 0,
        total_tokens INTEGER NOT NULL DEFAULT 0,
        model TEXT,
        department TEXT,
        timestamp TEXT NOT NULL,
        locale TEXT,
        rag_mode TEXT,
        error BOOLEAN DEFAULT FALSE
    );

    CREATE TABLE IF NOT EXISTS feedback (
        message_id TEXT PRIMARY KEY,
        rating TEXT NOT NULL CHECK (rating IN ('like', 'dislike')),
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	var user User
	err := s.db.QueryRow(
		"SELECT id, email, password_hash, COALESCE(name, ''), COALESCE(department, ''), created_at FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Department, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByID(id string) (*User, error) {
	var user User
	err := s.db.QueryRow(
		"SELECT id, email, password_hash, COALESCE(name, ''), COALESCE(department, ''), created_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Department, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(email, passwordHash, name, department string) (*User, error) {
	id := uuid.NewString()
	now := time.Now()
	_, err := s.db.Exec(
		"INSERT INTO users (id, email, password_hash, name, department, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, email, passwordHash, name, department, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return s.GetUserByID(id)
}

// Analytics methods

func (s *SQLiteStore) SaveAnalytics(rec chat.AnalyticsMetadata) error {
	_, err := s.db.Exec(
		`INSERT INTO analytics
        (session_id, execution_time_ms, invocation_count, input_tokens, output_tokens, total_tokens, model, department, timestamp, locale, rag_mode, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.ExecutionTimeMs, rec.InvocationCount, rec.InputTokens, rec.OutputTokens,
		rec.TotalTokens, rec.Model, rec.Department, rec.Timestamp, rec.Locale, rec.RAGMode, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analytics record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAnalytics(limit int) ([]chat.AnalyticsMetadata, error) {
	rows, err := s.db.Query(
		`SELECT session_id, execution_time_ms, invocation_count, input_tokens, output_tokens, total_tokens,
        COALESCE(model, ''), COALESCE(department, ''), timestamp, COALESCE(locale, ''), COALESCE(rag_mode, ''), error
        FROM analytics ORDER BY id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics: %w", err)
	}
	defer rows.Close()

	var records []chat.AnalyticsMetadata
	for rows.Next() {
		var rec chat.AnalyticsMetadata
		if err := rows.Scan(
			&rec.SessionID, &rec.ExecutionTimeMs, &rec.InvocationCount, &rec.InputTokens, &rec.OutputTokens,
			&rec.TotalTokens, &rec.Model, &rec.Department, &rec.Timestamp, &rec.Locale, &rec.RAGMode, &rec.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analytics record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Feedback methods

// UpsertFeedback stores a rating for a message; a later rating for the same
// message replaces the earlier one.
func (s *SQLiteStore) UpsertFeedback(messageID, rating string) error {
	_, err := s.db.Exec(
		`INSERT INTO feedback (message_id, rating, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(message_id) DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at`,
		messageID, rating, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert feedback: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListFeedback() ([]chat.FeedbackRecord, error) {
	rows, err := s.db.Query("SELECT message_id, rating FROM feedback ORDER BY updated_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var records []chat.FeedbackRecord
	for rows.Next() {
		var rec chat.FeedbackRecord
		if err := rows.Scan(&rec.MessageID, &rec.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan feedback record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
