package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB creates a new database connection with optimized pooling
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "gradecore.db")

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(db, 25, 5, 5*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized with connection pooling",
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns,
		"max_lifetime", pool.maxLifetime)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS assignments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS rubric_categories (
			id TEXT PRIMARY KEY,
			assignment_id TEXT NOT NULL,
			header TEXT NOT NULL,
			min_points REAL NOT NULL,
			max_points REAL NOT NULL,
			position INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (assignment_id) REFERENCES assignments(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			assignment_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			student_name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (assignment_id) REFERENCES assignments(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS grades (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			points REAL NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE(submission_id, category_id),
			FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE,
			FOREIGN KEY (category_id) REFERENCES rubric_categories(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS files (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL,
			name TEXT NOT NULL,
			content BLOB NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS feedback_comments (
			id TEXT PRIMARY KEY,
			file_id TEXT NOT NULL,
			line INTEGER NOT NULL,
			author TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_categories_assignment ON rubric_categories(assignment_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_assignment ON submissions(assignment_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_student ON submissions(assignment_id, student_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_grades_submission ON grades(submission_id)`,
		`CREATE INDEX IF NOT EXISTS idx_files_submission ON files(submission_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_file ON feedback_comments(file_id, line)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_submission": `INSERT INTO submissions (id, assignment_id, student_id, student_name, created_at)
			VALUES (?, ?, ?, ?, ?)`,

		"insert_grade": `INSERT INTO grades (id, submission_id, category_id, points, created_at)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT(submission_id, category_id) DO UPDATE SET
			points = excluded.points`,

		"insert_file": `INSERT INTO files (id, submission_id, name, content, created_at)
			VALUES (?, ?, ?, ?, ?)`,

		"insert_feedback": `INSERT INTO feedback_comments (id, file_id, line, author, text, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,

		"get_file": `SELECT id, submission_id, name, content, created_at
			FROM files WHERE id = ?`,

		"list_submissions": `SELECT s.id, s.student_id, s.student_name, s.created_at,
			(SELECT SUM(g.points) FROM grades g WHERE g.submission_id = s.id) AS total
			FROM submissions s WHERE s.assignment_id = ? ORDER BY s.created_at ASC`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}

	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
