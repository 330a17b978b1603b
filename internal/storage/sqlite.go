// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kensa/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		submission_name TEXT,
		fingerprint TEXT NOT NULL,
		chars INTEGER NOT NULL,
		scorecard TEXT,
		scoring_error TEXT,
		plagiarism TEXT NOT NULL,
		plagiarism_percent REAL NOT NULL,
		verdict TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_fingerprint ON reports(fingerprint);
	`
	_, err := db.Exec(schema)
	return err
}

const reportColumns = `id, submission_name, fingerprint, chars, scorecard, scoring_error, plagiarism, verdict, created_at`

// SaveReport inserts a report. CreatedAt is set when zero.
func (s *SQLiteStorage) SaveReport(ctx context.Context, report *models.Report) error {
	var scorecardJSON sql.NullString
	if report.Scorecard != nil {
		b, err := json.Marshal(report.Scorecard)
		if err != nil {
			return fmt.Errorf("failed to marshal scorecard: %w", err)
		}
		scorecardJSON = sql.NullString{String: string(b), Valid: true}
	}
	plagiarism := report.Plagiarism
	if plagiarism == nil {
		plagiarism = &models.MatchResult{Source: models.NoMatch}
	}
	plagiarismJSON, err := json.Marshal(plagiarism)
	if err != nil {
		return fmt.Errorf("failed to marshal plagiarism result: %w", err)
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, submission_name, fingerprint, chars, scorecard, scoring_error, plagiarism, plagiarism_percent, verdict, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.SubmissionName, report.Fingerprint, report.Chars, scorecardJSON,
		report.ScoringError, string(plagiarismJSON), plagiarism.Percent, string(report.Verdict), report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReport returns a report by ID.
func (s *SQLiteStorage) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// DeleteReport removes a report by ID.
func (s *SQLiteStorage) DeleteReport(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListReports returns reports with offset and limit, newest first.
func (s *SQLiteStorage) ListReports(ctx context.Context, offset, limit int) ([]*models.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectReports(rows)
}

// FindByFingerprint returns all reports whose submission has the given fingerprint.
func (s *SQLiteStorage) FindByFingerprint(ctx context.Context, fingerprint string) ([]*models.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE fingerprint = ? ORDER BY created_at DESC, id`,
		fingerprint,
	)
	if err != nil {
		return nil, err
	}
	return collectReports(rows)
}

// CountReports returns the total number of reports.
func (s *SQLiteStorage) CountReports(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		report         models.Report
		name           sql.NullString
		scorecardJSON  sql.NullString
		scoringError   sql.NullString
		plagiarismJSON string
		verdict        string
	)
	if err := row.Scan(&report.ID, &name, &report.Fingerprint, &report.Chars, &scorecardJSON,
		&scoringError, &plagiarismJSON, &verdict, &report.CreatedAt); err != nil {
		return nil, err
	}
	report.SubmissionName = name.String
	report.ScoringError = scoringError.String
	report.Verdict = models.Verdict(verdict)
	if scorecardJSON.Valid && scorecardJSON.String != "" {
		var sc models.Scorecard
		if err := json.Unmarshal([]byte(scorecardJSON.String), &sc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scorecard: %w", err)
		}
		report.Scorecard = &sc
	}
	var mr models.MatchResult
	if err := json.Unmarshal([]byte(plagiarismJSON), &mr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plagiarism result: %w", err)
	}
	report.Plagiarism = &mr
	return &report, nil
}

func collectReports(rows *sql.Rows) ([]*models.Report, error) {
	defer rows.Close()
	var reports []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
