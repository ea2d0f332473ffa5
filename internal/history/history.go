// Package history keeps a local SQLite journal of update checks and
// install attempts.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, WAL-friendly

	"segunda/internal/update"
)

// Check outcomes.
const (
	OutcomeUpToDate  = "up_to_date"
	OutcomeAvailable = "available"
	OutcomeFailed    = "failed"
)

// Install outcomes.
const (
	InstallPrepared   = "prepared"
	InstallFailed     = "failed"
	InstallCancelled  = "cancelled"
	InstallRelaunched = "relaunched"
)

const schema = `
CREATE TABLE IF NOT EXISTS checks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	checked_at INTEGER NOT NULL,
	current    TEXT NOT NULL,
	latest     TEXT NOT NULL DEFAULT '',
	outcome    TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks (checked_at);
CREATE TABLE IF NOT EXISTS installs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	version    TEXT NOT NULL,
	path       TEXT NOT NULL DEFAULT '',
	outcome    TEXT NOT NULL
);
`

// Check is one row of the checks table.
type Check struct {
	CheckedAt time.Time
	Current   string
	Latest    string
	Outcome   string
	Detail    string
}

// Install is one row of the installs table.
type Install struct {
	StartedAt time.Time
	Version   string
	Path      string
	Outcome   string
}

// Journal is an open history database.
type Journal struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or opens the journal at path, creating parent directories.
func Open(ctx context.Context, path string) (*Journal, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	//nolint:gosec // G301: user state directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", buildDSN(trimmed))
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Journal{db: db, path: trimmed, now: time.Now}, nil
}

// buildDSN creates a read-write WAL DSN for the given path.
func buildDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(3000)")
	q.Add("_pragma", "journal_mode(WAL)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Path returns the database file location.
func (j *Journal) Path() string {
	return j.path
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RecordCheck stores the outcome of a check.
func (j *Journal) RecordCheck(ctx context.Context, r update.Result) (Check, error) {
	c := CheckFromResult(r, j.now())
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO checks (checked_at, current, latest, outcome, detail) VALUES (?, ?, ?, ?, ?)`,
		c.CheckedAt.UnixMilli(), c.Current, c.Latest, c.Outcome, c.Detail)
	if err != nil {
		return Check{}, fmt.Errorf("insert check: %w", err)
	}
	return c, nil
}

// RecordInstall stores an install attempt.
func (j *Journal) RecordInstall(ctx context.Context, version, path, outcome string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO installs (started_at, version, path, outcome) VALUES (?, ?, ?, ?)`,
		j.now().UnixMilli(), version, path, outcome)
	if err != nil {
		return fmt.Errorf("insert install: %w", err)
	}
	return nil
}

// LastSuccessfulCheck returns the most recent check that reached the feed.
func (j *Journal) LastSuccessfulCheck(ctx context.Context) (Check, bool, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT checked_at, current, latest, outcome, detail
		FROM checks
		WHERE outcome != ?
		ORDER BY checked_at DESC, id DESC
		LIMIT 1
	`, OutcomeFailed)
	c, err := scanCheck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Check{}, false, nil
	}
	if err != nil {
		return Check{}, false, fmt.Errorf("query last check: %w", err)
	}
	return c, true, nil
}

// RecentChecks returns up to limit checks, newest first.
func (j *Journal) RecentChecks(ctx context.Context, limit int) ([]Check, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT checked_at, current, latest, outcome, detail
		FROM checks
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var checks []Check
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// RecentInstalls returns up to limit install attempts, newest first.
func (j *Journal) RecentInstalls(ctx context.Context, limit int) ([]Install, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT started_at, version, path, outcome
		FROM installs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query installs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var installs []Install
	for rows.Next() {
		var (
			ms int64
			in Install
		)
		if err := rows.Scan(&ms, &in.Version, &in.Path, &in.Outcome); err != nil {
			return nil, fmt.Errorf("scan install: %w", err)
		}
		in.StartedAt = time.UnixMilli(ms)
		installs = append(installs, in)
	}
	return installs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheck(s scanner) (Check, error) {
	var (
		ms int64
		c  Check
	)
	if err := s.Scan(&ms, &c.Current, &c.Latest, &c.Outcome, &c.Detail); err != nil {
		return Check{}, err
	}
	c.CheckedAt = time.UnixMilli(ms)
	return c, nil
}

// CheckFromResult maps an update result onto a journal row.
func CheckFromResult(r update.Result, at time.Time) Check {
	c := Check{CheckedAt: at}
	switch v := r.(type) {
	case update.NoUpdate:
		c.Current, c.Latest, c.Outcome = v.Current, v.Latest, OutcomeUpToDate
	case update.UpdateAvailable:
		c.Current, c.Latest, c.Outcome = v.Current, v.Latest, OutcomeAvailable
		c.Detail = v.DownloadURL
	case update.CheckFailed:
		c.Outcome, c.Detail = OutcomeFailed, v.Reason
	default:
		c.Outcome = OutcomeFailed
	}
	return c
}
