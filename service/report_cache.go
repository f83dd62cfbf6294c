package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/config"
	"github.com/ludo-technologies/pygrade/internal/constants"
)

const reportCacheSchema = `
CREATE TABLE IF NOT EXISTS reports (
    cache_key TEXT PRIMARY KEY,
    root TEXT NOT NULL,
    report TEXT NOT NULL,
    stored_at TEXT NOT NULL
);
`

// SQLiteReportCache stores serialized reports in a SQLite database
type SQLiteReportCache struct {
	db     *sql.DB
	dbPath string
}

// DefaultCacheDirectory returns the per-user cache directory for pygrade
func DefaultCacheDirectory() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", domain.NewCacheError("failed to resolve user cache directory", err)
	}
	return filepath.Join(base, config.DefaultCacheDirName), nil
}

// ReportCacheKey builds the cache key for a commit analyzed with the
// settings summarized by fingerprint
func ReportCacheKey(commit, fingerprint string) string {
	return commit + ":" + fingerprint
}

// OpenReportCache opens or creates the cache database in dir. An empty dir
// means DefaultCacheDirectory.
func OpenReportCache(dir string) (*SQLiteReportCache, error) {
	if dir == "" {
		d, err := DefaultCacheDirectory()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.NewCacheError("failed to create cache directory", err)
	}

	dbPath := filepath.Join(dir, constants.CacheFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, domain.NewCacheError("open cache db", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, domain.NewCacheError("set WAL mode", err)
	}
	if _, err := db.Exec(reportCacheSchema); err != nil {
		db.Close()
		return nil, domain.NewCacheError("init schema", err)
	}

	return &SQLiteReportCache{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path
func (c *SQLiteReportCache) Path() string {
	return c.dbPath
}

// Get implements domain.ReportCache
func (c *SQLiteReportCache) Get(ctx context.Context, key string) (*domain.Report, error) {
	var data string
	err := c.db.QueryRowContext(ctx, "SELECT report FROM reports WHERE cache_key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, domain.NewCacheError("read report", err)
	}

	var report domain.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, domain.NewCacheError(fmt.Sprintf("decode cached report %s", key), err)
	}
	return &report, nil
}

// Put implements domain.ReportCache. An existing entry for key is replaced.
func (c *SQLiteReportCache) Put(ctx context.Context, key string, report *domain.Report) error {
	if report == nil {
		return domain.NewInvalidInputError("cannot cache a nil report", nil)
	}
	data, err := json.Marshal(report)
	if err != nil {
		return domain.NewCacheError("encode report", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO reports (cache_key, root, report, stored_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET root = excluded.root, report = excluded.report, stored_at = excluded.stored_at`,
		key, report.Root(), string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return domain.NewCacheError("write report", err)
	}
	return nil
}

// Count returns the number of cached reports
func (c *SQLiteReportCache) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&n); err != nil {
		return 0, domain.NewCacheError("count reports", err)
	}
	return n, nil
}

// Clear removes every cached report
func (c *SQLiteReportCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM reports"); err != nil {
		return domain.NewCacheError("clear reports", err)
	}
	return nil
}

// Close implements domain.ReportCache
func (c *SQLiteReportCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
