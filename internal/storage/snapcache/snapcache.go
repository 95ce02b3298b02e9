// Package snapcache persists fold snapshots in SQLite so that tooling can
// resume an issue's fold instead of refolding its whole history.
package snapcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sitproject/sit/internal/debug"
	"github.com/sitproject/sit/internal/fold"
	"github.com/sitproject/sit/internal/types"
)

// ErrMiss is returned by Get when no usable snapshot is stored.
var ErrMiss = errors.New("snapshot cache miss")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	issue_id   TEXT PRIMARY KEY,
	pipeline   TEXT NOT NULL,
	folded     INTEGER NOT NULL,
	head       TEXT NOT NULL,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Cache stores one snapshot per issue.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the stored fold result of issueID: its snapshot and every
// diagnostic reported while producing it. A result folded by a different
// pipeline is a miss.
func (c *Cache) Get(ctx context.Context, issueID, pipeline string) (*fold.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		stored string
		data   []byte
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT pipeline, data FROM snapshots WHERE issue_id = ?`, issueID,
	).Scan(&stored, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", issueID, err)
	}
	if stored != pipeline {
		return nil, ErrMiss
	}
	var res fold.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", issueID, err)
	}
	return &res, nil
}

// Put stores res as the fold result of issueID, replacing any previous one.
func (c *Cache) Put(ctx context.Context, issueID, pipeline string, res *fold.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", issueID, err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO snapshots (issue_id, pipeline, folded, head, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(issue_id) DO UPDATE SET
		   pipeline = excluded.pipeline,
		   folded = excluded.folded,
		   head = excluded.head,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		issueID, pipeline, res.Folded, res.Head, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put snapshot %s: %w", issueID, err)
	}
	return nil
}

// Delete removes the snapshot of issueID, if any.
func (c *Cache) Delete(ctx context.Context, issueID string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM snapshots WHERE issue_id = ?`, issueID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", issueID, err)
	}
	return nil
}

// PipelineKey identifies a reducer pipeline by its reducer names.
func PipelineKey(names []string) string {
	return strings.Join(names, ",")
}

// Refresh folds issueID from its cached snapshot when possible and stores
// the new result. The returned diagnostics cover the whole history, and
// Applied counts only the records folded by this call. The boolean reports
// whether the cached snapshot was resumed. A failure to store the result is
// logged, not returned.
func (c *Cache) Refresh(ctx context.Context, f fold.Folder, pipeline, issueID string, records func() iter.Seq2[types.Record, error]) (*fold.Result, bool, error) {
	prev, err := c.Get(ctx, issueID, pipeline)
	if err != nil && !errors.Is(err, ErrMiss) {
		debug.Logf("snapcache: %v; refolding %s\n", err, issueID)
	}
	var snap *fold.Snapshot
	if prev != nil {
		snap = &prev.Snapshot
	}
	res, resumed, err := fold.Refresh(ctx, f, snap, issueID, records)
	if err != nil {
		return nil, false, err
	}
	if resumed && len(prev.Diagnostics) > 0 {
		res.Diagnostics = append(slices.Clip(prev.Diagnostics), res.Diagnostics...)
	}
	if err := c.Put(ctx, issueID, pipeline, res); err != nil {
		debug.Logf("snapcache: %v\n", err)
	}
	return res, resumed, nil
}
