// Package fsstore reads records from an on-disk sit repository.
//
// Layout:
//
//	<repo>/config.json
//	<repo>/items/<id>/<record>/...   (legacy repositories: issues/<id>/...)
//
// Every record is a directory named by its base32-encoded hash holding the
// record's files. A record links to the records it was created on top of
// with empty ".prev/<hash>" files.
package fsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sitproject/sit/internal/debug"
	"github.com/sitproject/sit/internal/storage"
	"github.com/sitproject/sit/internal/types"
)

// Version is the repository format version this package reads.
const Version = "1"

// Repository layout names
const (
	ConfigFile = "config.json"
	DirName    = ".sit"
	ItemsDir   = "items"
	LegacyDir  = "issues"
)

// ErrInvalidVersion is returned by Open for repositories in another format version.
var ErrInvalidVersion = errors.New("unsupported repository version")

// Config is the repository's config.json. Only the fields needed to read
// records are interpreted.
type Config struct {
	Version          string          `json:"version"`
	Encoding         string          `json:"encoding"`
	HashingAlgorithm json.RawMessage `json:"hashing_algorithm,omitempty"`
}

// Repository is a sit repository on disk. It implements storage.Source.
type Repository struct {
	path     string
	itemsDir string
	config   Config
	retry    func() backoff.BackOff
}

const readRetryMaxElapsed = 2 * time.Second

func newReadBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 20 * time.Millisecond
	bo.MaxElapsedTime = readRetryMaxElapsed
	return bo
}

// Open opens the repository rooted at path.
func Open(path string) (*Repository, error) {
	data, err := os.ReadFile(filepath.Join(path, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Join(path, ConfigFile), err)
	}
	if cfg.Version != Version {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrInvalidVersion, Version, cfg.Version)
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "base32"
	}
	if _, err := encodingFor(cfg.Encoding); err != nil {
		return nil, err
	}

	itemsDir := filepath.Join(path, ItemsDir)
	if _, err := os.Stat(itemsDir); errors.Is(err, fs.ErrNotExist) {
		if info, err := os.Stat(filepath.Join(path, LegacyDir)); err == nil && info.IsDir() {
			itemsDir = filepath.Join(path, LegacyDir)
		}
	}
	return &Repository{path: path, itemsDir: itemsDir, config: cfg, retry: newReadBackoff}, nil
}

// Find opens the first ".sit" repository found in dir or one of its parents.
func Find(dir string) (*Repository, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return Open(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no %s repository found in or above the current directory: %w", DirName, storage.ErrNotFound)
		}
		dir = parent
	}
}

// Path returns the repository root.
func (r *Repository) Path() string { return r.path }

// Config returns the parsed config.json.
func (r *Repository) Config() Config { return r.config }

// ItemDir returns the directory holding the records of issueID.
func (r *Repository) ItemDir(issueID string) string {
	return filepath.Join(r.itemsDir, issueID)
}

// Issues returns the item ids in the repository in lexicographic order.
func (r *Repository) Issues(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.itemsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Records yields an item's records in generation order (see Order). Record
// contents are read lazily, one record at a time.
func (r *Repository) Records(ctx context.Context, issueID string) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		order, err := r.Order(ctx, issueID)
		if err != nil {
			yield(types.Record{}, err)
			return
		}
		for _, hash := range order {
			if err := ctx.Err(); err != nil {
				yield(types.Record{}, err)
				return
			}
			rec, err := r.readRecord(ctx, issueID, hash)
			if err != nil {
				yield(types.Record{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Order returns the hashes of an item's records in fold order.
//
// Records without ".prev" links form the first generation. Each following
// generation holds the records whose links all point into the previous
// generation. Within a generation records are sorted by encoded hash, which
// makes the order identical on every replica. Directories whose names are
// not valid encoded hashes are ignored, as are records linking across
// generations.
func (r *Repository) Order(ctx context.Context, issueID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := r.ItemDir(issueID)
	enc, _ := encodingFor(r.config.Encoding)

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("item %s: %w", issueID, storage.ErrNotFound)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading item %s: %w", issueID, err)
	}

	links := make(map[string][]string)
	var names []string
	for _, e := range entries {
		if !e.IsDir() || !enc.valid(e.Name()) {
			continue
		}
		parents, err := readLinks(filepath.Join(dir, e.Name(), ".prev"))
		if err != nil {
			return nil, fmt.Errorf("reading record %s: %w", e.Name(), err)
		}
		names = append(names, e.Name())
		links[e.Name()] = parents
	}
	sort.Strings(names)

	var order []string
	generation := make(map[string]bool)
	for _, name := range names {
		if len(links[name]) == 0 {
			order = append(order, name)
			generation[name] = true
		}
	}
	for len(generation) > 0 {
		next := make(map[string]bool)
		for _, name := range names {
			parents := links[name]
			if len(parents) == 0 {
				continue
			}
			all := true
			for _, p := range parents {
				if !generation[p] {
					all = false
					break
				}
			}
			if all {
				order = append(order, name)
				next[name] = true
			}
		}
		generation = next
	}
	debug.Logf("fsstore: item %s: %d records in order, %d on disk\n", issueID, len(order), len(names))
	return order, nil
}

func readLinks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	links := make([]string, 0, len(entries))
	for _, e := range entries {
		links = append(links, e.Name())
	}
	return links, nil
}

func (r *Repository) readRecord(ctx context.Context, issueID, hash string) (types.Record, error) {
	root := filepath.Join(r.itemsDir, issueID, hash)
	var rec types.Record
	err := r.withRetry(ctx, func() error {
		rec = types.Record{Hash: hash, Files: make(map[string][]byte)}
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			rec.Files[filepath.ToSlash(rel)] = data
			return nil
		})
	})
	if err != nil {
		return types.Record{}, fmt.Errorf("reading record %s of %s: %w", hash, issueID, err)
	}
	return rec, nil
}

// withRetry retries op while a concurrent writer may be moving a record into
// place. Only "not exist" errors are retried.
func (r *Repository) withRetry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(r.retry(), ctx))
}

var _ storage.Source = (*Repository)(nil)
