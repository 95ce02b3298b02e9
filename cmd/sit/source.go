package main

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/sitproject/sit/internal/config"
	"github.com/sitproject/sit/internal/debug"
	"github.com/sitproject/sit/internal/fold"
	"github.com/sitproject/sit/internal/reducer"
	"github.com/sitproject/sit/internal/storage"
	"github.com/sitproject/sit/internal/storage/fsstore"
	"github.com/sitproject/sit/internal/storage/jsonl"
	"github.com/sitproject/sit/internal/storage/snapcache"
	"github.com/sitproject/sit/internal/telemetry"
	"github.com/sitproject/sit/internal/types"
)

// errNoRepository is returned when neither --repo nor --from locate records.
var errNoRepository = errors.New("no sit repository found (use --repo, set SIT_DIR, or run inside a directory containing .sit)")

// session is what a command folds with: a record source, the folder and,
// for on-disk repositories, the snapshot cache.
type session struct {
	src      storage.Source
	repo     *fsstore.Repository // nil for --from
	folder   fold.Folder
	pipeline string
	cache    *snapcache.Cache // nil when disabled or unavailable
	workers  int
	format   config.OutputFormat
}

// Close releases the snapshot cache.
func (s *session) Close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
}

// repoPath resolves the repository directory: --repo/SIT_REPO, then
// SIT_DIR or a .sit directory in or above the working directory.
func repoPath() string {
	if dir := config.GetString(config.KeyRepo); dir != "" {
		return dir
	}
	return config.FindRepoDir()
}

type sessionOptions struct {
	from    string
	noCache bool
}

// openSession opens the record source and builds the folder from settings.
// Settings in the repository's own config.yaml apply when it is not the
// repository the global settings were loaded for.
func (a *app) openSession(opts sessionOptions) (*session, error) {
	s := &session{
		workers: config.GetInt(config.KeyWorkers),
		format:  config.GetOutputFormat(),
	}
	cacheEnabled := config.GetBool(config.KeyCacheEnabled) && !opts.noCache
	var disabled []string

	if opts.from != "" {
		store, err := loadExport(opts.from)
		if err != nil {
			return nil, err
		}
		s.src = store
		cacheEnabled = false
		if disabled, err = config.DisabledReducers(""); err != nil {
			return nil, err
		}
	} else {
		dir := repoPath()
		if dir == "" {
			return nil, errNoRepository
		}
		repo, err := fsstore.Open(dir)
		if err != nil {
			return nil, err
		}
		s.repo, s.src = repo, repo
		if disabled, err = config.DisabledReducers(dir); err != nil {
			return nil, err
		}
		if !sameDir(dir, config.FindRepoDir()) {
			local := config.LoadLocalConfig(dir)
			if local.Workers > 0 && !a.root.PersistentFlags().Changed("workers") {
				s.workers = local.Workers
			}
			if local.Output.Format != "" {
				if f, err := config.ParseOutputFormat(local.Output.Format); err == nil {
					s.format = f
				}
			}
			cacheEnabled = cacheEnabled && local.CacheEnabled()
			disabled = append(disabled, local.Reducers.Disabled...)
		}
	}

	p, err := reducer.DefaultPipeline().Without(disabled...)
	if err != nil {
		return nil, fmt.Errorf("reducers.disabled: %w", err)
	}
	s.folder = telemetry.WrapFolder(fold.NewDriver(p))
	s.pipeline = snapcache.PipelineKey(p.Names())

	if cacheEnabled && s.repo != nil {
		cache, err := snapcache.Open(config.CachePath(s.repo.Path()))
		if err != nil {
			debug.Logf("snapshot cache disabled: %v\n", err)
		} else {
			s.cache = cache
		}
	}
	return s, nil
}

func loadExport(path string) (storage.Source, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied export file
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	store, result, err := jsonl.Load(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	debug.Logf("loaded %d lines (%d issues, %d duplicates) from %s\n", result.Lines, result.Issues, result.Duplicates, path)
	return store, nil
}

func sameDir(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// records returns a factory of fresh record streams for issueID.
func (s *session) records(ctx context.Context, issueID string) func() iter.Seq2[types.Record, error] {
	return func() iter.Seq2[types.Record, error] {
		return s.src.Records(ctx, issueID)
	}
}

// fold folds one issue, through the snapshot cache when there is one.
func (s *session) fold(ctx context.Context, issueID string) (*fold.Result, error) {
	if s.cache != nil {
		res, resumed, err := s.cache.Refresh(ctx, s.folder, s.pipeline, issueID, s.records(ctx, issueID))
		if err != nil {
			return nil, err
		}
		debug.Logf("fold %s: resumed=%t applied=%d\n", issueID, resumed, res.Applied)
		return res, nil
	}
	return s.folder.Fold(ctx, issueID, s.src.Records(ctx, issueID))
}

// refold brings last up to date with the issue's history. Without a
// snapshot cache it resumes from last in memory.
func (s *session) refold(ctx context.Context, issueID string, last *fold.Result) (*fold.Result, error) {
	if s.cache != nil || last == nil {
		return s.fold(ctx, issueID)
	}
	res, resumed, err := fold.Refresh(ctx, s.folder, &last.Snapshot, issueID, s.records(ctx, issueID))
	if err != nil {
		return nil, err
	}
	debug.Logf("refold %s: resumed=%t applied=%d\n", issueID, resumed, res.Applied)
	return res, nil
}

// foldAll folds every issue in ids in parallel.
func (s *session) foldAll(ctx context.Context, ids []string) ([]*fold.Result, error) {
	return fold.All(ctx, s.folder, s.src, ids, s.workers)
}

// issues returns the sorted issue ids of the source.
func (s *session) issues(ctx context.Context) ([]string, error) {
	ids, err := s.src.Issues(ctx)
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}
