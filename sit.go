// Package sit provides a minimal public API for folding sit record histories
// outside the sit CLI.
//
// Tools that keep projections up to date persist the Snapshot of each Result
// and pass it to Resume together with the records appended since.
package sit

import (
	"context"
	"iter"

	"github.com/sitproject/sit/internal/fold"
	"github.com/sitproject/sit/internal/reducer"
	"github.com/sitproject/sit/internal/storage"
	"github.com/sitproject/sit/internal/storage/fsstore"
	"github.com/sitproject/sit/internal/storage/memory"
	"github.com/sitproject/sit/internal/types"
)

// Core types
type (
	Record      = types.Record
	Projection  = types.Projection
	Comment     = types.Comment
	Merge       = types.Merge
	State       = types.State
	Snapshot    = fold.Snapshot
	Result      = fold.Result
	Diagnostic  = fold.Diagnostic
	Folder      = fold.Folder
	Source      = storage.Source
	MemoryStore = memory.Store
)

// State constants
const (
	StateOpen   = types.StateOpen
	StateClosed = types.StateClosed
)

// ErrDivergedHistory is reported by Tail when a history no longer starts with
// the records a snapshot was folded from.
var ErrDivergedHistory = fold.ErrDivergedHistory

// NewFolder returns a folder running the default reducer pipeline without
// the named reducers.
func NewFolder(disabled ...string) (Folder, error) {
	p, err := reducer.DefaultPipeline().Without(disabled...)
	if err != nil {
		return nil, err
	}
	return fold.NewDriver(p), nil
}

// Fold folds an issue's complete history with the default pipeline.
func Fold(ctx context.Context, issueID string, records iter.Seq2[Record, error]) (*Result, error) {
	return fold.NewDriver(nil).Fold(ctx, issueID, records)
}

// Resume folds records appended after prev with the default pipeline.
func Resume(ctx context.Context, prev Snapshot, records iter.Seq2[Record, error]) (*Result, error) {
	return fold.NewDriver(nil).Resume(ctx, prev, records)
}

// Tail skips the records of a full history that prev already covers.
func Tail(records iter.Seq2[Record, error], prev Snapshot) iter.Seq2[Record, error] {
	return fold.Tail(records, prev.Folded, prev.Head)
}

// OpenRepository opens an on-disk sit repository (the directory holding
// config.json).
func OpenRepository(path string) (Source, error) {
	return fsstore.Open(path)
}

// NewMemorySource returns an empty in-memory record source.
func NewMemorySource() *MemoryStore {
	return memory.New()
}
