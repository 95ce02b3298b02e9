package fold

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/sitproject/sit/internal/debug"
	"github.com/sitproject/sit/internal/reducer"
	"github.com/sitproject/sit/internal/types"
)

// Snapshot is the resumable state of a fold: the projection, the
// accumulator that produced it, and the position of the last folded record.
type Snapshot struct {
	Projection  types.Projection    `json:"projection"`
	Accumulator reducer.Accumulator `json:"accumulator"`
	// Folded is the number of records consumed, skipped ones included.
	Folded int `json:"folded"`
	// Head is the hash of the last consumed record.
	Head string `json:"head,omitempty"`
}

// Empty returns the snapshot a full fold of issueID starts from.
func Empty(issueID string) Snapshot {
	return Snapshot{
		Projection:  types.NewProjection(issueID),
		Accumulator: reducer.NewAccumulator(),
	}
}

// DiagnosticKind classifies a per-record diagnostic.
type DiagnosticKind string

// Diagnostic kinds
const (
	KindDecode           DiagnosticKind = "decode"
	KindMissingCompanion DiagnosticKind = "missing_companion"
	KindOther            DiagnosticKind = "other"
)

// Diagnostic reports a problem with one record.
type Diagnostic struct {
	Record  string         `json:"record" yaml:"record"`
	Reducer string         `json:"reducer,omitempty" yaml:"reducer,omitempty"`
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Message string         `json:"error" yaml:"error"`
	// Skipped is true when the whole record was discarded.
	Skipped bool `json:"skipped" yaml:"skipped"`
}

// Result is the outcome of a fold run.
type Result struct {
	Snapshot
	// Applied is the number of records consumed by this run.
	Applied     int          `json:"applied"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Folder folds record streams into projections. Driver is the
// implementation; telemetry wraps it.
type Folder interface {
	Fold(ctx context.Context, issueID string, records iter.Seq2[types.Record, error]) (*Result, error)
	Resume(ctx context.Context, prev Snapshot, records iter.Seq2[types.Record, error]) (*Result, error)
}

// Driver runs a reducer pipeline over record streams. A Driver holds no
// per-run state and may be shared by concurrent folds of different issues.
type Driver struct {
	pipeline *reducer.Pipeline
}

// NewDriver returns a driver for p, or for the default pipeline if p is nil.
func NewDriver(p *reducer.Pipeline) *Driver {
	if p == nil {
		p = reducer.DefaultPipeline()
	}
	return &Driver{pipeline: p}
}

// Pipeline returns the driver's reducer pipeline.
func (d *Driver) Pipeline() *reducer.Pipeline {
	return d.pipeline
}

// Fold folds an issue's complete history starting from the empty projection.
func (d *Driver) Fold(ctx context.Context, issueID string, records iter.Seq2[types.Record, error]) (*Result, error) {
	return d.Resume(ctx, Empty(issueID), records)
}

// Resume folds records appended after prev. records must hold only the
// records that follow prev.Head; see Tail.
func (d *Driver) Resume(ctx context.Context, prev Snapshot, records iter.Seq2[types.Record, error]) (*Result, error) {
	// Clipping makes the first append of this run reallocate, so prev keeps
	// its contents even when resumed more than once.
	res := &Result{Snapshot: Snapshot{
		Projection:  prev.Projection.Normalize().Clip(),
		Accumulator: prev.Accumulator.Normalize().Clip(),
		Folded:      prev.Folded,
		Head:        prev.Head,
	}}

	for rec, err := range records {
		if err != nil {
			return nil, fmt.Errorf("reading records of %s: %w", prev.Projection.ID, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Diagnostics = append(res.Diagnostics, d.step(&res.Snapshot, rec)...)
		res.Applied++
	}
	return res, nil
}

// step folds one record into snap.
func (d *Driver) step(snap *Snapshot, rec types.Record) []Diagnostic {
	saved := snap.Accumulator
	next, err := d.pipeline.Apply(&snap.Accumulator, snap.Projection, reducer.Tag(rec))
	skipped := reducer.IsDecodeError(err)
	if skipped {
		snap.Accumulator = saved
	} else {
		snap.Projection = next
	}
	snap.Folded++
	snap.Head = rec.Hash
	return diagnose(snap.Projection.ID, rec.Hash, err, skipped)
}

func diagnose(issueID, hash string, err error, skipped bool) []Diagnostic {
	var out []Diagnostic
	for _, e := range reducer.Flatten(err) {
		diag := Diagnostic{Record: hash, Kind: KindOther, Message: e.Error(), Skipped: skipped}
		var decodeErr *reducer.DecodeError
		var missingErr *reducer.MissingCompanionError
		switch {
		case errors.As(e, &decodeErr):
			diag.Reducer = decodeErr.Reducer
			diag.Kind = KindDecode
		case errors.As(e, &missingErr):
			diag.Reducer = missingErr.Reducer
			diag.Kind = KindMissingCompanion
		}
		debug.Logf("fold %s: %s: %s (skipped=%t)\n", issueID, diag.Kind, diag.Message, skipped)
		out = append(out, diag)
	}
	return out
}

var _ Folder = (*Driver)(nil)
