// Package storage provides the record source boundary of the fold engine.
//
// Concrete sources live in sub-packages: memory (tests and embedding), fsstore
// (an on-disk sit repository) and jsonl (exported record streams). snapcache
// persists fold snapshots next to a repository.
package storage

import (
	"context"
	"errors"
	"iter"

	"github.com/sitproject/sit/internal/types"
)

// ErrNotFound is returned when a requested issue does not exist in the source.
var ErrNotFound = errors.New("not found")

// Source is an ordered, possibly lazy supply of records per issue.
//
// Records yields an issue's records in the total order the fold requires.
// Producing that order (causal/topological consistency across replicas) is
// the source's responsibility; the fold driver never reorders. A non-nil
// error ends the sequence.
type Source interface {
	Issues(ctx context.Context) ([]string, error)
	Records(ctx context.Context, issueID string) iter.Seq2[types.Record, error]
}

// Collect drains a record sequence into a slice.
func Collect(seq iter.Seq2[types.Record, error]) ([]types.Record, error) {
	var out []types.Record
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Fail returns a sequence that yields only err.
func Fail(err error) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		yield(types.Record{}, err)
	}
}
