package fold

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/sitproject/sit/internal/types"
)

// ErrDivergedHistory is returned when a stream no longer starts with the
// records a snapshot was folded from.
var ErrDivergedHistory = errors.New("record history diverged from snapshot")

// Tail skips the first folded records of a stream, verifying that the last
// skipped record is head. It yields ErrDivergedHistory if the hash differs or
// the stream is shorter than folded.
func Tail(records iter.Seq2[types.Record, error], folded int, head string) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		pos := 0
		for rec, err := range records {
			if err != nil {
				yield(types.Record{}, err)
				return
			}
			pos++
			if pos < folded {
				continue
			}
			if pos == folded {
				if rec.Hash != head {
					yield(types.Record{}, fmt.Errorf("%w: record %d is %s, snapshot head is %s", ErrDivergedHistory, pos, rec.Hash, head))
					return
				}
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
		if pos < folded {
			yield(types.Record{}, fmt.Errorf("%w: %d records, snapshot folded %d", ErrDivergedHistory, pos, folded))
		}
	}
}

// Refresh brings prev up to date with the current history of its issue. It
// resumes from prev when the history still starts with the records prev was
// folded from, and refolds from scratch otherwise. records must return a
// fresh stream on every call. The boolean reports whether prev was resumed.
func Refresh(ctx context.Context, f Folder, prev *Snapshot, issueID string, records func() iter.Seq2[types.Record, error]) (*Result, bool, error) {
	if prev != nil {
		res, err := f.Resume(ctx, *prev, Tail(records(), prev.Folded, prev.Head))
		if err == nil {
			return res, true, nil
		}
		if !errors.Is(err, ErrDivergedHistory) {
			return nil, false, err
		}
	}
	res, err := f.Fold(ctx, issueID, records())
	return res, false, err
}
