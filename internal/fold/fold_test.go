package fold

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitproject/sit/internal/reducer"
	"github.com/sitproject/sit/internal/storage"
	"github.com/sitproject/sit/internal/testutil/teststore"
	"github.com/sitproject/sit/internal/types"
)

func seq(records []types.Record) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		for _, rec := range records {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func mustFold(t *testing.T, records []types.Record) *Result {
	t.Helper()
	res, err := NewDriver(nil).Fold(context.Background(), "i1", seq(records))
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestFoldEmpty(t *testing.T) {
	res := mustFold(t, nil)

	assert.Equal(t, types.NewProjection("i1"), res.Projection)
	assert.Equal(t, types.StateOpen, res.Projection.State)
	assert.Empty(t, res.Projection.Comments)
	assert.Empty(t, res.Projection.Merges)
	assert.Empty(t, res.Projection.MergeRequests)
	assert.Nil(t, res.Projection.Summary)
	assert.Nil(t, res.Projection.LastUpdatedTimestamp)
	assert.Zero(t, res.Folded)
	assert.Empty(t, res.Head)
	assert.Empty(t, res.Diagnostics)
}

func TestFoldHistory(t *testing.T) {
	history := teststore.History()
	res := mustFold(t, history)
	p := res.Projection

	assert.Equal(t, "i1", p.ID)
	assert.Equal(t, "Widget breaks", *p.Summary)
	assert.Equal(t, "patch attached", *p.Details)
	assert.Equal(t, "ann", *p.Authors)
	assert.Equal(t, "2024-01-01T00:00:00Z", *p.Timestamp)
	assert.Equal(t, "2024-01-09T00:00:00Z", *p.LastUpdatedTimestamp)
	assert.Equal(t, types.StateClosed, p.State)
	assert.Equal(t, "h04", *p.MergeRequest)
	assert.Equal(t, []string{"h04", "h05"}, p.MergeRequests)
	assert.Equal(t, []types.Merge{{Hash: "h10", Record: "h04"}, {Hash: "h12", Record: "h05"}}, p.Merges)

	texts := make([]string, len(p.Comments))
	for i, c := range p.Comments {
		texts[i] = c.Text
	}
	assert.Equal(t, []string{"  me too ", "please review", "ci ok", "Merged h04", "Merged h05"}, texts)
	assert.Equal(t, "h05", *p.Comments[1].MergeRequest)
	assert.Equal(t, types.ReportSuccess, *p.Comments[2].MergeRequestReport)

	assert.Equal(t, len(history), res.Folded)
	assert.Equal(t, len(history), res.Applied)
	assert.Equal(t, "h13", res.Head)

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, Diagnostic{
		Record:  "h07",
		Reducer: reducer.NameCommented,
		Kind:    KindDecode,
		Message: "Commented: record h07: .authors is not valid UTF-8",
		Skipped: true,
	}, res.Diagnostics[0])
	assert.Equal(t, "h11", res.Diagnostics[1].Record)
	assert.Equal(t, reducer.NameSummaryChanged, res.Diagnostics[1].Reducer)
	assert.Equal(t, KindMissingCompanion, res.Diagnostics[1].Kind)
	assert.False(t, res.Diagnostics[1].Skipped)
}

func TestResumeEquivalence(t *testing.T) {
	history := teststore.History()
	full := mustFold(t, history)
	d := NewDriver(nil)

	for k := 0; k <= len(history); k++ {
		t.Run(fmt.Sprintf("split at %d", k), func(t *testing.T) {
			head := mustFold(t, history[:k])
			res, err := d.Resume(context.Background(), head.Snapshot, seq(history[k:]))
			require.NoError(t, err)

			assert.Equal(t, full.Snapshot, res.Snapshot)
			assert.Equal(t, len(history)-k, res.Applied)
			assert.Equal(t, full.Diagnostics, append(slices.Clone(head.Diagnostics), res.Diagnostics...))
		})
	}
}

// randomHistory builds n records with random marker sets whose companion
// files are each missing, invalid UTF-8 or valid.
func randomHistory(r *rand.Rand, n int) []types.Record {
	texts := []string{"", "  lgtm ", "fix\n", "h00", "r03"}
	records := make([]types.Record, n)
	for i := range records {
		b := teststore.Record(fmt.Sprintf("r%02d", i))
		for _, typ := range types.AllTypes() {
			if r.IntN(4) == 0 {
				b.Type(typ)
			}
		}
		for _, name := range []string{types.FileText, types.FileAuthors, types.FileTimestamp, types.FileRecord} {
			switch r.IntN(3) {
			case 1:
				b.File(name, teststore.Invalid)
			case 2:
				b.File(name, []byte(texts[r.IntN(len(texts))]))
			}
		}
		records[i] = b.Build()
	}
	return records
}

func TestResumeEquivalenceRandomHistories(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	d := NewDriver(nil)
	ctx := context.Background()

	for i := 0; i < 300; i++ {
		history := randomHistory(r, r.IntN(15))
		full := mustFold(t, history)
		want, err := json.Marshal(full.Snapshot)
		require.NoError(t, err)

		for k := 0; k <= len(history); k++ {
			head := mustFold(t, history[:k])
			data, err := json.Marshal(head.Snapshot)
			require.NoError(t, err)
			var snap Snapshot
			require.NoError(t, json.Unmarshal(data, &snap))

			res, err := d.Resume(ctx, snap, seq(history[k:]))
			require.NoError(t, err)
			got, err := json.Marshal(res.Snapshot)
			require.NoError(t, err)
			require.JSONEq(t, string(want), string(got), "history %d, split at %d", i, k)
			require.Equal(t, full.Diagnostics, append(slices.Clone(head.Diagnostics), res.Diagnostics...), "history %d, split at %d", i, k)
		}
	}
}

func TestResumeFromPersistedSnapshot(t *testing.T) {
	history := teststore.History()
	full := mustFold(t, history)

	for k := 0; k <= len(history); k++ {
		head := mustFold(t, history[:k])
		data, err := json.Marshal(head.Snapshot)
		require.NoError(t, err)

		var snap Snapshot
		require.NoError(t, json.Unmarshal(data, &snap))

		res, err := NewDriver(nil).Resume(context.Background(), snap, seq(history[k:]))
		require.NoError(t, err)
		assert.Equal(t, full.Snapshot, res.Snapshot, "split at %d", k)
	}
}

func TestResumeSameSnapshotTwice(t *testing.T) {
	base := mustFold(t, []types.Record{
		teststore.Comment("h1", "one", "a", "t1"),
		teststore.Comment("h2", "two", "a", "t2"),
		teststore.Comment("h3", "three", "a", "t3"),
	})
	before := slices.Clone(base.Projection.Comments)
	d := NewDriver(nil)

	left, err := d.Resume(context.Background(), base.Snapshot, seq([]types.Record{teststore.Comment("l", "left", "a", "t4")}))
	require.NoError(t, err)
	right, err := d.Resume(context.Background(), base.Snapshot, seq([]types.Record{teststore.Comment("r", "right", "a", "t4")}))
	require.NoError(t, err)

	assert.Equal(t, "left", left.Projection.Comments[3].Text)
	assert.Equal(t, "left", left.Accumulator.Comments[3].Text)
	assert.Equal(t, "right", right.Projection.Comments[3].Text)
	assert.Equal(t, before, base.Projection.Comments)
	assert.Len(t, base.Accumulator.Comments, 3)
}

func TestMalformedRecordIsSkipped(t *testing.T) {
	res := mustFold(t, []types.Record{
		teststore.Record("bad").Type(types.TypeCommented, types.TypeClosed).
			File(types.FileText, teststore.Invalid).Timestamp("t1").Build(),
		teststore.Comment("good", "hello", "a", "t2"),
	})

	require.Len(t, res.Projection.Comments, 1)
	assert.Equal(t, "hello", res.Projection.Comments[0].Text)
	assert.Equal(t, types.StateOpen, res.Projection.State)
	assert.Equal(t, "t2", *res.Projection.LastUpdatedTimestamp)
	assert.Equal(t, 2, res.Folded)
	require.Len(t, res.Diagnostics, 1)
	assert.True(t, res.Diagnostics[0].Skipped)
	assert.Equal(t, KindDecode, res.Diagnostics[0].Kind)
}

func TestFoldSourceError(t *testing.T) {
	boom := errors.New("disk on fire")
	records := func(yield func(types.Record, error) bool) {
		if !yield(teststore.Comment("h1", "x", "a", "t"), nil) {
			return
		}
		yield(types.Record{}, boom)
	}

	res, err := NewDriver(nil).Fold(context.Background(), "i1", records)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestFoldCancelled(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := NewDriver(nil).Fold(ctx, "i1", seq(teststore.History()))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("mid stream leaves snapshot untouched", func(t *testing.T) {
		base := mustFold(t, teststore.History()[:3])
		want := base.Snapshot
		want.Projection.Comments = slices.Clone(base.Projection.Comments)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		records := func(yield func(types.Record, error) bool) {
			for i := 0; ; i++ {
				if i == 1000 {
					cancel()
				}
				if !yield(teststore.Comment(fmt.Sprintf("c%d", i), "spam", "a", "t"), nil) {
					return
				}
			}
		}

		res, err := NewDriver(nil).Resume(ctx, base.Snapshot, records)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, want, base.Snapshot)
	})
}

func TestDriverWithTrimmedPipeline(t *testing.T) {
	p, err := reducer.DefaultPipeline().Without(reducer.NameActivity)
	require.NoError(t, err)

	res, err := NewDriver(p).Fold(context.Background(), "i1", seq(teststore.History()))
	require.NoError(t, err)
	assert.Nil(t, res.Projection.LastUpdatedTimestamp)
	assert.Equal(t, p, NewDriver(p).Pipeline())
}

func TestTail(t *testing.T) {
	history := teststore.History()

	tests := []struct {
		name     string
		folded   int
		head     string
		want     []types.Record
		diverged bool
	}{
		{name: "from start", folded: 0, want: history},
		{name: "middle", folded: 4, head: "h04", want: history[4:]},
		{name: "caught up", folded: len(history), head: "h13", want: nil},
		{name: "head mismatch", folded: 4, head: "h03", diverged: true},
		{name: "history shrank", folded: len(history) + 2, head: "h99", diverged: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.Collect(Tail(seq(history), tt.folded, tt.head))
			if tt.diverged {
				assert.ErrorIs(t, err, ErrDivergedHistory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTailPassesSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := storage.Collect(Tail(storage.Fail(boom), 3, "h3"))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDivergedHistory)
}

func TestRefresh(t *testing.T) {
	history := teststore.History()
	full := mustFold(t, history)
	d := NewDriver(nil)
	current := func() iter.Seq2[types.Record, error] { return seq(history) }

	t.Run("no snapshot", func(t *testing.T) {
		res, resumed, err := Refresh(context.Background(), d, nil, "i1", current)
		require.NoError(t, err)
		assert.False(t, resumed)
		assert.Equal(t, full.Snapshot, res.Snapshot)
	})

	t.Run("resumes", func(t *testing.T) {
		prev := mustFold(t, history[:6]).Snapshot
		res, resumed, err := Refresh(context.Background(), d, &prev, "i1", current)
		require.NoError(t, err)
		assert.True(t, resumed)
		assert.Equal(t, len(history)-6, res.Applied)
		assert.Equal(t, full.Snapshot, res.Snapshot)
	})

	t.Run("refolds diverged history", func(t *testing.T) {
		other := append(slices.Clone(history[:5]), teststore.Comment("zz", "rewritten", "a", "t"))
		prev := mustFold(t, other).Snapshot
		res, resumed, err := Refresh(context.Background(), d, &prev, "i1", current)
		require.NoError(t, err)
		assert.False(t, resumed)
		assert.Equal(t, full.Snapshot, res.Snapshot)
	})
}

func TestAll(t *testing.T) {
	store := teststore.New(t, "a", teststore.History()...)
	store.Append("b", teststore.Summary("b1", "bee", "ann", "t1"))
	store.Append("c", teststore.Status("c1", types.TypeClosed, "t1"))
	store.Create("d")

	ids, err := store.Issues(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, ids)

	for _, workers := range []int{0, 1, 3} {
		results, err := All(context.Background(), NewDriver(nil), store, ids, workers)
		require.NoError(t, err)
		require.Len(t, results, len(ids))

		for i, id := range ids {
			single, err := NewDriver(nil).Fold(context.Background(), id, store.Records(context.Background(), id))
			require.NoError(t, err)
			assert.Equal(t, single, results[i], "issue %s with %d workers", id, workers)
		}
	}
}

func TestAllUnknownIssue(t *testing.T) {
	store := teststore.New(t, "a", teststore.History()...)

	results, err := All(context.Background(), NewDriver(nil), store, []string{"a", "missing"}, 2)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "missing")
}
