// Package teststore provides record builders and seeded stores for tests.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    store := teststore.New(t, "a1",
//	        teststore.Record("h1").Type(types.TypeSummaryChanged).Text("fix the widget").Authors("ann").Timestamp("t1").Build(),
//	    )
//	    ...
//	}
package teststore

import (
	"testing"

	"github.com/sitproject/sit/internal/storage/memory"
	"github.com/sitproject/sit/internal/types"
)

// Builder assembles a types.Record file by file.
type Builder struct {
	rec types.Record
}

// Record starts a record with the given content hash.
func Record(hash string) *Builder {
	return &Builder{rec: types.Record{Hash: hash, Files: map[string][]byte{}}}
}

// Type adds zero-byte markers for the given recognized types.
func (b *Builder) Type(ts ...types.Type) *Builder {
	for _, t := range ts {
		b.rec.Files[t.Path()] = []byte{}
	}
	return b
}

// Marker adds a marker by raw name, recognized or not.
func (b *Builder) Marker(name string) *Builder {
	b.rec.Files[types.TypePrefix+name] = []byte{}
	return b
}

// Text sets the "text" file.
func (b *Builder) Text(s string) *Builder { return b.File(types.FileText, []byte(s)) }

// Authors sets the ".authors" file.
func (b *Builder) Authors(s string) *Builder { return b.File(types.FileAuthors, []byte(s)) }

// Timestamp sets the ".timestamp" file.
func (b *Builder) Timestamp(s string) *Builder { return b.File(types.FileTimestamp, []byte(s)) }

// Ref sets the "record" file.
func (b *Builder) Ref(s string) *Builder { return b.File(types.FileRecord, []byte(s)) }

// Parent adds a ".prev/<hash>" link.
func (b *Builder) Parent(hash string) *Builder {
	return b.File(types.PrevPrefix+hash, []byte{})
}

// File sets an arbitrary file.
func (b *Builder) File(name string, data []byte) *Builder {
	b.rec.Files[name] = data
	return b
}

// Build returns the record. The builder must not be reused.
func (b *Builder) Build() types.Record {
	return b.rec
}

// Invalid is a byte sequence that is not valid UTF-8.
var Invalid = []byte{0xff, 0xfe, 0xfd}

// Comment builds a plain Commented record.
func Comment(hash, text, authors, timestamp string) types.Record {
	return Record(hash).Type(types.TypeCommented).Text(text).Authors(authors).Timestamp(timestamp).Build()
}

// Summary builds a SummaryChanged record.
func Summary(hash, text, authors, timestamp string) types.Record {
	return Record(hash).Type(types.TypeSummaryChanged).Text(text).Authors(authors).Timestamp(timestamp).Build()
}

// Details builds a DetailsChanged record.
func Details(hash, text, authors, timestamp string) types.Record {
	return Record(hash).Type(types.TypeDetailsChanged).Text(text).Authors(authors).Timestamp(timestamp).Build()
}

// Status builds a Closed or Reopened record.
func Status(hash string, t types.Type, timestamp string) types.Record {
	return Record(hash).Type(t).Timestamp(timestamp).Build()
}

// History is a varied issue history touching every reducer, used by
// resumability and parallelism tests.
func History() []types.Record {
	return []types.Record{
		Summary("h01", "  Widget breaks  ", "ann", "2024-01-01T00:00:00Z"),
		Details("h02", "steps to reproduce\n", "ann", "2024-01-01T00:00:01Z"),
		Comment("h03", "  me too ", "bob", "2024-01-02T00:00:00Z"),
		Record("h04").Type(types.TypeDetailsChanged, types.TypeMergeRequested).
			Text("patch attached").Authors("cat").Timestamp("2024-01-03T00:00:00Z").Build(),
		Record("h05").Type(types.TypeCommented, types.TypeMergeRequested).
			Text("please review").Authors("cat").Timestamp("2024-01-03T00:00:01Z").Build(),
		Status("h06", types.TypeClosed, "2024-01-04T00:00:00Z"),
		Record("h07").Type(types.TypeCommented).Text("bad").File(types.FileAuthors, Invalid).Build(),
		Record("h08").Type(types.TypeCommented, types.TypeMergeRequestVerificationSucceeded).
			Text("ci ok").Authors("ci").Timestamp("2024-01-05T00:00:00Z").Build(),
		Status("h09", types.TypeReopened, "2024-01-06T00:00:00Z"),
		Record("h10").Type(types.TypeMerged).Authors("dan").Timestamp("2024-01-07T00:00:00Z").Build(),
		Record("h11").Type(types.TypeSummaryChanged).Text("no attribution").Build(),
		Record("h12").Type(types.TypeMerged).Ref("h05").Timestamp("2024-01-08T00:00:00Z").Build(),
		Status("h13", types.TypeClosed, "2024-01-09T00:00:00Z"),
	}
}

// New returns a memory store holding records under issueID.
func New(t testing.TB, issueID string, records ...types.Record) *memory.Store {
	t.Helper()
	store := memory.New()
	store.Create(issueID)
	store.Append(issueID, records...)
	return store
}
