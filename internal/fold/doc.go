// Package fold drives the reducer pipeline over an issue's record stream.
//
// A Driver folds records strictly one at a time: every reducer of the
// pipeline sees a record before the next record is considered. Folding a
// record is a transaction. A record that fails to decode is skipped as a
// whole and leaves both the projection and the accumulator as they were; a
// missing companion file only disables the reducer that needed it. Both are
// reported as Diagnostics, never as a failed run.
//
// Resume continues a fold from a Snapshot. For every history S and split
// point k, Resume(Fold(S[:k]), S[k:]) yields the same projection as Fold(S).
//
// # Ordering
//
// The driver trusts the record stream to be in the total order produced by
// the record source and performs no reordering or causal resolution. A
// stream that violates that order is not detected: it silently yields a
// projection that differs between replicas.
//
// # Cancellation
//
// The context is checked before each record. A cancelled run, like a run
// whose source fails, returns a nil Result; the input snapshot and the
// records are never modified.
package fold
