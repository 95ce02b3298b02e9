// Package reducer holds the fold units that turn an issue's records into its
// projection.
//
// A Reducer owns a fixed set of projection fields and reacts to records that
// carry its type markers. Every reducer sees every record, in pipeline order,
// and is a no-op when its markers are absent. Reducers that touch disjoint
// fields commute; reducers that read a field another one writes do not, which
// is why DefaultPipeline fixes the order explicitly instead of discovering it.
//
// Reducers never mutate the incoming Projection value in place: they return
// the updated value. State that outlives one record (the running comment,
// merge and merge-request lists, and the remembered open/closed status) lives
// in the Accumulator, which the fold driver owns for the duration of one run.
package reducer
