package reducer

import (
	"slices"

	"github.com/sitproject/sit/internal/types"
)

// Accumulator is the private, fold-run-scoped state reducers carry from one
// record to the next. It is owned by a single fold run and handed to each
// reducer by reference; it is persisted next to the projection only to resume
// the fold later.
type Accumulator struct {
	Comments      []types.Comment `json:"comments"`
	Merges        []types.Merge   `json:"merges"`
	MergeRequests []string        `json:"merge_requests"`
	Status        types.State     `json:"status"`
}

// NewAccumulator returns the accumulator of a fresh fold run.
func NewAccumulator() Accumulator {
	return Accumulator{
		Comments:      []types.Comment{},
		Merges:        []types.Merge{},
		MergeRequests: []string{},
		Status:        types.StateOpen,
	}
}

// Clip returns a copy whose lists have no spare capacity, so a run resumed
// from it never appends into storage shared with another run.
func (a Accumulator) Clip() Accumulator {
	a.Comments = slices.Clip(a.Comments)
	a.Merges = slices.Clip(a.Merges)
	a.MergeRequests = slices.Clip(a.MergeRequests)
	return a
}

// Normalize replaces nil lists with empty ones (a decoded snapshot may carry nulls).
func (a Accumulator) Normalize() Accumulator {
	if a.Comments == nil {
		a.Comments = []types.Comment{}
	}
	if a.Merges == nil {
		a.Merges = []types.Merge{}
	}
	if a.MergeRequests == nil {
		a.MergeRequests = []string{}
	}
	if a.Status == "" {
		a.Status = types.StateOpen
	}
	return a
}

// status is the remembered open/closed status; an accumulator that has never
// seen a status change remembers "open".
func (a *Accumulator) status() types.State {
	if a.Status == "" {
		return types.StateOpen
	}
	return a.Status
}
