package reducer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sitproject/sit/internal/types"
)

// Pipeline is an ordered list of reducers. Order is part of the fold's
// semantics: Commented reads merge_request as left by DetailsChanged on the
// same record, and State must see every record to re-stamp state.
type Pipeline struct {
	reducers []Reducer
}

// NewPipeline returns a pipeline running reducers in the given order.
func NewPipeline(reducers ...Reducer) *Pipeline {
	return &Pipeline{reducers: slices.Clone(reducers)}
}

// DefaultPipeline returns the standard reducers in their fixed order.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		SummaryChanged(),
		DetailsChanged(),
		Commented(),
		MergeRequested(),
		Merged(),
		State(),
		Activity(),
	)
}

// Reducers returns the reducers in order.
func (p *Pipeline) Reducers() []Reducer {
	return slices.Clone(p.reducers)
}

// Names returns the reducer names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.reducers))
	for i, r := range p.reducers {
		names[i] = r.Name()
	}
	return names
}

// Len returns the number of reducers.
func (p *Pipeline) Len() int {
	return len(p.reducers)
}

// Without returns a copy of the pipeline with the named reducers removed.
// The order of the remaining reducers is unchanged.
func (p *Pipeline) Without(names ...string) (*Pipeline, error) {
	drop := make(map[string]bool, len(names))
	known := p.Names()
	var unknown []string
	for _, name := range names {
		if !slices.Contains(known, name) {
			unknown = append(unknown, name)
			continue
		}
		drop[name] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown reducer(s) %s (valid: %s)",
			strings.Join(unknown, ", "), strings.Join(known, ", "))
	}
	kept := make([]Reducer, 0, len(p.reducers))
	for _, r := range p.reducers {
		if !drop[r.Name()] {
			kept = append(kept, r)
		}
	}
	return &Pipeline{reducers: kept}, nil
}

// Apply runs every reducer over one record. Errors from reducers that do not
// abort the record are joined and returned with the resulting projection;
// on a DecodeError the input projection is returned together with it.
// acc may have been modified in either case; callers that need rollback keep
// their own copy.
func (p *Pipeline) Apply(acc *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
	in := state
	var errs []error
	for _, r := range p.reducers {
		next, err := r.Reduce(acc, state, rec)
		if err != nil {
			if IsDecodeError(err) {
				return in, err
			}
			errs = append(errs, err)
		}
		state = next
	}
	return state, errors.Join(errs...)
}
