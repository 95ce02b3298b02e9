package reducer

import "github.com/sitproject/sit/internal/types"

// MergeRequested owns merge_requests.
func MergeRequested() Reducer {
	return New(NameMergeRequested, func(acc *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
		if !rec.Types.Has(types.TypeMergeRequested) {
			return state, nil
		}
		acc.MergeRequests = append(acc.MergeRequests, rec.Hash)
		state.MergeRequests = acc.MergeRequests
		return state, nil
	})
}

// Merged owns merges.
func Merged() Reducer {
	return New(NameMerged, func(acc *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
		if !rec.Types.Has(types.TypeMerged) {
			return state, nil
		}
		ref, err := mergeReference(NameMerged, state, rec)
		if err != nil {
			return state, err
		}
		acc.Merges = append(acc.Merges, types.Merge{Hash: rec.Hash, Record: ref})
		state.Merges = acc.Merges
		return state, nil
	})
}

// mergeReference resolves what a Merged record merged: its "record" file,
// else the current merge_request pointer, else "".
func mergeReference(reducer string, state types.Projection, rec Tagged) (string, error) {
	ref, ok, err := optional(reducer, rec, types.FileRecord)
	if err != nil {
		return "", err
	}
	if ok {
		return ref, nil
	}
	if state.MergeRequest != nil {
		return *state.MergeRequest, nil
	}
	return "", nil
}
