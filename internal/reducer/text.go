package reducer

import (
	"strings"

	"github.com/sitproject/sit/internal/types"
)

// Reducer names
const (
	NameSummaryChanged = "SummaryChanged"
	NameDetailsChanged = "DetailsChanged"
	NameCommented      = "Commented"
	NameMergeRequested = "MergeRequested"
	NameMerged         = "Merged"
	NameState          = "State"
	NameActivity       = "Activity"
)

// SummaryChanged owns summary (last writer wins) and seeds authors/timestamp
// (first writer wins).
func SummaryChanged() Reducer {
	return New(NameSummaryChanged, reduceSummary)
}

func reduceSummary(_ *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
	if !rec.Types.Has(types.TypeSummaryChanged) {
		return state, nil
	}
	files, err := companions(NameSummaryChanged, types.TypeSummaryChanged, rec,
		types.FileText, types.FileAuthors, types.FileTimestamp)
	if err != nil {
		return state, err
	}
	state.Summary = types.StringPtr(strings.TrimSpace(files[0]))
	return firstWriter(state, files[1], files[2]), nil
}

// DetailsChanged owns details and merge_request, and seeds authors/timestamp.
// A details change that is also a merge request points merge_request at its
// own record; any other details change clears it.
func DetailsChanged() Reducer {
	return New(NameDetailsChanged, reduceDetails)
}

func reduceDetails(_ *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
	if !rec.Types.Has(types.TypeDetailsChanged) {
		return state, nil
	}
	files, err := companions(NameDetailsChanged, types.TypeDetailsChanged, rec,
		types.FileText, types.FileAuthors, types.FileTimestamp)
	if err != nil {
		return state, err
	}
	state.Details = types.StringPtr(strings.TrimSpace(files[0]))
	if rec.Types.Has(types.TypeMergeRequested) {
		state.MergeRequest = types.StringPtr(rec.Hash)
	} else {
		state.MergeRequest = nil
	}
	return firstWriter(state, files[1], files[2]), nil
}

func firstWriter(state types.Projection, authors, timestamp string) types.Projection {
	if state.Authors == nil {
		state.Authors = types.StringPtr(authors)
	}
	if state.Timestamp == nil {
		state.Timestamp = types.StringPtr(timestamp)
	}
	return state
}
