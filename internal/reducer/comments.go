package reducer

import (
	"strings"

	"github.com/sitproject/sit/internal/types"
)

// Commented owns comments. Besides Commented records it folds every Merged
// record into a synthesized "Merged <reference>" comment.
func Commented() Reducer {
	return New(NameCommented, reduceComments)
}

func reduceComments(acc *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
	if !rec.Types.HasAny(types.TypeMerged, types.TypeCommented) {
		return state, nil
	}
	var added []types.Comment

	if rec.Types.Has(types.TypeMerged) {
		ref, err := mergeReference(NameCommented, state, rec)
		if err != nil {
			return state, err
		}
		authors, timestamp, err := attribution(rec)
		if err != nil {
			return state, err
		}
		added = append(added, types.Comment{
			Text:      strings.TrimSpace("Merged " + ref),
			Authors:   authors,
			Timestamp: timestamp,
		})
	}

	var missing error
	if rec.Types.Has(types.TypeCommented) {
		comment, err := decodeComment(rec)
		switch {
		case IsDecodeError(err):
			return state, err
		case err != nil:
			missing = err
		default:
			added = append(added, comment)
		}
	}

	if len(added) > 0 {
		acc.Comments = append(acc.Comments, added...)
		state.Comments = acc.Comments
	}
	return state, missing
}

func decodeComment(rec Tagged) (types.Comment, error) {
	files, err := companions(NameCommented, types.TypeCommented, rec, types.FileText)
	authors, timestamp, attrErr := attribution(rec)
	if attrErr != nil {
		return types.Comment{}, attrErr
	}
	if err != nil {
		return types.Comment{}, err
	}
	comment := types.Comment{
		Text:      files[0],
		Authors:   authors,
		Timestamp: timestamp,
	}
	if rec.Types.Has(types.TypeMergeRequested) {
		comment.MergeRequest = types.StringPtr(rec.Hash)
	}
	switch {
	case rec.Types.Has(types.TypeMergeRequestVerificationSucceeded):
		comment.MergeRequestReport = types.ReportPtr(types.ReportSuccess)
	case rec.Types.Has(types.TypeMergeRequestVerificationFailed):
		comment.MergeRequestReport = types.ReportPtr(types.ReportFailure)
	}
	return comment, nil
}

// attribution decodes the optional author list and timestamp of a comment.
func attribution(rec Tagged) (string, string, error) {
	authors, _, err := optional(NameCommented, rec, types.FileAuthors)
	if err != nil {
		return "", "", err
	}
	timestamp, _, err := optional(NameCommented, rec, types.FileTimestamp)
	if err != nil {
		return "", "", err
	}
	return authors, timestamp, nil
}
