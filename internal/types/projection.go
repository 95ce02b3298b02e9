package types

import (
	"fmt"
	"slices"
)

// State is the open/closed status of an issue
type State string

// State constants
const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// IsValid checks if the state value is one of the two allowed states
func (s State) IsValid() bool {
	switch s {
	case StateOpen, StateClosed:
		return true
	}
	return false
}

// ParseState parses a user-supplied state filter.
func ParseState(s string) (State, error) {
	state := State(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid state %q (valid: open, closed)", s)
	}
	return state, nil
}

// MergeRequestReport is the verification outcome attached to a merge request comment
type MergeRequestReport string

// MergeRequestReport constants
const (
	ReportSuccess MergeRequestReport = "success"
	ReportFailure MergeRequestReport = "failure"
)

// Comment is one entry of an issue's discussion. Merged records are also
// folded into a synthesized comment.
type Comment struct {
	Text               string              `json:"text" yaml:"text"`
	Authors            string              `json:"authors" yaml:"authors"`
	Timestamp          string              `json:"timestamp" yaml:"timestamp"`
	MergeRequest       *string             `json:"merge_request,omitempty" yaml:"merge_request,omitempty"`
	MergeRequestReport *MergeRequestReport `json:"merge_request_report,omitempty" yaml:"merge_request_report,omitempty"`
}

// Merge records that a merge request was merged
type Merge struct {
	Hash   string `json:"hash" yaml:"hash"`
	Record string `json:"record" yaml:"record"`
}

// Projection is the current, human-readable state of one issue derived by
// folding its ordered record history.
type Projection struct {
	ID                   string    `json:"id" yaml:"id"`
	Summary              *string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Details              *string   `json:"details,omitempty" yaml:"details,omitempty"`
	Authors              *string   `json:"authors,omitempty" yaml:"authors,omitempty"`     // first writer of summary/details
	Timestamp            *string   `json:"timestamp,omitempty" yaml:"timestamp,omitempty"` // first writer of summary/details
	LastUpdatedTimestamp *string   `json:"last_updated_timestamp,omitempty" yaml:"last_updated_timestamp,omitempty"`
	State                State     `json:"state" yaml:"state"`
	Comments             []Comment `json:"comments" yaml:"comments"`
	Merges               []Merge   `json:"merges" yaml:"merges"`
	MergeRequests        []string  `json:"merge_requests" yaml:"merge_requests"`
	MergeRequest         *string   `json:"merge_request,omitempty" yaml:"merge_request,omitempty"`
}

// NewProjection returns the empty projection of an issue: every optional
// field unset, state open and empty sequences.
func NewProjection(id string) Projection {
	return Projection{
		ID:            id,
		State:         StateOpen,
		Comments:      []Comment{},
		Merges:        []Merge{},
		MergeRequests: []string{},
	}
}

// Clip returns a copy of p whose sequences have no spare capacity, so that
// appending to the copy never writes into storage shared with p.
func (p Projection) Clip() Projection {
	p.Comments = slices.Clip(p.Comments)
	p.Merges = slices.Clip(p.Merges)
	p.MergeRequests = slices.Clip(p.MergeRequests)
	return p
}

// Normalize replaces nil sequences with empty ones for consistent output
// (a decoded snapshot may carry nulls).
func (p Projection) Normalize() Projection {
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	if p.Merges == nil {
		p.Merges = []Merge{}
	}
	if p.MergeRequests == nil {
		p.MergeRequests = []string{}
	}
	if p.State == "" {
		p.State = StateOpen
	}
	return p
}

// SummaryOr returns the summary or fallback when unset.
func (p Projection) SummaryOr(fallback string) string {
	if p.Summary == nil {
		return fallback
	}
	return *p.Summary
}

// StringPtr returns a pointer to a copy of s
func StringPtr(s string) *string {
	return &s
}

// ReportPtr returns a pointer to a copy of r
func ReportPtr(r MergeRequestReport) *MergeRequestReport {
	return &r
}
