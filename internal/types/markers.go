package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is a recognized semantic event kind declared by a ".type/<Name>" marker.
type Type uint8

// Recognized type markers
const (
	TypeCommented Type = iota
	TypeDetailsChanged
	TypeSummaryChanged
	TypeMergeRequested
	TypeMerged
	TypeClosed
	TypeReopened
	TypeMergeRequestVerificationSucceeded
	TypeMergeRequestVerificationFailed

	typeCount
)

var typeNames = [typeCount]string{
	TypeCommented:                         "Commented",
	TypeDetailsChanged:                    "DetailsChanged",
	TypeSummaryChanged:                    "SummaryChanged",
	TypeMergeRequested:                    "MergeRequested",
	TypeMerged:                            "Merged",
	TypeClosed:                            "Closed",
	TypeReopened:                          "Reopened",
	TypeMergeRequestVerificationSucceeded: "MergeRequestVerificationSucceeded",
	TypeMergeRequestVerificationFailed:    "MergeRequestVerificationFailed",
}

// AllTypes returns every recognized type in declaration order.
func AllTypes() []Type {
	all := make([]Type, 0, typeCount)
	for t := Type(0); t < typeCount; t++ {
		all = append(all, t)
	}
	return all
}

// ParseType maps a marker name to its Type. Matching is exact (case-sensitive),
// the same way the marker file name is matched.
func ParseType(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return Type(t), true
		}
	}
	return 0, false
}

func (t Type) String() string {
	if t < typeCount {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Path returns the reserved record path of the marker, e.g. ".type/Commented".
func (t Type) Path() string {
	return TypePrefix + t.String()
}

// TypeSet is the set of recognized types carried by one record.
type TypeSet uint16

// NewTypeSet builds a set from the given types.
func NewTypeSet(types ...Type) TypeSet {
	var s TypeSet
	for _, t := range types {
		s = s.With(t)
	}
	return s
}

// Has reports whether t is in the set.
func (s TypeSet) Has(t Type) bool {
	return t < typeCount && s&(1<<t) != 0
}

// HasAny reports whether any of types is in the set.
func (s TypeSet) HasAny(types ...Type) bool {
	for _, t := range types {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// With returns the set extended with t.
func (s TypeSet) With(t Type) TypeSet {
	if t >= typeCount {
		return s
	}
	return s | 1<<t
}

// Empty reports whether no recognized type is present.
func (s TypeSet) Empty() bool {
	return s == 0
}

// Types returns the members in declaration order.
func (s TypeSet) Types() []Type {
	var out []Type
	for _, t := range AllTypes() {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s TypeSet) String() string {
	types := s.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

// MarshalJSON encodes the set as a list of marker names.
func (s TypeSet) MarshalJSON() ([]byte, error) {
	types := s.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return json.Marshal(names)
}
