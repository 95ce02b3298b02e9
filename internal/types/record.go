// Package types defines core data structures for the sit record-folding engine.
package types

import (
	"sort"
	"strings"
)

// Reserved record file paths
const (
	// TypePrefix is the directory of zero-byte type markers: ".type/<Name>"
	TypePrefix = ".type/"
	// PrevPrefix is the directory of parent links written by the record store: ".prev/<hash>"
	PrevPrefix = ".prev/"

	FileAuthors   = ".authors"
	FileTimestamp = ".timestamp"
	FileText      = "text"
	FileRecord    = "record"
)

// Record is an immutable, content-addressed bundle of named byte payloads.
// It represents one atomic edit event of an issue. The fold engine never
// mutates a Record.
type Record struct {
	Hash  string            `json:"hash"`
	Files map[string][]byte `json:"files"`
}

// File returns the payload stored under name and whether it is present.
func (r Record) File(name string) ([]byte, bool) {
	data, ok := r.Files[name]
	return data, ok
}

// Has reports whether the record contains a file named name.
func (r Record) Has(name string) bool {
	_, ok := r.Files[name]
	return ok
}

// Names returns the record's file names in lexicographic order.
func (r Record) Names() []string {
	names := make([]string, 0, len(r.Files))
	for name := range r.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarkerNames returns the names of every ".type/<Name>" marker present,
// recognized or not, in lexicographic order.
func (r Record) MarkerNames() []string {
	var markers []string
	for _, name := range r.Names() {
		if marker, ok := strings.CutPrefix(name, TypePrefix); ok && marker != "" && !strings.Contains(marker, "/") {
			markers = append(markers, marker)
		}
	}
	return markers
}

// Parents returns the hashes this record links to through ".prev/<hash>" files.
func (r Record) Parents() []string {
	var parents []string
	for _, name := range r.Names() {
		if hash, ok := strings.CutPrefix(name, PrevPrefix); ok && hash != "" {
			parents = append(parents, hash)
		}
	}
	return parents
}
