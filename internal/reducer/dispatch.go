package reducer

import "github.com/sitproject/sit/internal/types"

var markerPaths = func() []string {
	all := types.AllTypes()
	paths := make([]string, len(all))
	for i, t := range all {
		paths[i] = t.Path()
	}
	return paths
}()

// TypesOf returns the recognized type markers present on rec. A type T is
// present iff the record has a file named ".type/T"; no other content is
// consulted and companion files are not validated.
func TypesOf(rec types.Record) types.TypeSet {
	var set types.TypeSet
	for i, path := range markerPaths {
		if rec.Has(path) {
			set = set.With(types.Type(i))
		}
	}
	return set
}

// Tagged is a record paired with the type markers it carries, computed once
// per record by Tag.
type Tagged struct {
	types.Record
	Types types.TypeSet
}

// Tag runs the type dispatcher over rec.
func Tag(rec types.Record) Tagged {
	return Tagged{Record: rec, Types: TypesOf(rec)}
}
