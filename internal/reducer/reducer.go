package reducer

import (
	"errors"
	"unicode/utf8"

	"github.com/sitproject/sit/internal/types"
)

// Reducer folds one record into the projection.
//
// Reduce is invoked once per record for every reducer of the pipeline,
// whether or not the reducer's types are present. It returns the updated
// projection. A *DecodeError aborts the whole record and the returned
// projection is the input one. A *MissingCompanionError only makes the part
// of this reducer that needed the file a no-op for the record.
type Reducer interface {
	Name() string
	Reduce(acc *Accumulator, state types.Projection, rec Tagged) (types.Projection, error)
}

// Func is the signature of a reducer body.
type Func func(acc *Accumulator, state types.Projection, rec Tagged) (types.Projection, error)

type funcReducer struct {
	name string
	fn   Func
}

// New wraps fn as a named Reducer.
func New(name string, fn Func) Reducer {
	return funcReducer{name: name, fn: fn}
}

func (r funcReducer) Name() string { return r.name }

func (r funcReducer) Reduce(acc *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
	return r.fn(acc, state, rec)
}

type chained struct {
	first, second Reducer
}

// Chain composes two reducers: second sees the projection first returned.
// A missing companion in first does not stop second; a decode error does.
func Chain(first, second Reducer) Reducer {
	return chained{first: first, second: second}
}

func (c chained) Name() string {
	return c.first.Name() + "+" + c.second.Name()
}

func (c chained) Reduce(acc *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
	next, err := c.first.Reduce(acc, state, rec)
	if IsDecodeError(err) {
		return state, err
	}
	out, err2 := c.second.Reduce(acc, next, rec)
	if IsDecodeError(err2) {
		return state, err2
	}
	return out, errors.Join(err, err2)
}

// companions decodes the files a reducer needs to handle marker. Invalid
// UTF-8 in any present file wins over an absent one so that a malformed
// record is always rejected as a whole.
func companions(reducer string, marker types.Type, rec Tagged, paths ...string) ([]string, error) {
	out := make([]string, len(paths))
	missing := ""
	for i, path := range paths {
		data, ok := rec.File(path)
		if !ok {
			if missing == "" {
				missing = path
			}
			continue
		}
		if !utf8.Valid(data) {
			return nil, &DecodeError{Reducer: reducer, Hash: rec.Hash, Path: path}
		}
		out[i] = string(data)
	}
	if missing != "" {
		return nil, &MissingCompanionError{Reducer: reducer, Hash: rec.Hash, Type: marker, Path: missing}
	}
	return out, nil
}

// optional decodes path when present; an absent file decodes to "".
func optional(reducer string, rec Tagged, path string) (string, bool, error) {
	data, ok := rec.File(path)
	if !ok {
		return "", false, nil
	}
	if !utf8.Valid(data) {
		return "", true, &DecodeError{Reducer: reducer, Hash: rec.Hash, Path: path}
	}
	return string(data), true, nil
}
