// Package memory implements an in-memory record source.
package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sort"
	"sync"

	"github.com/sitproject/sit/internal/storage"
	"github.com/sitproject/sit/internal/types"
)

// Store holds ordered record histories per issue. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	issues map[string][]types.Record
}

// New returns an empty store.
func New() *Store {
	return &Store{issues: make(map[string][]types.Record)}
}

// Create registers an issue with an empty history. It is a no-op if the issue exists.
func (s *Store) Create(issueID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[issueID]; !ok {
		s.issues[issueID] = []types.Record{}
	}
}

// Append adds records to the end of an issue's history, creating the issue if needed.
func (s *Store) Append(issueID string, records ...types.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues[issueID] = append(s.issues[issueID], records...)
}

// Issues returns the known issue ids in lexicographic order.
func (s *Store) Issues(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.issues))
	for id := range s.issues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Records yields the issue's history as of the call. Records appended while
// the sequence is consumed are not observed.
func (s *Store) Records(ctx context.Context, issueID string) iter.Seq2[types.Record, error] {
	s.mu.RLock()
	history, ok := s.issues[issueID]
	history = slices.Clip(history)
	s.mu.RUnlock()
	if !ok {
		return storage.Fail(fmt.Errorf("issue %s: %w", issueID, storage.ErrNotFound))
	}
	return func(yield func(types.Record, error) bool) {
		for _, rec := range history {
			if err := ctx.Err(); err != nil {
				yield(types.Record{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

var _ storage.Source = (*Store)(nil)
