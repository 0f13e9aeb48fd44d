// Package mocks provides in-memory implementations of the repository
// interfaces for tests.
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

// memStore keeps entities keyed by id, in insertion order. Entities are cloned
// on the way in and out so callers can't mutate stored state.
type memStore[T any] struct {
	mu     sync.RWMutex
	items  map[uuid.UUID]*T
	order  []uuid.UUID
	idOf   func(*T) uuid.UUID
	keyOf  func(*T) string // unique key, empty when the entity has none
	clone  func(*T) *T
}

func newMemStore[T any](idOf func(*T) uuid.UUID, keyOf func(*T) string, clone func(*T) *T) *memStore[T] {
	return &memStore[T]{items: map[uuid.UUID]*T{}, idOf: idOf, keyOf: keyOf, clone: clone}
}

func (s *memStore[T]) duplicate(e *T) bool {
	if s.keyOf == nil {
		return false
	}
	key := strings.ToLower(s.keyOf(e))
	if key == "" {
		return false
	}
	for id, other := range s.items {
		if id != s.idOf(e) && strings.ToLower(s.keyOf(other)) == key {
			return true
		}
	}
	return false
}

func (s *memStore[T]) Create(_ context.Context, e *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.idOf(e)
	if _, ok := s.items[id]; ok || s.duplicate(e) {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, id)
	}
	s.items[id] = s.clone(e)
	s.order = append(s.order, id)
	return nil
}

func (s *memStore[T]) GetByID(_ context.Context, id uuid.UUID) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return s.clone(e), nil
}

func (s *memStore[T]) GetAll(ctx context.Context, page repository.Page) ([]*T, error) {
	return s.filter(ctx, page, func(*T) bool { return true })
}

func (s *memStore[T]) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *memStore[T]) Update(_ context.Context, e *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.idOf(e)
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	if s.duplicate(e) {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, id)
	}
	s.items[id] = s.clone(e)
	return nil
}

func (s *memStore[T]) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memStore[T]) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok, nil
}

func (s *memStore[T]) filter(_ context.Context, page repository.Page, keep func(*T) bool) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page = page.Normalize()
	out := make([]*T, 0)
	skipped := 0
	for _, id := range s.order {
		e := s.items[id]
		if !keep(e) {
			continue
		}
		if skipped < page.Skip {
			skipped++
			continue
		}
		if len(out) == page.Limit {
			break
		}
		out = append(out, s.clone(e))
	}
	return out, nil
}

func (s *memStore[T]) count(keep func(*T) bool) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.items {
		if keep(e) {
			n++
		}
	}
	return n
}

func (s *memStore[T]) findOne(keep func(*T) bool) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if e := s.items[id]; keep(e) {
			return s.clone(e), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore[T]) all() []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.items))
	for _, id := range s.order {
		out = append(out, s.clone(s.items[id]))
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Tx is a Transactor that runs fn inline.
type Tx struct{ Calls int }

func (t *Tx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

var _ repository.Transactor = (*Tx)(nil)
