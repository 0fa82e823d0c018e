package prefs

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu        sync.RWMutex
	bySession map[string]Prefs
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bySession: make(map[string]Prefs), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (Prefs, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.bySession[sessionID]
	if !ok {
		return Prefs{}, ErrNotFound
	}
	return clone(p), nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, p Prefs) (Prefs, error) {
	p = clone(p)
	p.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySession[sessionID] = p
	return clone(p), nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bySession, sessionID)
	return nil
}

func clone(p Prefs) Prefs {
	if p.Trial != nil {
		t := *p.Trial
		p.Trial = &t
	}
	return p
}
