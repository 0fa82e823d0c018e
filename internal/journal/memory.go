package journal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	bySession map[string][]Entry
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bySession: make(map[string][]Entry),
		now:       time.Now,
	}
}

func (s *MemoryStore) Append(_ context.Context, e Entry) (Entry, error) {
	fill(&e, s.now)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySession[e.SessionID] = append(s.bySession[e.SessionID], e)
	return e, nil
}

func (s *MemoryStore) List(_ context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	out := append([]Entry(nil), s.bySession[sessionID]...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Patch(_ context.Context, sessionID, id string, p Patch) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.bySession[sessionID]
	for i := range entries {
		if entries[i].ID == id {
			p.apply(&entries[i])
			return entries[i], nil
		}
	}
	return Entry{}, ErrNotFound
}

func (s *MemoryStore) Delete(_ context.Context, sessionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.bySession[sessionID]
	for i := range entries {
		if entries[i].ID == id {
			s.bySession[sessionID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// DeleteSession drops every entry of the session.
func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bySession, sessionID)
	return nil
}

func fill(e *Entry, now func() time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now().UTC()
	}
	// миллисекунды: так же хранится в БД
	e.CreatedAt = e.CreatedAt.Truncate(time.Millisecond)
	if e.Lens == "" {
		e.Lens = DefaultLens
	}
}
