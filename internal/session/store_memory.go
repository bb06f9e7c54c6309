package session

import (
	"context"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]*Session
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]*Session)}
}

func (s *MemStore) Get(ctx context.Context, id string) (*Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.m[id]
	if !ok {
		return nil, false, nil
	}
	return sess.clone(), true, nil
}

func (s *MemStore) Put(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID] = sess.clone()
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }
