package sessions

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process local Store. One lock guards both indexes so every
// operation is atomic.
type MemoryStore struct {
	byPrincipal map[string]Record
	byToken     map[string]string // token to principal id
	lock        sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byPrincipal: make(map[string]Record),
		byToken:     make(map[string]string),
	}
}

func (s *MemoryStore) Store(_ context.Context, record Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.put(record)
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, oldToken string, record Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	current, ok := s.byPrincipal[record.PrincipalID]
	if !ok || current.Token != oldToken {
		return apperrors.ErrSessionNotFound
	}
	s.put(record)
	return nil
}

func (s *MemoryStore) put(record Record) {
	if prior, ok := s.byPrincipal[record.PrincipalID]; ok {
		delete(s.byToken, prior.Token)
	}
	s.byPrincipal[record.PrincipalID] = record
	s.byToken[record.Token] = record.PrincipalID
}

func (s *MemoryStore) Lookup(_ context.Context, token string) (*Record, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	principalID, ok := s.byToken[token]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	record := s.byPrincipal[principalID]
	return &record, nil
}

func (s *MemoryStore) DeleteByToken(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if principalID, ok := s.byToken[token]; ok {
		delete(s.byToken, token)
		delete(s.byPrincipal, principalID)
	}
	return nil
}

func (s *MemoryStore) DeleteAllForPrincipal(_ context.Context, principalID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if record, ok := s.byPrincipal[principalID]; ok {
		delete(s.byToken, record.Token)
		delete(s.byPrincipal, principalID)
	}
	return nil
}

func (s *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var purged int64
	for principalID, record := range s.byPrincipal {
		if record.Expired(now) {
			delete(s.byToken, record.Token)
			delete(s.byPrincipal, principalID)
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.byPrincipal)
}
