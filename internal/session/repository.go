package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type memoryRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewMemoryRepository keeps sessions in process memory. Sessions do not
// survive a restart.
func NewMemoryRepository() Repository {
	return &memoryRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.clone(), nil
}

func (r *memoryRepo) Save(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.clone()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
