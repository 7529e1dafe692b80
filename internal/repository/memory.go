package repository

import (
	"context"
	"sync"

	"github.com/mmeshcher/debtdesk/internal/model"
)

// MemoryRepository хранит сессию в памяти процесса.
type MemoryRepository struct {
	mu      sync.Mutex
	session model.Session
}

// NewMemoryRepository создаёт хранилище в памяти с начальной сессией.
func NewMemoryRepository(initial model.Session) *MemoryRepository {
	return &MemoryRepository{session: initial}
}

// Load возвращает сохранённую сессию.
func (r *MemoryRepository) Load(ctx context.Context) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session, nil
}

// Save сохраняет сессию целиком.
func (r *MemoryRepository) Save(ctx context.Context, s model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = s
	return nil
}

// Clear удаляет сессию.
func (r *MemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = model.Session{}
	return nil
}

// Close ничего не делает.
func (r *MemoryRepository) Close() error { return nil }
