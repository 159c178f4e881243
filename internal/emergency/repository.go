package emergency

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an emergency does not exist.
var ErrNotFound = errors.New("emergency not found")

// Repository defines the interface for emergency data operations.
type Repository interface {
	// Insert stores a new emergency, assigning an ID if unset.
	Insert(ctx context.Context, e *Emergency) error

	// GetByID retrieves an emergency by its ID.
	// Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Emergency, error)

	// UpdateStatus sets the status of an existing emergency.
	UpdateStatus(ctx context.Context, id, status string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu    sync.RWMutex
	cases map[string]*Emergency
}

// NewInMemoryRepository creates a new in-memory emergency repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		cases: make(map[string]*Emergency),
	}
}

// Insert stores a new emergency, assigning an ID if unset.
func (r *InMemoryRepository) Insert(_ context.Context, e *Emergency) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Status == "" {
		e.Status = StatusOpen
	}

	// Deep copy to prevent external mutation
	copied := *e
	r.cases[e.ID] = &copied
	return nil
}

// GetByID retrieves an emergency by its ID.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Emergency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *e
	return &copied, nil
}

// UpdateStatus sets the status of an existing emergency.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.cases[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	return nil
}
