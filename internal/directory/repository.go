package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Not-found errors per provider kind.
var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrAmbulanceNotFound = errors.New("ambulance not found")
	ErrHospitalNotFound  = errors.New("hospital not found")
)

// DoctorRepository defines data operations for doctors.
type DoctorRepository interface {
	// List returns doctors, optionally filtered by exact city match.
	// An empty city returns all doctors in insertion order.
	List(ctx context.Context, city string) ([]Doctor, error)

	// GetByID retrieves a doctor. Returns ErrDoctorNotFound if missing.
	GetByID(ctx context.Context, id int64) (*Doctor, error)

	// Insert stores a new doctor, assigning an ID if unset.
	Insert(ctx context.Context, d *Doctor) error
}

// AmbulanceRepository defines data operations for ambulances.
type AmbulanceRepository interface {
	List(ctx context.Context, city string) ([]Ambulance, error)
	GetByID(ctx context.Context, id int64) (*Ambulance, error)
	Insert(ctx context.Context, a *Ambulance) error
}

// HospitalRepository defines data operations for hospitals.
type HospitalRepository interface {
	List(ctx context.Context, city string) ([]Hospital, error)
	GetByID(ctx context.Context, id int64) (*Hospital, error)
	Insert(ctx context.Context, h *Hospital) error
}

// InMemoryDoctorRepository is an in-memory implementation of
// DoctorRepository. Used for testing and development. Thread-safe.
type InMemoryDoctorRepository struct {
	mu      sync.RWMutex
	nextID  int64
	doctors []Doctor
}

// NewInMemoryDoctorRepository creates a new in-memory doctor repository.
func NewInMemoryDoctorRepository() *InMemoryDoctorRepository {
	return &InMemoryDoctorRepository{nextID: 1}
}

// List returns doctors, optionally filtered by exact city match.
func (r *InMemoryDoctorRepository) List(_ context.Context, city string) ([]Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		if city != "" && d.City != city {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

// GetByID retrieves a doctor by ID.
func (r *InMemoryDoctorRepository) GetByID(_ context.Context, id int64) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.doctors {
		if d.ID == id {
			copied := d
			return &copied, nil
		}
	}
	return nil, ErrDoctorNotFound
}

// Insert stores a new doctor, assigning an ID if unset.
func (r *InMemoryDoctorRepository) Insert(_ context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == 0 {
		d.ID = r.nextID
		r.nextID++
	} else if d.ID >= r.nextID {
		r.nextID = d.ID + 1
	}
	r.doctors = append(r.doctors, *d)
	return nil
}

// InMemoryAmbulanceRepository is an in-memory implementation of
// AmbulanceRepository. Thread-safe.
type InMemoryAmbulanceRepository struct {
	mu         sync.RWMutex
	nextID     int64
	ambulances []Ambulance
}

// NewInMemoryAmbulanceRepository creates a new in-memory ambulance repository.
func NewInMemoryAmbulanceRepository() *InMemoryAmbulanceRepository {
	return &InMemoryAmbulanceRepository{nextID: 1}
}

// List returns ambulances, optionally filtered by exact city match.
func (r *InMemoryAmbulanceRepository) List(_ context.Context, city string) ([]Ambulance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Ambulance, 0, len(r.ambulances))
	for _, a := range r.ambulances {
		if city != "" && a.City != city {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

// GetByID retrieves an ambulance by ID.
func (r *InMemoryAmbulanceRepository) GetByID(_ context.Context, id int64) (*Ambulance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.ambulances {
		if a.ID == id {
			copied := a
			return &copied, nil
		}
	}
	return nil, ErrAmbulanceNotFound
}

// Insert stores a new ambulance, assigning an ID if unset.
func (r *InMemoryAmbulanceRepository) Insert(_ context.Context, a *Ambulance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == 0 {
		a.ID = r.nextID
		r.nextID++
	} else if a.ID >= r.nextID {
		r.nextID = a.ID + 1
	}
	r.ambulances = append(r.ambulances, *a)
	return nil
}

// InMemoryHospitalRepository is an in-memory implementation of
// HospitalRepository. Thread-safe.
type InMemoryHospitalRepository struct {
	mu        sync.RWMutex
	nextID    int64
	hospitals []Hospital
}

// NewInMemoryHospitalRepository creates a new in-memory hospital repository.
func NewInMemoryHospitalRepository() *InMemoryHospitalRepository {
	return &InMemoryHospitalRepository{nextID: 1}
}

// List returns hospitals, optionally filtered by exact city match.
func (r *InMemoryHospitalRepository) List(_ context.Context, city string) ([]Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Hospital, 0, len(r.hospitals))
	for _, h := range r.hospitals {
		if city != "" && h.City != city {
			continue
		}
		copied := h
		copied.Specializations = append([]string(nil), h.Specializations...)
		result = append(result, copied)
	}
	return result, nil
}

// GetByID retrieves a hospital by ID.
func (r *InMemoryHospitalRepository) GetByID(_ context.Context, id int64) (*Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.hospitals {
		if h.ID == id {
			copied := h
			copied.Specializations = append([]string(nil), h.Specializations...)
			return &copied, nil
		}
	}
	return nil, ErrHospitalNotFound
}

// Insert stores a new hospital, assigning an ID if unset.
func (r *InMemoryHospitalRepository) Insert(_ context.Context, h *Hospital) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.ID == 0 {
		h.ID = r.nextID
		r.nextID++
	} else if h.ID >= r.nextID {
		r.nextID = h.ID + 1
	}
	copied := *h
	copied.Specializations = append([]string(nil), h.Specializations...)
	r.hospitals = append(r.hospitals, copied)
	return nil
}

// HasSpecialization reports whether the hospital lists the given
// specialization tag, compared case-insensitively.
func (h *Hospital) HasSpecialization(tag string) bool {
	for _, s := range h.Specializations {
		if strings.EqualFold(s, tag) {
			return true
		}
	}
	return false
}
