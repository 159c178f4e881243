package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresDoctorRepository implements DoctorRepository using PostgreSQL.
type PostgresDoctorRepository struct {
	db *sql.DB
}

// NewPostgresDoctorRepository creates a new Postgres-backed doctor repository.
func NewPostgresDoctorRepository(db *sql.DB) *PostgresDoctorRepository {
	return &PostgresDoctorRepository{db: db}
}

const doctorColumns = `
	id, name, category, city, experience_years, rating, rating_count,
	reviews_count, consultation_fee, total_patients_served,
	response_time_minutes, response_time_seconds, verified_status,
	availability_status, is_available, success_rate, latitude, longitude,
	ai_score
`

func scanDoctor(row interface{ Scan(...any) error }) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.Name, &d.Category, &d.City, &d.ExperienceYears, &d.Rating,
		&d.RatingCount, &d.ReviewsCount, &d.ConsultationFee,
		&d.TotalPatientsServed, &d.ResponseTimeMinutes, &d.ResponseTimeSeconds,
		&d.VerifiedStatus, &d.AvailabilityStatus, &d.IsAvailable,
		&d.SuccessRate, &d.Location.Lat, &d.Location.Lng, &d.AIScore,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns doctors, optionally filtered by exact city match.
func (r *PostgresDoctorRepository) List(ctx context.Context, city string) ([]Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors`
	args := []any{}
	if city != "" {
		query += ` WHERE city = $1`
		args = append(args, city)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		doctors = append(doctors, *d)
	}
	return doctors, rows.Err()
}

// GetByID retrieves a doctor by ID.
func (r *PostgresDoctorRepository) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
	d, err := scanDoctor(row)
	if err == sql.ErrNoRows {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return d, nil
}

// Insert stores a new doctor.
func (r *PostgresDoctorRepository) Insert(ctx context.Context, d *Doctor) error {
	query := `
		INSERT INTO doctors (
			name, category, city, experience_years, rating, rating_count,
			reviews_count, consultation_fee, total_patients_served,
			response_time_minutes, response_time_seconds, verified_status,
			availability_status, is_available, success_rate, latitude,
			longitude, ai_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		d.Name, d.Category, d.City, d.ExperienceYears, d.Rating, d.RatingCount,
		d.ReviewsCount, d.ConsultationFee, d.TotalPatientsServed,
		d.ResponseTimeMinutes, d.ResponseTimeSeconds, d.VerifiedStatus,
		d.AvailabilityStatus, d.IsAvailable, d.SuccessRate,
		d.Location.Lat, d.Location.Lng, d.AIScore,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("failed to insert doctor: %w", err)
	}
	return nil
}

// PostgresAmbulanceRepository implements AmbulanceRepository using PostgreSQL.
type PostgresAmbulanceRepository struct {
	db *sql.DB
}

// NewPostgresAmbulanceRepository creates a new Postgres-backed ambulance repository.
func NewPostgresAmbulanceRepository(db *sql.DB) *PostgresAmbulanceRepository {
	return &PostgresAmbulanceRepository{db: db}
}

const ambulanceColumns = `
	id, provider_name, city, vehicle_type, response_time_minutes,
	response_time_seconds, cost_per_km, base_price, availability_status,
	rating, verified_status, driver_score, has_icu, has_oxygen,
	has_ventilator, is_available, latitude, longitude, ai_score
`

func scanAmbulance(row interface{ Scan(...any) error }) (*Ambulance, error) {
	var a Ambulance
	err := row.Scan(
		&a.ID, &a.ProviderName, &a.City, &a.VehicleType,
		&a.ResponseTimeMinutes, &a.ResponseTimeSeconds, &a.CostPerKm,
		&a.BasePrice, &a.AvailabilityStatus, &a.Rating, &a.VerifiedStatus,
		&a.DriverScore, &a.HasICU, &a.HasOxygen, &a.HasVentilator,
		&a.IsAvailable, &a.Location.Lat, &a.Location.Lng, &a.AIScore,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns ambulances, optionally filtered by exact city match.
func (r *PostgresAmbulanceRepository) List(ctx context.Context, city string) ([]Ambulance, error) {
	query := `SELECT ` + ambulanceColumns + ` FROM ambulances`
	args := []any{}
	if city != "" {
		query += ` WHERE city = $1`
		args = append(args, city)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ambulances: %w", err)
	}
	defer rows.Close()

	var ambulances []Ambulance
	for rows.Next() {
		a, err := scanAmbulance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ambulance: %w", err)
		}
		ambulances = append(ambulances, *a)
	}
	return ambulances, rows.Err()
}

// GetByID retrieves an ambulance by ID.
func (r *PostgresAmbulanceRepository) GetByID(ctx context.Context, id int64) (*Ambulance, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ambulanceColumns+` FROM ambulances WHERE id = $1`, id)
	a, err := scanAmbulance(row)
	if err == sql.ErrNoRows {
		return nil, ErrAmbulanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ambulance: %w", err)
	}
	return a, nil
}

// Insert stores a new ambulance.
func (r *PostgresAmbulanceRepository) Insert(ctx context.Context, a *Ambulance) error {
	query := `
		INSERT INTO ambulances (
			provider_name, city, vehicle_type, response_time_minutes,
			response_time_seconds, cost_per_km, base_price,
			availability_status, rating, verified_status, driver_score,
			has_icu, has_oxygen, has_ventilator, is_available, latitude,
			longitude, ai_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		a.ProviderName, a.City, a.VehicleType, a.ResponseTimeMinutes,
		a.ResponseTimeSeconds, a.CostPerKm, a.BasePrice, a.AvailabilityStatus,
		a.Rating, a.VerifiedStatus, a.DriverScore, a.HasICU, a.HasOxygen,
		a.HasVentilator, a.IsAvailable, a.Location.Lat, a.Location.Lng,
		a.AIScore,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to insert ambulance: %w", err)
	}
	return nil
}

// PostgresHospitalRepository implements HospitalRepository using PostgreSQL.
type PostgresHospitalRepository struct {
	db *sql.DB
}

// NewPostgresHospitalRepository creates a new Postgres-backed hospital repository.
func NewPostgresHospitalRepository(db *sql.DB) *PostgresHospitalRepository {
	return &PostgresHospitalRepository{db: db}
}

const hospitalColumns = `
	id, name, city, icu_beds_available, emergency_wait_minutes, success_rate,
	avg_cost_index, is_available, specializations, latitude, longitude,
	ai_score
`

func scanHospital(row interface{ Scan(...any) error }) (*Hospital, error) {
	var h Hospital
	err := row.Scan(
		&h.ID, &h.Name, &h.City, &h.ICUBedsAvailable, &h.EmergencyWaitMinutes,
		&h.SuccessRate, &h.AvgCostIndex, &h.IsAvailable,
		pq.Array(&h.Specializations), &h.Location.Lat, &h.Location.Lng,
		&h.AIScore,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// List returns hospitals, optionally filtered by exact city match.
func (r *PostgresHospitalRepository) List(ctx context.Context, city string) ([]Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals`
	args := []any{}
	if city != "" {
		query += ` WHERE city = $1`
		args = append(args, city)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	defer rows.Close()

	var hospitals []Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hospital: %w", err)
		}
		hospitals = append(hospitals, *h)
	}
	return hospitals, rows.Err()
}

// GetByID retrieves a hospital by ID.
func (r *PostgresHospitalRepository) GetByID(ctx context.Context, id int64) (*Hospital, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals WHERE id = $1`, id)
	h, err := scanHospital(row)
	if err == sql.ErrNoRows {
		return nil, ErrHospitalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return h, nil
}

// Insert stores a new hospital.
func (r *PostgresHospitalRepository) Insert(ctx context.Context, h *Hospital) error {
	query := `
		INSERT INTO hospitals (
			name, city, icu_beds_available, emergency_wait_minutes,
			success_rate, avg_cost_index, is_available, specializations,
			latitude, longitude, ai_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		h.Name, h.City, h.ICUBedsAvailable, h.EmergencyWaitMinutes,
		h.SuccessRate, h.AvgCostIndex, h.IsAvailable,
		pq.Array(h.Specializations), h.Location.Lat, h.Location.Lng, h.AIScore,
	).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("failed to insert hospital: %w", err)
	}
	return nil
}
