package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/models"
)

// ProfileRepository handles database operations for the profiles table
type ProfileRepository struct {
	db DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile
func (r *ProfileRepository) Create(profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, phone_number, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		profile.ID, profile.Email, profile.PhoneNumber,
		profile.PasswordHash, profile.FullName, profile.Role,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by user ID
func (r *ProfileRepository) GetByID(userID uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, email, phone_number, password_hash, full_name, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var profile models.Profile
	if err := r.db.Get(&profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByEmail retrieves a profile by email (case-insensitive)
func (r *ProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	query := `
		SELECT id, email, phone_number, password_hash, full_name, role, created_at, updated_at
		FROM profiles
		WHERE LOWER(email) = LOWER($1)
	`

	var profile models.Profile
	if err := r.db.Get(&profile, query, email); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByPhone retrieves a profile by phone number
func (r *ProfileRepository) GetByPhone(phone string) (*models.Profile, error) {
	query := `
		SELECT id, email, phone_number, password_hash, full_name, role, created_at, updated_at
		FROM profiles
		WHERE phone_number = $1
	`

	var profile models.Profile
	if err := r.db.Get(&profile, query, phone); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetRole retrieves just the role column for a user
func (r *ProfileRepository) GetRole(userID uuid.UUID) (string, error) {
	var role string
	if err := r.db.Get(&role, `SELECT role FROM profiles WHERE id = $1`, userID); err != nil {
		return "", err
	}
	return role, nil
}

// GetAll retrieves every profile, newest first
func (r *ProfileRepository) GetAll() ([]models.Profile, error) {
	query := `
		SELECT id, email, phone_number, password_hash, full_name, role, created_at, updated_at
		FROM profiles
		ORDER BY created_at DESC
	`

	profiles := []models.Profile{}
	if err := r.db.Select(&profiles, query); err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	return profiles, nil
}

// Update applies the non-nil fields of the request plus the role when set,
// building the SET clause dynamically the same way the booking form sends
// partial updates.
func (r *ProfileRepository) Update(userID uuid.UUID, req *models.UpdateUserRequest) (*models.Profile, error) {
	sets := []string{}
	args := []interface{}{userID}
	idx := 2

	if req.Role != "" {
		sets = append(sets, fmt.Sprintf("role = $%d", idx))
		args = append(args, req.Role)
		idx++
	}
	if req.Phone != nil {
		sets = append(sets, fmt.Sprintf("phone_number = $%d", idx))
		args = append(args, *req.Phone)
		idx++
	}
	if req.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", idx))
		args = append(args, *req.Email)
		idx++
	}
	if req.Name != nil {
		sets = append(sets, fmt.Sprintf("full_name = $%d", idx))
		args = append(args, *req.Name)
		idx++
	}

	if len(sets) == 0 {
		return r.GetByID(userID)
	}

	sets = append(sets, "updated_at = NOW()")
	query := fmt.Sprintf(`
		UPDATE profiles
		SET %s
		WHERE id = $1
		RETURNING id, email, phone_number, password_hash, full_name, role, created_at, updated_at
	`, strings.Join(sets, ", "))

	var profile models.Profile
	if err := r.db.Get(&profile, query, args...); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Delete removes a profile
func (r *ProfileRepository) Delete(userID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
