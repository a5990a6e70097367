package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Roles recognized by the platform. Admin implicitly satisfies every role check.
const (
	RoleCustomer = "Customer"
	RoleStaff    = "Staff"
	RoleRider    = "Rider"
	RoleAdmin    = "Admin"
)

// ValidRole reports whether the given role is one of the recognized roles
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleStaff, RoleRider, RoleAdmin:
		return true
	}
	return false
}

// Profile represents a platform user. The id is shared with the auth
// credentials row; role is the sole authorization signal.
type Profile struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        NullString `json:"email,omitempty" db:"email"`
	PhoneNumber  NullString `json:"phone,omitempty" db:"phone_number"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     NullString `json:"full_name,omitempty" db:"full_name"`
	Role         string     `json:"role" db:"role"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// RefreshToken represents a persisted JWT refresh token
type RefreshToken struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash  string     `json:"-" db:"token_hash"` // Never expose
	DeviceType NullString `json:"device_type,omitempty" db:"device_type"`
	IPAddress  NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  NullString `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	LastUsedAt NullTime   `json:"last_used_at,omitempty" db:"last_used_at"`
	Revoked    bool       `json:"revoked" db:"revoked"`
	RevokedAt  NullTime   `json:"revoked_at,omitempty" db:"revoked_at"`
}

// RegisterRequest creates a new customer account. Email or phone is required.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Password string  `json:"password" binding:"required,min=8"`
	Metadata JSONMap `json:"metadata"`
}

// Validate checks that at least one contact identifier is present
func (r *RegisterRequest) Validate() error {
	if r.Email == "" && r.Phone == "" {
		return fmt.Errorf("email or phone number is required")
	}
	return nil
}

// LoginRequest authenticates by email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest ends a session. Without a token the most recent session is
// revoked; logout_all revokes every active session for the user.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	LogoutAll    bool   `json:"logout_all"`
}

// UpdateUserRequest updates profile fields and optionally the role.
// Nil pointers leave the corresponding field untouched.
type UpdateUserRequest struct {
	Role  string  `json:"role"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Name  *string `json:"name"`
}

// UserView merges the auth identity with its profile for the admin user list
type UserView struct {
	ID        uuid.UUID  `json:"id"`
	Email     NullString `json:"email"`
	Phone     NullString `json:"phone"`
	FullName  NullString `json:"full_name"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Notification is a short message shown on a user's dashboard
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
