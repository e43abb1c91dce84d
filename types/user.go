package types

import "time"

// Role names seeded by the initial migration. Roles are immutable once
// seeded; users reference them by ID.
const (
	RoleAdmin     = "admin"
	RoleRecruiter = "recruiter"
	RoleJobseeker = "jobseeker"
)

// Role is an enumerated capability label referenced by User.
type Role struct {
	ID   int    `json:"role_id" db:"id"`
	Name string `json:"role_name" db:"name"`
}

// User represents an account in the system.
// It contains identity, role, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"user_id" db:"id"`

	// FullName is the user's display or full name.
	FullName string `json:"full_name" db:"full_name"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// RoleID references the user's role record.
	RoleID int `json:"role_id" db:"role_id"`

	// RoleName is the resolved role name ("admin", "recruiter",
	// "jobseeker"). Populated by joins; authoritative for authorization.
	RoleName string `json:"role_name" db:"role_name"`

	// MobileNumber is the user's contact number.
	MobileNumber string `json:"mobile_number,omitempty" db:"mobile_number"`

	// Skills are free-form skill labels attached to the profile,
	// stored as a JSON column.
	Skills []string `json:"skills,omitempty" db:"skills"`

	// ResumeKey is the object-storage key of the uploaded resume.
	// Only the reference is stored; the document lives in the bucket.
	ResumeKey string `json:"resume_key,omitempty" db:"resume_key"`

	// ExperienceYears is the user's total years of experience.
	ExperienceYears int `json:"experience_years,omitempty" db:"experience_years"`

	CurrentPosition string `json:"current_position,omitempty" db:"current_position"`
	CurrentCompany  string `json:"current_company,omitempty" db:"current_company"`
	LinkedinURL     string `json:"linkedin_url,omitempty" db:"linkedin_url"`

	// EmailVerified indicates whether the verification link was used.
	EmailVerified bool `json:"email_verified" db:"email_verified"`

	// VerificationToken is the pending email-verification token, if any.
	// Never exposed in API responses.
	VerificationToken string `json:"-" db:"verification_token"`

	// ResetTokenHash is the sha256 hex of the pending password-reset
	// token; ResetTokenExpires bounds its validity.
	ResetTokenHash    string     `json:"-" db:"reset_token_hash"`
	ResetTokenExpires *time.Time `json:"-" db:"reset_token_expires"`

	// IsActive is false for soft-deactivated accounts. Accounts are
	// never hard-deleted.
	IsActive bool `json:"is_active" db:"is_active"`

	// LastLogin is the timestamp of the most recent successful login.
	LastLogin *time.Time `json:"last_login,omitempty" db:"last_login"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
