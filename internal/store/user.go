package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/skillsmatch/apiserver/types"
)

// UserRepository handles persistence for users and roles.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	u.id, u.full_name, u.email, u.password_hash, u.role_id, r.name,
	u.mobile_number, u.skills, u.resume_key, u.experience_years,
	u.current_position, u.current_company, u.linkedin_url,
	u.email_verified, u.verification_token, u.reset_token_hash,
	u.reset_token_expires, u.is_active, u.last_login,
	u.created_at, u.updated_at`

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var user types.User
	var skillsJSON []byte
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.RoleID,
		&user.RoleName,
		&user.MobileNumber,
		&skillsJSON,
		&user.ResumeKey,
		&user.ExperienceYears,
		&user.CurrentPosition,
		&user.CurrentCompany,
		&user.LinkedinURL,
		&user.EmailVerified,
		&user.VerificationToken,
		&user.ResetTokenHash,
		&user.ResetTokenExpires,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	_ = json.Unmarshal(skillsJSON, &user.Skills)
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.verification_token = $1 AND u.verification_token <> ''`
	return scanUser(r.db.QueryRowContext(ctx, query, token))
}

// GetByResetToken resolves a user by the sha256 hex of a reset token,
// rejecting expired tokens at the query level.
func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.reset_token_hash = $1 AND u.reset_token_hash <> ''
		  AND u.reset_token_expires >= $2`
	return scanUser(r.db.QueryRowContext(ctx, query, tokenHash, now))
}

func (r *UserRepository) GetRoleByName(ctx context.Context, name string) (types.Role, error) {
	const query = `SELECT id, name FROM roles WHERE name = $1`
	var role types.Role
	err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Role{}, ErrNotFound
		}
		return types.Role{}, err
	}
	return role, nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	const countQuery = `SELECT COUNT(1) FROM users`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		ORDER BY u.id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]types.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	skillsJSON, err := json.Marshal(skillsOrEmpty(user.Skills))
	if err != nil {
		return types.User{}, err
	}

	const query = `
		INSERT INTO users (
			full_name, email, password_hash, role_id, mobile_number,
			skills, resume_key, experience_years, current_position,
			current_company, linkedin_url, email_verified,
			verification_token, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.RoleID,
		user.MobileNumber,
		skillsJSON,
		user.ResumeKey,
		user.ExperienceYears,
		user.CurrentPosition,
		user.CurrentCompany,
		user.LinkedinURL,
		user.EmailVerified,
		user.VerificationToken,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	skillsJSON, err := json.Marshal(skillsOrEmpty(user.Skills))
	if err != nil {
		return types.User{}, err
	}

	const query = `
		UPDATE users
		SET full_name = $1,
			email = $2,
			password_hash = $3,
			mobile_number = $4,
			skills = $5,
			resume_key = $6,
			experience_years = $7,
			current_position = $8,
			current_company = $9,
			linkedin_url = $10,
			email_verified = $11,
			verification_token = $12,
			reset_token_hash = $13,
			reset_token_expires = $14,
			is_active = $15,
			last_login = $16,
			updated_at = $17
		WHERE id = $18`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.MobileNumber,
		skillsJSON,
		user.ResumeKey,
		user.ExperienceYears,
		user.CurrentPosition,
		user.CurrentCompany,
		user.LinkedinURL,
		user.EmailVerified,
		user.VerificationToken,
		user.ResetTokenHash,
		user.ResetTokenExpires,
		user.IsActive,
		user.LastLogin,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, translate(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func skillsOrEmpty(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
