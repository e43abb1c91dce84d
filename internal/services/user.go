package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/skillsmatch/apiserver/internal/store"
	"github.com/skillsmatch/apiserver/types"
)

// resetTokenTTL bounds how long a password-reset link stays usable.
const resetTokenTTL = 10 * time.Minute

const minPasswordLength = 8

// UserRepository defines persistence operations for users and roles.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByVerificationToken(ctx context.Context, token string) (types.User, error)
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (types.User, error)
	GetRoleByName(ctx context.Context, name string) (types.Role, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates account and session use-cases.
type UserService struct {
	repo        UserRepository
	notifier    Notifier
	frontendURL string
}

func NewUserService(repo UserRepository, notifier Notifier, frontendURL string) *UserService {
	return &UserService{repo: repo, notifier: notifier, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	FullName     string
	Email        string
	Password     string
	Role         string
	MobileNumber string
	Skills       []string
}

// Register creates an account with a bcrypt-hashed password and an
// email-verification token, and dispatches the verification
// notification best-effort.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FullName == "" || in.Email == "" {
		return types.User{}, fmt.Errorf("full name and email are required: %w", ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return types.User{}, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, ErrValidation)
	}

	roleName := strings.TrimSpace(in.Role)
	if roleName == "" {
		roleName = types.RoleJobseeker
	}
	// Admin accounts are provisioned out of band, never self-registered.
	if roleName == types.RoleAdmin {
		return types.User{}, fmt.Errorf("role %q is not assignable: %w", roleName, ErrValidation)
	}
	role, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, fmt.Errorf("unknown role %q: %w", roleName, ErrValidation)
		}
		return types.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	verification, err := randomToken()
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		FullName:          in.FullName,
		Email:             in.Email,
		PasswordHash:      string(hashed),
		RoleID:            role.ID,
		RoleName:          role.Name,
		MobileNumber:      strings.TrimSpace(in.MobileNumber),
		Skills:            in.Skills,
		VerificationToken: verification,
		IsActive:          true,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		return types.User{}, err
	}

	s.notifier.Send(ctx, types.Notification{
		RecipientID: user.ID,
		Type:        types.NotifyEmailVerification,
		Message:     "Welcome! Please verify your email address to activate your account.",
		Priority:    "high",
		ActionURL:   s.frontendURL + "/verify-email?token=" + verification,
	})

	return user, nil
}

// Login verifies credentials and account gates, and records the login
// time. The caller issues the session token from the returned user.
func (s *UserService) Login(ctx context.Context, email, password string) (types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return types.User{}, fmt.Errorf("missing credentials: %w", ErrValidation)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return types.User{}, ErrAccountUnverified
	}
	if !user.IsActive {
		return types.User{}, ErrAccountDeactivated
	}

	now := time.Now()
	user.LastLogin = &now
	return s.repo.Update(ctx, user)
}

// VerifyEmail marks the account matching the token as verified and
// consumes the token.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (types.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return types.User{}, fmt.Errorf("missing token: %w", ErrValidation)
	}
	user, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		return types.User{}, err
	}
	user.EmailVerified = true
	user.VerificationToken = ""
	return s.repo.Update(ctx, user)
}

// ForgotPassword issues a short-lived reset token for the account, if
// one exists. Unknown emails are not reported to the caller.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("missing email: %w", ErrValidation)
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(resetTokenTTL)
	user.ResetTokenHash = hashToken(token)
	user.ResetTokenExpires = &expires
	if _, err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.notifier.Send(ctx, types.Notification{
		RecipientID: user.ID,
		Type:        types.NotifyPasswordReset,
		Message:     "A password reset was requested for your account. The link expires in 10 minutes.",
		Priority:    "high",
		ActionURL:   s.frontendURL + "/reset-password?token=" + token,
	})
	return nil
}

// ResetPassword consumes a reset token and replaces the password. Only
// the sha256 of the token is ever stored.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("missing token: %w", ErrValidation)
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, ErrValidation)
	}

	user, err := s.repo.GetByResetToken(ctx, hashToken(token), time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("invalid or expired token: %w", ErrValidation)
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	user.ResetTokenHash = ""
	user.ResetTokenExpires = nil
	_, err = s.repo.Update(ctx, user)
	return err
}

// ChangePassword replaces the password after re-verifying the current
// one.
func (s *UserService) ChangePassword(ctx context.Context, userID int, current, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, ErrValidation)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	_, err = s.repo.Update(ctx, user)
	return err
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of users. Admin only.
func (s *UserService) List(ctx context.Context, actor types.User, offset, limit int) ([]types.User, int, error) {
	if actor.RoleName != types.RoleAdmin {
		return nil, 0, fmt.Errorf("listing users requires admin: %w", ErrForbidden)
	}
	return s.repo.List(ctx, offset, limit)
}

// ProfileUpdate carries the self-service profile fields. Nil pointers
// leave the current value unchanged.
type ProfileUpdate struct {
	FullName        *string
	MobileNumber    *string
	Skills          *[]string
	ResumeKey       *string
	ExperienceYears *int
	CurrentPosition *string
	CurrentCompany  *string
	LinkedinURL     *string
}

// UpdateProfile applies a partial profile update. Users may edit
// themselves; admins may edit anyone.
func (s *UserService) UpdateProfile(ctx context.Context, actor types.User, id int, in ProfileUpdate) (types.User, error) {
	if actor.ID != id && actor.RoleName != types.RoleAdmin {
		return types.User{}, fmt.Errorf("cannot edit another user's profile: %w", ErrForbidden)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return types.User{}, fmt.Errorf("full name cannot be empty: %w", ErrValidation)
		}
		user.FullName = name
	}
	if in.MobileNumber != nil {
		user.MobileNumber = strings.TrimSpace(*in.MobileNumber)
	}
	if in.Skills != nil {
		user.Skills = *in.Skills
	}
	if in.ResumeKey != nil {
		user.ResumeKey = *in.ResumeKey
	}
	if in.ExperienceYears != nil {
		if *in.ExperienceYears < 0 {
			return types.User{}, fmt.Errorf("experience years cannot be negative: %w", ErrValidation)
		}
		user.ExperienceYears = *in.ExperienceYears
	}
	if in.CurrentPosition != nil {
		user.CurrentPosition = strings.TrimSpace(*in.CurrentPosition)
	}
	if in.CurrentCompany != nil {
		user.CurrentCompany = strings.TrimSpace(*in.CurrentCompany)
	}
	if in.LinkedinURL != nil {
		user.LinkedinURL = strings.TrimSpace(*in.LinkedinURL)
	}

	return s.repo.Update(ctx, user)
}

// Deactivate soft-deletes an account. Admin only; deactivated users
// fail the login gate but their history stays intact.
func (s *UserService) Deactivate(ctx context.Context, actor types.User, id int) error {
	if actor.RoleName != types.RoleAdmin {
		return fmt.Errorf("deactivating users requires admin: %w", ErrForbidden)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.IsActive = false
	_, err = s.repo.Update(ctx, user)
	return err
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
