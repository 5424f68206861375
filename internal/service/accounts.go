package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/auth"
	"github.com/Clark-Hu/store-rating/internal/domain"
	"github.com/Clark-Hu/store-rating/internal/repository"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// RegisterInput is the self-service sign-up payload.
type RegisterInput struct {
	Name     string  `json:"name" validate:"required,min=2,max=60"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin user store_owner"`
}

// LoginInput is the credential payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdatePasswordInput changes the caller's password.
type UpdatePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// CreateUserInput is the admin user-creation payload; role is mandatory.
type CreateUserInput struct {
	Name     string  `json:"name" validate:"required,min=2,max=60"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
	Role     string  `json:"role" validate:"required,oneof=admin user store_owner"`
}

// Session is the outcome of a successful register or login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// Register creates a user account and issues a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = trimmed(in.Address)
	if err := s.check(in); err != nil {
		return Session{}, err
	}

	role := domain.RoleUser
	if in.Role != "" {
		parsed, err := domain.ParseRole(in.Role)
		if err != nil {
			return Session{}, apperr.Invalid("Invalid role. Must be admin, user, or store_owner")
		}
		role = parsed
	}
	if role == domain.RoleAdmin && !s.opts.AllowAdminSignup {
		return Session{}, apperr.Forbidden("Admin accounts cannot be self-registered")
	}

	user, err := s.createUser(ctx, in.Name, in.Email, in.Password, in.Address, role, "Email already in use")
	if err != nil {
		return Session{}, err
	}
	return s.issue(user)
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return Session{}, apperr.Invalid("Email and password are required")
	}

	user, err := s.repo.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.burnHash(in.Password)
			return Session{}, apperr.Unauthenticated("Invalid credentials")
		}
		return Session{}, apperr.Internal("Failed to log in", err)
	}
	if !s.hasher.Verify(user.PasswordHash, in.Password) {
		return Session{}, apperr.Unauthenticated("Invalid credentials")
	}
	return s.issue(user)
}

// Profile returns the stored account for userID.
func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	if !validID(userID) {
		return domain.User{}, apperr.NotFound("User not found")
	}
	user, err := s.repo.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, apperr.NotFound("User not found")
		}
		return domain.User{}, apperr.Internal("Failed to load profile", err)
	}
	return user, nil
}

// UpdatePassword replaces the caller's password after verifying the current
// one. Tokens issued earlier stay valid until they expire.
func (s *Service) UpdatePassword(ctx context.Context, userID string, in UpdatePasswordInput) error {
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return apperr.Invalid("Current password and new password are required")
	}
	if len([]rune(in.NewPassword)) < MinPasswordLength {
		return apperr.Invalid("New password must be at least 6 characters long")
	}
	if len(in.NewPassword) > auth.MaxPasswordBytes {
		return apperr.Invalid("New password must be at most 72 bytes long")
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(user.PasswordHash, in.CurrentPassword) {
		return apperr.Invalid("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperr.Internal("Failed to update password", err)
	}
	if err := s.repo.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("Failed to update password", err)
	}
	s.logger.WithField("user_id", user.ID).Info("password updated")
	return nil
}

// CreateUser is the admin path for creating an account with any role.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = trimmed(in.Address)
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return domain.User{}, apperr.Invalid("Name, email, password, and role are required")
	}
	if _, err := domain.ParseRole(in.Role); err != nil {
		return domain.User{}, apperr.Invalid("Invalid role. Must be admin, user, or store_owner")
	}
	if err := s.check(in); err != nil {
		return domain.User{}, err
	}
	role, _ := domain.ParseRole(in.Role)
	return s.createUser(ctx, in.Name, in.Email, in.Password, in.Address, role, "User with this email already exists")
}

func (s *Service) createUser(ctx context.Context, name, email, password string, address *string, role domain.Role, conflictMsg string) (domain.User, error) {
	if _, err := s.repo.Users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, apperr.Conflict(conflictMsg)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, apperr.Internal("Failed to create user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, apperr.Internal("Failed to create user", err)
	}

	user, err := s.repo.Users.Create(ctx, repository.UserCreateParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.User{}, apperr.Conflict(conflictMsg)
		}
		return domain.User{}, apperr.Internal("Failed to create user", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role.String()}).Info("user created")
	return user, nil
}

func (s *Service) issue(user domain.User) (Session, error) {
	token, expires, err := s.tokens.Issue(auth.IdentityOf(user))
	if err != nil {
		return Session{}, apperr.Internal("Failed to issue token", err)
	}
	return Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// burnHash spends one hash comparison so unknown emails take as long as
// wrong passwords.
func (s *Service) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	s.hasher.Verify(s.dummyHash, password)
}
