// Package users manages account registration, credential checks, and profile
// maintenance for students and admins.
package users

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/workstudy/internal/app/domain/user"
	"github.com/campusworks/workstudy/internal/app/storage"
	"github.com/campusworks/workstudy/internal/errors"
	"github.com/campusworks/workstudy/pkg/logger"
)

const minPasswordLen = 6

// Registration carries the caller-supplied fields for a new account.
type Registration struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

// Service manages user accounts.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user account service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// RegisterStudent creates an active student account.
func (s *Service) RegisterStudent(ctx context.Context, reg Registration) (user.User, error) {
	return s.register(ctx, reg, user.RoleStudent)
}

// RegisterAdmin creates an active admin account.
func (s *Service) RegisterAdmin(ctx context.Context, reg Registration) (user.User, error) {
	return s.register(ctx, reg, user.RoleAdmin)
}

func (s *Service) register(ctx context.Context, reg Registration, role user.Role) (user.User, error) {
	if err := validateRegistration(&reg); err != nil {
		return user.User{}, err
	}

	if _, err := s.store.GetUserByUsername(ctx, reg.Username); err == nil {
		return user.User{}, errors.Conflict("username %s is already taken", reg.Username)
	} else if !errors.IsCode(err, errors.CodeNotFound) {
		return user.User{}, err
	}
	if _, err := s.store.GetUserByEmail(ctx, reg.Email); err == nil {
		return user.User{}, errors.Conflict("email %s is already registered", reg.Email)
	} else if !errors.IsCode(err, errors.CodeNotFound) {
		return user.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, errors.Internal("hash password", err)
	}

	now := time.Now().UTC()
	created, err := s.store.CreateUser(ctx, user.User{
		Username:     reg.Username,
		PasswordHash: string(hash),
		Email:        reg.Email,
		FullName:     reg.FullName,
		Phone:        reg.Phone,
		Department:   reg.Department,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return user.User{}, err
	}

	s.log.WithField("user_id", created.ID).
		WithField("username", created.Username).
		WithField("role", created.Role).
		Info("user registered")
	return created, nil
}

// Authenticate verifies a username and password pair. Deactivated accounts
// fail authentication even with correct credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return user.User{}, errors.Unauthorized("invalid username or password")
		}
		return user.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, errors.Unauthorized("invalid username or password")
	}
	if !u.Active {
		return user.User{}, errors.Unauthorized("account is deactivated")
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// ListStudents returns every student account.
func (s *Service) ListStudents(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsersByRole(ctx, user.RoleStudent)
}

// ListAdmins returns every admin account.
func (s *Service) ListAdmins(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsersByRole(ctx, user.RoleAdmin)
}

// UpdateProfile replaces the mutable profile fields of an account. A changed
// email must not collide with another account.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	upd.Email = strings.TrimSpace(upd.Email)
	upd.FullName = strings.TrimSpace(upd.FullName)
	if upd.Email == "" {
		return user.User{}, errors.InvalidInput("email is required")
	}
	if _, err := mail.ParseAddress(upd.Email); err != nil {
		return user.User{}, errors.InvalidInput("email %q is not a valid address", upd.Email)
	}
	if upd.FullName == "" {
		return user.User{}, errors.InvalidInput("full name is required")
	}

	if upd.Email != u.Email {
		if other, err := s.store.GetUserByEmail(ctx, upd.Email); err == nil && other.ID != id {
			return user.User{}, errors.Conflict("email %s is already registered", upd.Email)
		} else if err != nil && !errors.IsCode(err, errors.CodeNotFound) {
			return user.User{}, err
		}
	}

	u.Email = upd.Email
	u.FullName = upd.FullName
	u.Phone = strings.TrimSpace(upd.Phone)
	u.Department = strings.TrimSpace(upd.Department)
	u.UpdatedAt = time.Now().UTC()

	return s.store.UpdateUser(ctx, u)
}

// Deactivate disables an account. The operation is idempotent.
func (s *Service) Deactivate(ctx context.Context, id string) (user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if !u.Active {
		return u, nil
	}
	u.Active = false
	u.UpdatedAt = time.Now().UTC()

	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", id).Info("user deactivated")
	return updated, nil
}

func validateRegistration(reg *Registration) error {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.FullName = strings.TrimSpace(reg.FullName)
	reg.Phone = strings.TrimSpace(reg.Phone)
	reg.Department = strings.TrimSpace(reg.Department)

	switch {
	case reg.Username == "":
		return errors.InvalidInput("username is required")
	case len(reg.Username) < 3 || len(reg.Username) > 50:
		return errors.InvalidInput("username must be between 3 and 50 characters")
	case len(reg.Password) < minPasswordLen:
		return errors.InvalidInput("password must be at least %d characters", minPasswordLen)
	case reg.Email == "":
		return errors.InvalidInput("email is required")
	case reg.FullName == "":
		return errors.InvalidInput("full name is required")
	}
	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return errors.InvalidInput("email %q is not a valid address", reg.Email)
	}
	return nil
}
