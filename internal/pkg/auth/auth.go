// Package auth registers and authenticates users and binds them to a session.
// It is a thin credentials adapter; everything downstream only sees the
// authenticated flag and the user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/app/repository"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/referral"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// RegisterInput is a signup request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Address  string `json:"address" validate:"max=255"`
	// ReferralCode is the code of the user who referred the new one, see package referral
	ReferralCode string `json:"referral_code"`
}

type Service struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewService(users repository.UserRepository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{users: users, now: now}
}

// Register creates a user. An unknown referral code is ignored.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	user, err := models.CreateUser(strings.TrimSpace(in.Name), email, in.Password)
	if err != nil {
		return nil, err
	}
	user.Address = strings.TrimSpace(in.Address)
	user.ReferredByID = s.resolveReferrer(ctx, in.ReferralCode)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Service) resolveReferrer(ctx context.Context, code string) *uint {
	id, ok := referral.Parse(code)
	if !ok {
		return nil
	}
	referrer, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil
	}
	return &referrer.ID
}

// Authenticate checks the credentials and records the login time.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !models.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err == nil {
		user.LastLoginAt = &now
	}
	return user, nil
}

// StartSession binds user to a fresh session.
func StartSession(c *fiber.Ctx, store *session.Store, user *models.User) error {
	if store == nil {
		return fmt.Errorf("session store not initialized")
	}
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyRole, user.Role)
	return sess.Save()
}

// EndSession destroys the current session.
func EndSession(c *fiber.Ctx, store *session.Store) error {
	if store == nil {
		return nil
	}
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
