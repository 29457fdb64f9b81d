package auth

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/mrlokans/libreria/internal/config"
	"github.com/mrlokans/libreria/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrAuthRequired     = errors.New("authentication required")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrSetupComplete    = errors.New("setup already completed")
)

// UserStore defines the user persistence the auth service needs.
type UserStore interface {
	CreateUser(user *entities.User) error
	GetUserByUsername(username string) (*entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	CountUsers() (int64, error)
}

// Service handles authentication and administrative account management.
type Service struct {
	store  UserStore
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(store UserStore, cfg config.Auth) *Service {
	return &Service{
		store:  store,
		config: cfg,
	}
}

// IsAuthEnabled reports whether local authentication is switched on.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

// CreateUser creates a new administrative account.
func (s *Service) CreateUser(username, password string) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and returns the user.
// Returns ErrInvalidPassword for a wrong password and ErrUserNotFound for an
// unknown username.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.store.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// HasUsers reports whether any administrative account exists yet.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.store.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
