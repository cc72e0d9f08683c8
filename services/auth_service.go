package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"tabletap/models"
	"tabletap/repositories"
	"tabletap/utils"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers every login failure mode so the response
	// never reveals whether the email exists.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBlankCredentials   = errors.New("email and password are required")
)

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a new account with the given role. The email is
// normalized before the duplicate check so the same address cannot be
// registered twice in different casings.
func (s *AuthService) Register(name, email, password string, role models.UserRole) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, ErrBlankCredentials
	}
	if !models.KnownRole(role) {
		role = models.UserRoleUser
	}

	_, err := s.users.FindByEmail(email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, Role: role}
	if err := user.HashPassword(password); err != nil {
		return nil, err
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by normalized email and password and returns the
// user together with a signed session token.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = models.NormalizeEmail(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, "", ErrBlankCredentials
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := user.CheckPassword(password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !models.KnownRole(user.Role) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
