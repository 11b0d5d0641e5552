package services

import (
	"errors"
	"fmt"

	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles profile updates and user administration.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetUserByID retrieves a user by ID.
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// UpdateUsername changes the user's unique username.
func (s *UserService) UpdateUsername(user *models.User, newUsername string) error {
	if existing, err := s.userRepo.GetByUsername(newUsername); err == nil && existing != nil && existing.ID != user.ID {
		return fmt.Errorf("username '%s': %w", newUsername, ErrUsernameTaken)
	}
	user.Username = newUsername
	return s.userRepo.Update(user)
}

// UpdateEmail changes the user's unique email address.
func (s *UserService) UpdateEmail(user *models.User, newEmail string) error {
	if existing, err := s.userRepo.GetByEmail(newEmail); err == nil && existing != nil && existing.ID != user.ID {
		return fmt.Errorf("email '%s': %w", newEmail, ErrEmailTaken)
	}
	user.Email = newEmail
	return s.userRepo.Update(user)
}

// UpdatePassword verifies the current password before storing a new hash.
func (s *UserService) UpdatePassword(user *models.User, currentPassword, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(user)
}

// SetRole grants or revokes the ADMIN role for the user behind the email.
func (s *UserService) SetRole(email string, role models.Role) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	logrus.Printf("User %s role set to %s", user.Email, role)
	return user, nil
}

// DeleteByEmail removes the user behind the email.
func (s *UserService) DeleteByEmail(email string) error {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(user.ID)
}
