package store

import (
	"errors"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateUser persists a new account. A duplicate email fails with a
// Validation error so registration surfaces it as a 400.
func (s *Store) CreateUser(email, passwordHash, role, organization string, emailVerified bool) (*model.User, error) {
	user := &model.User{
		ID:            uuid.New().String(),
		Email:         email,
		PasswordHash:  passwordHash,
		Role:          role,
		Organization:  organization,
		EmailVerified: emailVerified,
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationErr("email", "already registered")
		}
		return nil, err
	}
	return user, nil
}

func (s *Store) FindUserByEmail(email string) (*model.User, error) {
	var user model.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) FindUserByID(id string) (*model.User, error) {
	var user model.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// MarkEmailVerified flips the verification flag exactly once; verifying an
// already-verified account is a Validation error.
func (s *Store) MarkEmailVerified(userID string) error {
	res := s.db.Model(&model.User{}).
		Where("id = ? AND email_verified = ?", userID, false).
		Update("email_verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var user model.User
		if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
			return ErrNotFound
		}
		return validationErr("token", "email already verified")
	}
	return nil
}

// TouchLastLogin records a successful authentication.
func (s *Store) TouchLastLogin(userID string, at time.Time) error {
	return s.db.Model(&model.User{}).Where("id = ?", userID).
		Update("last_login", at).Error
}
