package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pokedex/internal/common"
	"pokedex/internal/models"
	"pokedex/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStore persists user accounts. Username and email are unique.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create hashes the password and inserts a new user. It returns a
// *common.DuplicateKeyError when the username or email is taken.
func (s *UserStore) Create(ctx context.Context, username, email, password, imageURL string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, common.NewValidationError(common.FieldError{Field: "password", Message: "Password is too long."})
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		ImageURL: avatarOrDefault(imageURL),
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, s.resolveDuplicate(ctx, wrapGormError(err), 0, username, email)
	}
	return &user, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", username)
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// UpdateProfile rewrites username, email and avatar. The password is left alone.
func (s *UserStore) UpdateProfile(ctx context.Context, id uint, username, email, imageURL string) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"username":  username,
		"email":     email,
		"image_url": avatarOrDefault(imageURL),
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, s.resolveDuplicate(ctx, wrapGormError(err), id, username, email)
	}

	user.Username = username
	user.Email = email
	user.ImageURL = avatarOrDefault(imageURL)
	return user, nil
}

// Delete removes the user and every comment they own in one transaction.
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments of user %d: %w", id, err)
		}
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("user", id)
		}
		return nil
	})
}

// resolveDuplicate fills in the offending field of a duplicate key error by
// probing the unique columns. Other errors pass through.
func (s *UserStore) resolveDuplicate(ctx context.Context, err error, selfID uint, username, email string) error {
	var dup *common.DuplicateKeyError
	if !errors.As(err, &dup) {
		return err
	}
	if dup.Field != "" {
		return dup
	}

	taken := func(column, value string) bool {
		var count int64
		q := s.db.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value)
		if selfID != 0 {
			q = q.Where("id <> ?", selfID)
		}
		return q.Count(&count).Error == nil && count > 0
	}

	switch {
	case taken("username", username):
		dup.Field = "username"
	case taken("email", email):
		dup.Field = "email"
	}
	return dup
}

func avatarOrDefault(imageURL string) string {
	if strings.TrimSpace(imageURL) == "" {
		return models.DefaultImageURL
	}
	return strings.TrimSpace(imageURL)
}
