// Package adapters provides the repository implementations for the
// registration feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"expo_backend/internal/feature/registration/domain/entity"
	"expo_backend/internal/feature/registration/usecase"
)

// userGorm is the GORM implementation of the usecase.UserRepository interface.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check that userGorm implements UserRepository.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a userGorm bound to the given gorm.DB connection.
// The connection must be opened with TranslateError enabled so unique
// constraint violations surface as gorm.ErrDuplicatedKey.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// WithTx runs fn inside a database transaction and hands it a repository
// bound to that transaction. Returning an error from fn rolls back.
func (r *userGorm) WithTx(ctx context.Context, fn func(tx usecase.UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userGorm{db: tx})
	})
}

// CreateUser inserts the user. Unique-key violations on email or username
// are reported as usecase.ErrDuplicateUser; which column collided is
// resolved by the workflow after rollback, since the aborted transaction
// cannot be queried further on postgres.
func (r *userGorm) CreateUser(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrDuplicateUser
		}
		return err
	}
	return nil
}

// CreateCompany inserts the company row linked to its user.
func (r *userGorm) CreateCompany(ctx context.Context, company *entity.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

// FindByIDWithCompany loads the user aggregate including its company.
func (r *userGorm) FindByIDWithCompany(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Preload("Company").Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether a user row with the given email exists.
func (r *userGorm) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UsernameExists reports whether a user row with the given username exists.
func (r *userGorm) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
