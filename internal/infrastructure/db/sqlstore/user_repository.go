package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

type userRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"size:50;not null"`
	Email     string    `gorm:"size:100;uniqueIndex;not null"`
	Password  string    `gorm:"size:255;not null"`
	Phone     string    `gorm:"size:15"`
	UserType  string    `gorm:"size:16;not null;default:'customer'"`
	CreatedAt time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

// UserRepository is the SQL credential store.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	rec := userRecord{
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Phone:     user.Phone,
		UserType:  user.Role.String(),
		CreatedAt: user.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = rec.ID
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	role, err := domain.ParseRole(rec.UserType)
	if err != nil {
		return nil, fmt.Errorf("decode user %d: %w", rec.ID, err)
	}
	return &domain.User{
		ID:           rec.ID,
		Username:     rec.Username,
		Email:        rec.Email,
		PasswordHash: rec.Password,
		Role:         role,
		Phone:        rec.Phone,
		CreatedAt:    rec.CreatedAt.UTC(),
	}, nil
}
