package auth

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateUser(ctx context.Context, user *UserModel) error
	FindByUsername(ctx context.Context, username string) (*UserModel, error)
	ListUsers(ctx context.Context) ([]UserModel, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateUser(ctx context.Context, user *UserModel) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormRepository) FindByUsername(ctx context.Context, username string) (*UserModel, error) {
	var user UserModel
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) ListUsers(ctx context.Context) ([]UserModel, error) {
	var users []UserModel
	err := r.db.WithContext(ctx).Order("username").Find(&users).Error
	return users, err
}
