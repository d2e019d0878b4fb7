package repo

import (
	"Sidekick/internal/model"
	"context"

	"gorm.io/gorm"
)

// UserRepository — контракт доступа к пользователям.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	// GetUserByID возвращает gorm.ErrRecordNotFound, если пользователя нет.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// UpdateUser обновляет указанные столбцы; gorm.ErrRecordNotFound, если строк не затронуто.
	UpdateUser(ctx context.Context, id string, updates map[string]any) error
	// DeleteUser удаляет строку пользователя; gorm.ErrRecordNotFound, если её не было.
	DeleteUser(ctx context.Context, id string) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория для User.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := conn(ctx, r.db).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := conn(ctx, r.db).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := conn(ctx, r.db).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) UpdateUser(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	tx := conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return exists(ctx, r.db, &model.User{}, id)
	}
	return nil
}

func (r *userRepo) DeleteUser(ctx context.Context, id string) error {
	tx := conn(ctx, r.db).Where("id = ?", id).Delete(&model.User{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
