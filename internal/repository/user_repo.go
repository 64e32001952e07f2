package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/pkg/apperror"
)

var userSortColumns = map[string]bool{
	"last_name":  true,
	"first_name": true,
	"email":      true,
	"created_at": true,
}

type UserRepository interface {
	List(ctx context.Context, params ListParams) ([]*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Update(ctx context.Context, user *model.User) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserRepository(db *gorm.DB, log *zap.Logger) UserRepository {
	return &userRepository{db: db, log: log}
}

func (r *userRepository) List(ctx context.Context, params ListParams) ([]*model.User, error) {
	sortBy, offset, limit, err := params.normalize(userSortColumns, "last_name", 20)
	if err != nil {
		return nil, err
	}
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var users []*model.User
	if err := tx.Order(sortBy).Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return users, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := tx.First(&user, "email = ?", email).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	if err := tx.Create(user).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("created user", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) (*model.User, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	res := tx.Model(&model.User{}).
		Where("id = ?", user.ID).
		Select("*").Omit("id", "created_at").
		Updates(user)
	if res.Error != nil {
		return nil, apperror.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrNotFound
	}
	return r.FindByID(ctx, user.ID)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("removed user", zap.String("user_id", id.String()))
	return user, nil
}
