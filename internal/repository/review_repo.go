package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/pkg/apperror"
)

var reviewSortColumns = map[string]bool{
	"created_at": true,
	"rating":     true,
}

type ReviewRepository interface {
	ListByCourse(ctx context.Context, courseID uuid.UUID, params ListParams) ([]*model.Review, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	Create(ctx context.Context, review *model.Review) (*model.Review, error)
	Update(ctx context.Context, review *model.Review) (*model.Review, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Review, error)
	HasUserReviewed(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type reviewRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReviewRepository(db *gorm.DB, log *zap.Logger) ReviewRepository {
	return &reviewRepository{db: db, log: log}
}

func (r *reviewRepository) ListByCourse(ctx context.Context, courseID uuid.UUID, params ListParams) ([]*model.Review, error) {
	sortBy, offset, limit, err := params.normalize(reviewSortColumns, "created_at", 20)
	if err != nil {
		return nil, err
	}
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var reviews []*model.Review
	if err := tx.Where("course_id = ?", courseID).
		Order(sortBy).Offset(offset).Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return reviews, nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var review model.Review
	if err := tx.First(&review, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) (*model.Review, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	if err := tx.Create(review).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("created review", zap.String("review_id", review.ID.String()))
	return review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *model.Review) (*model.Review, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	res := tx.Model(&model.Review{}).
		Where("id = ?", review.ID).
		Select("*").Omit("id", "created_at").
		Updates(review)
	if res.Error != nil {
		return nil, apperror.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrNotFound
	}
	return r.FindByID(ctx, review.ID)
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Review{}, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("removed review", zap.String("review_id", id.String()))
	return review, nil
}

func (r *reviewRepository) HasUserReviewed(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return false, err
	}

	var count int64
	if err := tx.Model(&model.Review{}).
		Where("author_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, apperror.FromDB(err)
	}
	return count > 0, nil
}
