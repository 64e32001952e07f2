package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/pkg/apperror"
)

var feedbackSortColumns = map[string]bool{
	"created_at": true,
}

type FeedbackRepository interface {
	ListByVideo(ctx context.Context, videoID uuid.UUID, params ListParams) ([]*model.VideoFeedback, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.VideoFeedback, error)
	Create(ctx context.Context, feedback *model.VideoFeedback) (*model.VideoFeedback, error)
	Update(ctx context.Context, feedback *model.VideoFeedback) (*model.VideoFeedback, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.VideoFeedback, error)
}

type feedbackRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFeedbackRepository(db *gorm.DB, log *zap.Logger) FeedbackRepository {
	return &feedbackRepository{db: db, log: log}
}

func (r *feedbackRepository) ListByVideo(ctx context.Context, videoID uuid.UUID, params ListParams) ([]*model.VideoFeedback, error) {
	sortBy, offset, limit, err := params.normalize(feedbackSortColumns, "created_at", 20)
	if err != nil {
		return nil, err
	}
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var feedback []*model.VideoFeedback
	if err := tx.Where("video_id = ?", videoID).
		Order(sortBy).Offset(offset).Limit(limit).
		Find(&feedback).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return feedback, nil
}

func (r *feedbackRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.VideoFeedback, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var feedback model.VideoFeedback
	if err := tx.First(&feedback, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &feedback, nil
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *model.VideoFeedback) (*model.VideoFeedback, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	if err := tx.Create(feedback).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("created feedback", zap.String("feedback_id", feedback.ID.String()))
	return feedback, nil
}

func (r *feedbackRepository) Update(ctx context.Context, feedback *model.VideoFeedback) (*model.VideoFeedback, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	res := tx.Model(&model.VideoFeedback{}).
		Where("id = ?", feedback.ID).
		Select("*").Omit("id", "created_at").
		Updates(feedback)
	if res.Error != nil {
		return nil, apperror.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrNotFound
	}
	return r.FindByID(ctx, feedback.ID)
}

func (r *feedbackRepository) Delete(ctx context.Context, id uuid.UUID) (*model.VideoFeedback, error) {
	feedback, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.VideoFeedback{}, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("removed feedback", zap.String("feedback_id", id.String()))
	return feedback, nil
}
