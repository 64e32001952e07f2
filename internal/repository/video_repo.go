package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/pkg/apperror"
)

var videoSortColumns = map[string]bool{
	"name":       true,
	"created_at": true,
	"duration":   true,
}

type VideoRepository interface {
	ListBySection(ctx context.Context, sectionID uuid.UUID, params ListParams) ([]*model.Video, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Video, error)
	Create(ctx context.Context, video *model.Video) (*model.Video, error)
	Update(ctx context.Context, video *model.Video) (*model.Video, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Video, error)
}

type videoRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewVideoRepository(db *gorm.DB, log *zap.Logger) VideoRepository {
	return &videoRepository{db: db, log: log}
}

func (r *videoRepository) ListBySection(ctx context.Context, sectionID uuid.UUID, params ListParams) ([]*model.Video, error) {
	sortBy, offset, limit, err := params.normalize(videoSortColumns, "name", 20)
	if err != nil {
		return nil, err
	}
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var videos []*model.Video
	if err := tx.Where("section_id = ?", sectionID).
		Order(sortBy).Offset(offset).Limit(limit).
		Find(&videos).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return videos, nil
}

func (r *videoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var video model.Video
	if err := tx.First(&video, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &video, nil
}

func (r *videoRepository) Create(ctx context.Context, video *model.Video) (*model.Video, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	if err := tx.Create(video).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("created video", zap.String("video_id", video.ID.String()))
	return video, nil
}

func (r *videoRepository) Update(ctx context.Context, video *model.Video) (*model.Video, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	res := tx.Model(&model.Video{}).
		Where("id = ?", video.ID).
		Select("*").Omit("id", "created_at").
		Updates(video)
	if res.Error != nil {
		return nil, apperror.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrNotFound
	}
	return r.FindByID(ctx, video.ID)
}

func (r *videoRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	video, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Video{}, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("removed video", zap.String("video_id", id.String()))
	return video, nil
}
