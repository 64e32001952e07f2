package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/pkg/apperror"
)

var attachmentSortColumns = map[string]bool{
	"file_name":  true,
	"file_size":  true,
	"created_at": true,
}

type AttachmentRepository interface {
	ListByVideo(ctx context.Context, videoID uuid.UUID, params ListParams) ([]*model.Attachment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
	Create(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error)
	Update(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
}

type attachmentRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAttachmentRepository(db *gorm.DB, log *zap.Logger) AttachmentRepository {
	return &attachmentRepository{db: db, log: log}
}

func (r *attachmentRepository) ListByVideo(ctx context.Context, videoID uuid.UUID, params ListParams) ([]*model.Attachment, error) {
	sortBy, offset, limit, err := params.normalize(attachmentSortColumns, "file_name", 20)
	if err != nil {
		return nil, err
	}
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var attachments []*model.Attachment
	if err := tx.Where("video_id = ?", videoID).
		Order(sortBy).Offset(offset).Limit(limit).
		Find(&attachments).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return attachments, nil
}

func (r *attachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var attachment model.Attachment
	if err := tx.First(&attachment, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &attachment, nil
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	if err := tx.Create(attachment).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("created attachment", zap.String("attachment_id", attachment.ID.String()))
	return attachment, nil
}

func (r *attachmentRepository) Update(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	res := tx.Model(&model.Attachment{}).
		Where("id = ?", attachment.ID).
		Select("*").Omit("id", "created_at").
		Updates(attachment)
	if res.Error != nil {
		return nil, apperror.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrNotFound
	}
	return r.FindByID(ctx, attachment.ID)
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	attachment, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Attachment{}, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("removed attachment", zap.String("attachment_id", id.String()))
	return attachment, nil
}
