package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/pkg/apperror"
)

var sectionSortColumns = map[string]bool{
	"created_at": true,
	"name":       true,
}

type SectionRepository interface {
	ListByCourse(ctx context.Context, courseID uuid.UUID, params ListParams) ([]*model.Section, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Section, error)
	Create(ctx context.Context, section *model.Section) (*model.Section, error)
	Update(ctx context.Context, section *model.Section) (*model.Section, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Section, error)
}

type sectionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSectionRepository(db *gorm.DB, log *zap.Logger) SectionRepository {
	return &sectionRepository{db: db, log: log}
}

func (r *sectionRepository) ListByCourse(ctx context.Context, courseID uuid.UUID, params ListParams) ([]*model.Section, error) {
	sortBy, offset, limit, err := params.normalize(sectionSortColumns, "created_at", 20)
	if err != nil {
		return nil, err
	}
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var sections []*model.Section
	if err := tx.Where("course_id = ?", courseID).
		Order(sortBy).Offset(offset).Limit(limit).
		Find(&sections).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return sections, nil
}

func (r *sectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var section model.Section
	if err := tx.First(&section, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &section, nil
}

func (r *sectionRepository) Create(ctx context.Context, section *model.Section) (*model.Section, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	if err := tx.Create(section).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("created section", zap.String("section_id", section.ID.String()))
	return section, nil
}

func (r *sectionRepository) Update(ctx context.Context, section *model.Section) (*model.Section, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	res := tx.Model(&model.Section{}).
		Where("id = ?", section.ID).
		Select("*").Omit("id", "created_at").
		Updates(section)
	if res.Error != nil {
		return nil, apperror.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrNotFound
	}
	return r.FindByID(ctx, section.ID)
}

func (r *sectionRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	section, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Section{}, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("removed section", zap.String("section_id", id.String()))
	return section, nil
}
