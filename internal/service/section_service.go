package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
)

type CreateSectionInput struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type UpdateSectionInput struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
}

type SectionService interface {
	ListByCourse(ctx context.Context, requesterID, courseID uuid.UUID, params repository.ListParams) ([]*model.Section, error)
	Get(ctx context.Context, requesterID, id uuid.UUID) (*model.Section, error)
	Create(ctx context.Context, requesterID, courseID uuid.UUID, input CreateSectionInput) (*model.Section, error)
	Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateSectionInput) (*model.Section, error)
	Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Section, error)
}

type sectionService struct {
	sections repository.SectionRepository
	courses  repository.CourseRepository
	log      *zap.Logger
}

func NewSectionService(sections repository.SectionRepository, courses repository.CourseRepository, log *zap.Logger) SectionService {
	return &sectionService{sections: sections, courses: courses, log: log}
}

func (s *sectionService) ListByCourse(ctx context.Context, requesterID, courseID uuid.UUID, params repository.ListParams) ([]*model.Section, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseAccess(ctx, s.courses, requesterID, course); err != nil {
		return nil, err
	}
	return s.sections.ListByCourse(ctx, courseID, params)
}

func (s *sectionService) Get(ctx context.Context, requesterID, id uuid.UUID) (*model.Section, error) {
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := courseOfSection(ctx, s.courses, section)
	if err != nil {
		return nil, err
	}
	if err := requireCourseAccess(ctx, s.courses, requesterID, course); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *sectionService) Create(ctx context.Context, requesterID, courseID uuid.UUID, input CreateSectionInput) (*model.Section, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	section := &model.Section{
		Name:     input.Name,
		CourseID: course.ID,
	}
	return s.sections.Create(ctx, section)
}

func (s *sectionService) Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateSectionInput) (*model.Section, error) {
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := courseOfSection(ctx, s.courses, section)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		section.Name = *input.Name
	}

	return s.sections.Update(ctx, section)
}

func (s *sectionService) Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Section, error) {
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := courseOfSection(ctx, s.courses, section)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	deleted, err := s.sections.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("deleted section", zap.String("section_id", id.String()))
	return deleted, nil
}
