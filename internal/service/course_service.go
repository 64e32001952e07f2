package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/apperror"
)

type CreateCourseInput struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	// Image is the base64-encoded cover.
	Image string `json:"image" binding:"required"`
}

type UpdateCourseInput struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Image       *string  `json:"image"`
}

type CourseService interface {
	List(ctx context.Context, params repository.ListParams) ([]*model.Course, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Create(ctx context.Context, requesterID uuid.UUID, input CreateCourseInput) (*model.Course, error)
	Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateCourseInput) (*model.Course, error)
	Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Course, error)

	Enroll(ctx context.Context, requesterID, courseID uuid.UUID) (*model.Enrollment, error)
	Unenroll(ctx context.Context, requesterID, courseID uuid.UUID) (*model.Enrollment, error)
	ListMembers(ctx context.Context, courseID uuid.UUID, params repository.ListParams) ([]model.ViewableUser, error)
}

type courseService struct {
	courses        repository.CourseRepository
	maxImageSizeMB int
	log            *zap.Logger
}

func NewCourseService(courses repository.CourseRepository, maxImageSizeMB int, log *zap.Logger) CourseService {
	return &courseService{courses: courses, maxImageSizeMB: maxImageSizeMB, log: log}
}

func (s *courseService) List(ctx context.Context, params repository.ListParams) ([]*model.Course, error) {
	return s.courses.List(ctx, params)
}

func (s *courseService) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return s.courses.FindByID(ctx, id)
}

func (s *courseService) Create(ctx context.Context, requesterID uuid.UUID, input CreateCourseInput) (*model.Course, error) {
	if err := s.validateImage(input.Image); err != nil {
		return nil, err
	}

	course := &model.Course{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		AuthorID:    requesterID,
	}
	return s.courses.Create(ctx, course)
}

func (s *courseService) Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateCourseInput) (*model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		course.Name = *input.Name
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.Price != nil {
		course.Price = *input.Price
	}
	if input.Image != nil {
		if err := s.validateImage(*input.Image); err != nil {
			return nil, err
		}
		course.Image = *input.Image
	}

	return s.courses.Update(ctx, course)
}

func (s *courseService) Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	deleted, err := s.courses.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("deleted course", zap.String("course_id", id.String()))
	return deleted, nil
}

func (s *courseService) Enroll(ctx context.Context, requesterID, courseID uuid.UUID) (*model.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.courses.IsMember(ctx, requesterID, course.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apperror.New(http.StatusConflict, "user already enrolled in this course", apperror.ErrConflict)
	}

	return s.courses.AddMember(ctx, requesterID, course.ID)
}

func (s *courseService) Unenroll(ctx context.Context, requesterID, courseID uuid.UUID) (*model.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.courses.IsMember(ctx, requesterID, course.ID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperror.New(http.StatusConflict, "user is not enrolled in this course", apperror.ErrConflict)
	}

	return s.courses.RemoveMember(ctx, requesterID, course.ID)
}

func (s *courseService) ListMembers(ctx context.Context, courseID uuid.UUID, params repository.ListParams) ([]model.ViewableUser, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, err
	}

	users, err := s.courses.ListMembers(ctx, courseID, params)
	if err != nil {
		return nil, err
	}

	viewable := make([]model.ViewableUser, 0, len(users))
	for _, user := range users {
		viewable = append(viewable, user.Viewable())
	}
	return viewable, nil
}

// validateImage rejects payloads that are not base64 or exceed the
// configured size. Format probing is left to the client.
func (s *courseService) validateImage(encoded string) error {
	if encoded == "" {
		return apperror.New(http.StatusBadRequest, "course image must not be empty", apperror.ErrInvalidInput)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return apperror.New(http.StatusBadRequest, "course image must be base64 encoded", apperror.ErrInvalidInput)
	}
	if len(raw) > s.maxImageSizeMB*1048576 {
		return apperror.New(http.StatusBadRequest,
			fmt.Sprintf("maximum image size is %d MB", s.maxImageSizeMB), apperror.ErrInvalidInput)
	}
	return nil
}
