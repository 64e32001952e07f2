package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/apperror"
)

type CreateReviewInput struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment" binding:"required"`
}

type UpdateReviewInput struct {
	Rating  *int    `json:"rating" binding:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment"`
}

type ReviewService interface {
	ListByCourse(ctx context.Context, courseID uuid.UUID, params repository.ListParams) ([]*model.Review, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Review, error)
	Create(ctx context.Context, requesterID, courseID uuid.UUID, input CreateReviewInput) (*model.Review, error)
	Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateReviewInput) (*model.Review, error)
	Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Review, error)
}

type reviewService struct {
	reviews repository.ReviewRepository
	courses repository.CourseRepository
	log     *zap.Logger
}

func NewReviewService(reviews repository.ReviewRepository, courses repository.CourseRepository, log *zap.Logger) ReviewService {
	return &reviewService{reviews: reviews, courses: courses, log: log}
}

func (s *reviewService) ListByCourse(ctx context.Context, courseID uuid.UUID, params repository.ListParams) ([]*model.Review, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.reviews.ListByCourse(ctx, courseID, params)
}

func (s *reviewService) Get(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	return s.reviews.FindByID(ctx, id)
}

func (s *reviewService) Create(ctx context.Context, requesterID, courseID uuid.UUID, input CreateReviewInput) (*model.Review, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.courses.IsMember(ctx, requesterID, course.ID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperror.ErrForbidden
	}

	reviewed, err := s.reviews.HasUserReviewed(ctx, requesterID, course.ID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, apperror.New(http.StatusConflict, "user already reviewed this course", apperror.ErrConflict)
	}

	review := &model.Review{
		CourseID: course.ID,
		AuthorID: requesterID,
		Rating:   input.Rating,
		Comment:  input.Comment,
	}
	return s.reviews.Create(ctx, review)
}

func (s *reviewService) Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateReviewInput) (*model.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, review.AuthorID); err != nil {
		return nil, err
	}

	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}

	return s.reviews.Update(ctx, review)
}

func (s *reviewService) Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, review.AuthorID); err != nil {
		return nil, err
	}

	deleted, err := s.reviews.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("deleted review", zap.String("review_id", id.String()))
	return deleted, nil
}
