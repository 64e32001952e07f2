package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
)

type CreateFeedbackInput struct {
	Comment string `json:"comment" binding:"required"`
}

type UpdateFeedbackInput struct {
	Comment *string `json:"comment" binding:"omitempty,min=1"`
}

type FeedbackService interface {
	ListByVideo(ctx context.Context, requesterID, videoID uuid.UUID, params repository.ListParams) ([]*model.VideoFeedback, error)
	Get(ctx context.Context, requesterID, id uuid.UUID) (*model.VideoFeedback, error)
	Create(ctx context.Context, requesterID, videoID uuid.UUID, input CreateFeedbackInput) (*model.VideoFeedback, error)
	Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateFeedbackInput) (*model.VideoFeedback, error)
	Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.VideoFeedback, error)
}

type feedbackService struct {
	feedback repository.FeedbackRepository
	videos   repository.VideoRepository
	sections repository.SectionRepository
	courses  repository.CourseRepository
	log      *zap.Logger
}

func NewFeedbackService(
	feedback repository.FeedbackRepository,
	videos repository.VideoRepository,
	sections repository.SectionRepository,
	courses repository.CourseRepository,
	log *zap.Logger,
) FeedbackService {
	return &feedbackService{
		feedback: feedback,
		videos:   videos,
		sections: sections,
		courses:  courses,
		log:      log,
	}
}

func (s *feedbackService) ListByVideo(ctx context.Context, requesterID, videoID uuid.UUID, params repository.ListParams) ([]*model.VideoFeedback, error) {
	if err := s.requireVideoAccess(ctx, requesterID, videoID); err != nil {
		return nil, err
	}
	return s.feedback.ListByVideo(ctx, videoID, params)
}

func (s *feedbackService) Get(ctx context.Context, requesterID, id uuid.UUID) (*model.VideoFeedback, error) {
	feedback, err := s.feedback.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireVideoAccess(ctx, requesterID, feedback.VideoID); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *feedbackService) Create(ctx context.Context, requesterID, videoID uuid.UUID, input CreateFeedbackInput) (*model.VideoFeedback, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	course, err := courseOfVideo(ctx, s.sections, s.courses, video)
	if err != nil {
		return nil, err
	}
	if err := requireCourseAccess(ctx, s.courses, requesterID, course); err != nil {
		return nil, err
	}

	feedback := &model.VideoFeedback{
		VideoID:  video.ID,
		AuthorID: requesterID,
		Comment:  input.Comment,
	}
	return s.feedback.Create(ctx, feedback)
}

func (s *feedbackService) Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateFeedbackInput) (*model.VideoFeedback, error) {
	feedback, err := s.feedback.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, feedback.AuthorID); err != nil {
		return nil, err
	}

	if input.Comment != nil {
		feedback.Comment = *input.Comment
	}

	return s.feedback.Update(ctx, feedback)
}

func (s *feedbackService) Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.VideoFeedback, error) {
	feedback, err := s.feedback.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, feedback.AuthorID); err != nil {
		return nil, err
	}

	deleted, err := s.feedback.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("deleted feedback", zap.String("feedback_id", id.String()))
	return deleted, nil
}

func (s *feedbackService) requireVideoAccess(ctx context.Context, requesterID, videoID uuid.UUID) error {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return err
	}
	course, err := courseOfVideo(ctx, s.sections, s.courses, video)
	if err != nil {
		return err
	}
	return requireCourseAccess(ctx, s.courses, requesterID, course)
}
