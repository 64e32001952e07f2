package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/apperror"
	"github.com/bitcourse/backend/pkg/storage"
)

// UploadVideoInput carries the multipart upload. Duration comes from the
// client; probing the container is out of scope here.
type UploadVideoInput struct {
	Name     string
	Duration time.Duration
	Content  []byte
}

type UpdateVideoInput struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=256"`
	Duration *string `json:"duration"`
}

type VideoService interface {
	ListBySection(ctx context.Context, requesterID, sectionID uuid.UUID, params repository.ListParams) ([]*model.Video, error)
	Get(ctx context.Context, requesterID, id uuid.UUID) (*model.Video, error)
	Upload(ctx context.Context, requesterID, sectionID uuid.UUID, input UploadVideoInput) (*model.Video, error)
	Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateVideoInput) (*model.Video, error)
	Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Video, error)
}

type videoService struct {
	videos   repository.VideoRepository
	sections repository.SectionRepository
	courses  repository.CourseRepository
	store    storage.FileStore
	log      *zap.Logger
}

func NewVideoService(
	videos repository.VideoRepository,
	sections repository.SectionRepository,
	courses repository.CourseRepository,
	store storage.FileStore,
	log *zap.Logger,
) VideoService {
	return &videoService{
		videos:   videos,
		sections: sections,
		courses:  courses,
		store:    store,
		log:      log,
	}
}

func (s *videoService) ListBySection(ctx context.Context, requesterID, sectionID uuid.UUID, params repository.ListParams) ([]*model.Video, error) {
	section, err := s.sections.FindByID(ctx, sectionID)
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
	return s.videos.ListBySection(ctx, sectionID, params)
}

func (s *videoService) Get(ctx context.Context, requesterID, id uuid.UUID) (*model.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
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
	return video, nil
}

func (s *videoService) Upload(ctx context.Context, requesterID, sectionID uuid.UUID, input UploadVideoInput) (*model.Video, error) {
	if input.Name == "" {
		return nil, apperror.New(http.StatusBadRequest, "empty file submitted", apperror.ErrInvalidInput)
	}
	if len(input.Content) == 0 {
		return nil, apperror.New(http.StatusBadRequest, "no video uploaded", apperror.ErrInvalidInput)
	}

	section, err := s.sections.FindByID(ctx, sectionID)
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

	hash := storage.ContentHash(input.Content)
	_, existed, err := s.store.Save(storage.KindVideo, hash, input.Content)
	if err != nil {
		return nil, err
	}

	video := &model.Video{
		Name:        input.Name,
		SectionID:   section.ID,
		ContentHash: hash,
		Duration:    input.Duration,
	}
	created, err := s.videos.Create(ctx, video)
	if err != nil {
		// A duplicate content hash means this exact content already
		// exists; the freshly written copy has no owning row.
		if errors.Is(err, apperror.ErrConflict) && !existed {
			if rmErr := s.store.Remove(storage.KindVideo, hash); rmErr != nil {
				s.log.Warn("failed to discard duplicate upload", zap.Error(rmErr))
			}
		}
		return nil, err
	}

	s.log.Info("uploaded video",
		zap.String("video_id", created.ID.String()),
		zap.String("content_hash", hash),
	)
	return created, nil
}

func (s *videoService) Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateVideoInput) (*model.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := courseOfVideo(ctx, s.sections, s.courses, video)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		video.Name = *input.Name
	}
	if input.Duration != nil {
		duration, err := time.ParseDuration(*input.Duration)
		if err != nil || duration <= 0 {
			return nil, apperror.New(http.StatusBadRequest, "invalid duration", apperror.ErrInvalidInput)
		}
		video.Duration = duration
	}

	return s.videos.Update(ctx, video)
}

func (s *videoService) Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := courseOfVideo(ctx, s.sections, s.courses, video)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	deleted, err := s.videos.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	// The hash is unique per row, so the stored file has no other owner.
	if err := s.store.Remove(storage.KindVideo, deleted.ContentHash); err != nil {
		s.log.Warn("failed to remove stored video", zap.Error(err))
	}
	s.log.Info("deleted video", zap.String("video_id", id.String()))
	return deleted, nil
}
