package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/apperror"
	"github.com/bitcourse/backend/pkg/storage"
)

type UploadAttachmentInput struct {
	FileName string
	Content  []byte
}

type UpdateAttachmentInput struct {
	FileName *string `json:"file_name" binding:"omitempty,min=1,max=255"`
}

type AttachmentService interface {
	ListByVideo(ctx context.Context, requesterID, videoID uuid.UUID, params repository.ListParams) ([]*model.Attachment, error)
	Get(ctx context.Context, requesterID, id uuid.UUID) (*model.Attachment, error)
	Upload(ctx context.Context, requesterID, videoID uuid.UUID, input UploadAttachmentInput) (*model.Attachment, error)
	Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateAttachmentInput) (*model.Attachment, error)
	Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Attachment, error)
}

type attachmentService struct {
	attachments repository.AttachmentRepository
	videos      repository.VideoRepository
	sections    repository.SectionRepository
	courses     repository.CourseRepository
	store       storage.FileStore
	log         *zap.Logger
}

func NewAttachmentService(
	attachments repository.AttachmentRepository,
	videos repository.VideoRepository,
	sections repository.SectionRepository,
	courses repository.CourseRepository,
	store storage.FileStore,
	log *zap.Logger,
) AttachmentService {
	return &attachmentService{
		attachments: attachments,
		videos:      videos,
		sections:    sections,
		courses:     courses,
		store:       store,
		log:         log,
	}
}

func (s *attachmentService) ListByVideo(ctx context.Context, requesterID, videoID uuid.UUID, params repository.ListParams) ([]*model.Attachment, error) {
	course, err := s.courseOf(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseAccess(ctx, s.courses, requesterID, course); err != nil {
		return nil, err
	}
	return s.attachments.ListByVideo(ctx, videoID, params)
}

func (s *attachmentService) Get(ctx context.Context, requesterID, id uuid.UUID) (*model.Attachment, error) {
	attachment, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.courseOf(ctx, attachment.VideoID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseAccess(ctx, s.courses, requesterID, course); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *attachmentService) Upload(ctx context.Context, requesterID, videoID uuid.UUID, input UploadAttachmentInput) (*model.Attachment, error) {
	if input.FileName == "" {
		return nil, apperror.New(http.StatusBadRequest, "empty file submitted", apperror.ErrInvalidInput)
	}
	if len(input.Content) == 0 {
		return nil, apperror.New(http.StatusBadRequest, "no file uploaded", apperror.ErrInvalidInput)
	}

	course, err := s.courseOf(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	hash := storage.ContentHash(input.Content)
	_, existed, err := s.store.Save(storage.KindAttachment, hash, input.Content)
	if err != nil {
		return nil, err
	}

	attachment := &model.Attachment{
		FileName:    input.FileName,
		ContentHash: hash,
		VideoID:     videoID,
		FileSize:    int64(len(input.Content)),
	}
	created, err := s.attachments.Create(ctx, attachment)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) && !existed {
			if rmErr := s.store.Remove(storage.KindAttachment, hash); rmErr != nil {
				s.log.Warn("failed to discard duplicate upload", zap.Error(rmErr))
			}
		}
		return nil, err
	}

	s.log.Info("uploaded attachment",
		zap.String("attachment_id", created.ID.String()),
		zap.String("content_hash", hash),
	)
	return created, nil
}

func (s *attachmentService) Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateAttachmentInput) (*model.Attachment, error) {
	attachment, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.courseOf(ctx, attachment.VideoID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	if input.FileName != nil {
		attachment.FileName = *input.FileName
	}

	return s.attachments.Update(ctx, attachment)
}

func (s *attachmentService) Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.Attachment, error) {
	attachment, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.courseOf(ctx, attachment.VideoID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(requesterID, course.AuthorID); err != nil {
		return nil, err
	}

	deleted, err := s.attachments.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Remove(storage.KindAttachment, deleted.ContentHash); err != nil {
		s.log.Warn("failed to remove stored attachment", zap.Error(err))
	}
	s.log.Info("deleted attachment", zap.String("attachment_id", id.String()))
	return deleted, nil
}

// courseOf resolves attachment -> video -> section -> course.
func (s *attachmentService) courseOf(ctx context.Context, videoID uuid.UUID) (*model.Course, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return courseOfVideo(ctx, s.sections, s.courses, video)
}
