package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/apperror"
)

// Authorization guards. Each endpoint composes these instead of repeating
// inline ownership checks.

// requireSelf allows an account operation only for the account's owner.
func requireSelf(requesterID, targetID uuid.UUID) error {
	if requesterID != targetID {
		return apperror.ErrForbidden
	}
	return nil
}

// requireAuthor allows a mutation only for the row's author.
func requireAuthor(requesterID, authorID uuid.UUID) error {
	if requesterID != authorID {
		return apperror.ErrForbidden
	}
	return nil
}

// requireCourseAccess grants content reads to the course author and to
// enrolled users.
func requireCourseAccess(ctx context.Context, courses repository.CourseRepository, requesterID uuid.UUID, course *model.Course) error {
	if course.AuthorID == requesterID {
		return nil
	}
	enrolled, err := courses.IsMember(ctx, requesterID, course.ID)
	if err != nil {
		return err
	}
	if !enrolled {
		return apperror.ErrForbidden
	}
	return nil
}

// courseOfSection walks one hop up the ownership chain.
func courseOfSection(ctx context.Context, courses repository.CourseRepository, section *model.Section) (*model.Course, error) {
	return courses.FindByID(ctx, section.CourseID)
}

// courseOfVideo walks video -> section -> course.
func courseOfVideo(ctx context.Context, sections repository.SectionRepository, courses repository.CourseRepository, video *model.Video) (*model.Course, error) {
	section, err := sections.FindByID(ctx, video.SectionID)
	if err != nil {
		return nil, err
	}
	return courseOfSection(ctx, courses, section)
}
