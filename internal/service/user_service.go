package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/password"
)

// UpdateUserInput is the allow-list of patchable account fields. Anything
// not listed here (id, creation time, salt) cannot be touched by a caller.
type UpdateUserInput struct {
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email,max=100"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
}

type UserService interface {
	List(ctx context.Context, params repository.ListParams) ([]model.ViewableUser, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ViewableUser, error)
	Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateUserInput) (*model.ViewableUser, error)
	Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.ViewableUser, error)
	ListCourses(ctx context.Context, userID uuid.UUID, params repository.ListParams) ([]*model.Course, error)
}

type userService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
	pepper  string
	log     *zap.Logger
}

func NewUserService(users repository.UserRepository, courses repository.CourseRepository, pepper string, log *zap.Logger) UserService {
	return &userService{users: users, courses: courses, pepper: pepper, log: log}
}

func (s *userService) List(ctx context.Context, params repository.ListParams) ([]model.ViewableUser, error) {
	users, err := s.users.List(ctx, params)
	if err != nil {
		return nil, err
	}

	viewable := make([]model.ViewableUser, 0, len(users))
	for _, user := range users {
		viewable = append(viewable, user.Viewable())
	}
	return viewable, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.ViewableUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := user.Viewable()
	return &v, nil
}

func (s *userService) Update(ctx context.Context, requesterID, id uuid.UUID, input UpdateUserInput) (*model.ViewableUser, error) {
	if err := requireSelf(requesterID, id); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		// A password change gets a fresh salt as well.
		salt, err := password.NewSalt()
		if err != nil {
			return nil, err
		}
		user.Salt = salt
		user.HashedPassword = password.Hash(s.pepper, *input.Password, salt)
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	v := updated.Viewable()
	return &v, nil
}

func (s *userService) Delete(ctx context.Context, requesterID, id uuid.UUID) (*model.ViewableUser, error) {
	if err := requireSelf(requesterID, id); err != nil {
		return nil, err
	}

	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("deleted user account", zap.String("user_id", id.String()))
	v := deleted.Viewable()
	return &v, nil
}

func (s *userService) ListCourses(ctx context.Context, userID uuid.UUID, params repository.ListParams) ([]*model.Course, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.courses.ListCoursesForUser(ctx, userID, params)
}
