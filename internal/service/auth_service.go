package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/apperror"
	"github.com/bitcourse/backend/pkg/password"
)

type RegisterInput struct {
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, input LoginInput) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	rdb    *redis.Client
	pepper string
	limits RateLimits
	log    *zap.Logger
}

func NewAuthService(users repository.UserRepository, rdb *redis.Client, pepper string, limits RateLimits, log *zap.Logger) AuthService {
	return &authService{
		users:  users,
		rdb:    rdb,
		pepper: pepper,
		limits: limits,
		log:    log,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.New(http.StatusConflict, "a user with this email already exists", apperror.ErrConflict)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	salt, err := password.NewSalt()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		LastName:       input.LastName,
		FirstName:      input.FirstName,
		Email:          input.Email,
		HashedPassword: password.Hash(s.pepper, input.Password, salt),
		Salt:           salt,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info("registered user", zap.String("user_id", created.ID.String()))
	return created, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*model.User, error) {
	allowed, err := CheckAndSetRateLimit(ctx, s.rdb, input.Email, "login", s.limits.Login)
	if err != nil {
		s.log.Warn("rate limit check failed", zap.Error(err))
	} else if !allowed {
		return nil, apperror.New(http.StatusTooManyRequests, "too many login attempts", apperror.ErrForbidden)
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	if !password.Verify(s.pepper, input.Password, user.Salt, user.HashedPassword) {
		return nil, apperror.New(http.StatusForbidden, "incorrect password", apperror.ErrForbidden)
	}

	_ = ClearRateLimit(ctx, s.rdb, input.Email, "login")
	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return user, nil
}
