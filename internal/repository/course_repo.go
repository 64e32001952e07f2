package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/pkg/apperror"
)

var courseSortColumns = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
}

type CourseRepository interface {
	List(ctx context.Context, params ListParams) ([]*model.Course, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) (*model.Course, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Course, error)

	AddMember(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	RemoveMember(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	ListCoursesForUser(ctx context.Context, userID uuid.UUID, params ListParams) ([]*model.Course, error)
	ListMembers(ctx context.Context, courseID uuid.UUID, params ListParams) ([]*model.User, error)
	IsMember(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type courseRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCourseRepository(db *gorm.DB, log *zap.Logger) CourseRepository {
	return &courseRepository{db: db, log: log}
}

func (r *courseRepository) List(ctx context.Context, params ListParams) ([]*model.Course, error) {
	sortBy, offset, limit, err := params.normalize(courseSortColumns, "name", 500)
	if err != nil {
		return nil, err
	}
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var courses []*model.Course
	if err := tx.Order(sortBy).Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return courses, nil
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var course model.Course
	if err := tx.First(&course, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) (*model.Course, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	if err := tx.Create(course).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("created course", zap.String("course_id", course.ID.String()))
	return course, nil
}

func (r *courseRepository) Update(ctx context.Context, course *model.Course) (*model.Course, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	res := tx.Model(&model.Course{}).
		Where("id = ?", course.ID).
		Select("*").Omit("id", "created_at").
		Updates(course)
	if res.Error != nil {
		return nil, apperror.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrNotFound
	}
	return r.FindByID(ctx, course.ID)
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Course{}, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("removed course", zap.String("course_id", id.String()))
	return course, nil
}

func (r *courseRepository) AddMember(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	enrollment := &model.Enrollment{UserID: userID, CourseID: courseID}
	if err := tx.Create(enrollment).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("enrolled user",
		zap.String("user_id", userID.String()),
		zap.String("course_id", courseID.String()),
	)
	return enrollment, nil
}

func (r *courseRepository) RemoveMember(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var enrollment model.Enrollment
	if err := tx.First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	if err := tx.Delete(&model.Enrollment{}, "user_id = ? AND course_id = ?", userID, courseID).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	r.log.Debug("unenrolled user",
		zap.String("user_id", userID.String()),
		zap.String("course_id", courseID.String()),
	)
	return &enrollment, nil
}

func (r *courseRepository) ListCoursesForUser(ctx context.Context, userID uuid.UUID, params ListParams) ([]*model.Course, error) {
	sortBy, offset, limit, err := params.normalize(courseSortColumns, "name", 20)
	if err != nil {
		return nil, err
	}
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var courses []*model.Course
	if err := tx.
		Joins("JOIN user_courses ON user_courses.course_id = courses.id").
		Where("user_courses.user_id = ?", userID).
		Order("courses." + sortBy).Offset(offset).Limit(limit).
		Find(&courses).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return courses, nil
}

func (r *courseRepository) ListMembers(ctx context.Context, courseID uuid.UUID, params ListParams) ([]*model.User, error) {
	sortBy, offset, limit, err := params.normalize(userSortColumns, "last_name", 50)
	if err != nil {
		return nil, err
	}
	tx, err := session(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var users []*model.User
	if err := tx.Model(&model.User{}).
		Joins("JOIN user_courses ON user_courses.user_id = users.id").
		Where("user_courses.course_id = ?", courseID).
		Order("users." + sortBy).Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return users, nil
}

func (r *courseRepository) IsMember(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	tx, err := session(ctx, r.db)
	if err != nil {
		return false, err
	}

	var count int64
	if err := tx.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, apperror.FromDB(err)
	}
	return count > 0, nil
}
