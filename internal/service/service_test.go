package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/storage"
)

var testDBCounter atomic.Int64

// testEnv wires every repository and service against a private in-memory
// database and a temp-dir file store.
type testEnv struct {
	users    repository.UserRepository
	courses  repository.CourseRepository
	reviews  repository.ReviewRepository
	sections repository.SectionRepository
	videos   repository.VideoRepository
	files    repository.AttachmentRepository
	notes    repository.FeedbackRepository

	store storage.FileStore

	auth       AuthService
	user       UserService
	course     CourseService
	review     ReviewService
	section    SectionService
	video      VideoService
	attachment AttachmentService
	feedback   FeedbackService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared&_fk=1", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.Review{},
		&model.Section{},
		&model.Video{},
		&model.Attachment{},
		&model.VideoFeedback{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("create file store: %v", err)
	}

	log := zap.NewNop()
	env := &testEnv{
		users:    repository.NewUserRepository(db, log),
		courses:  repository.NewCourseRepository(db, log),
		reviews:  repository.NewReviewRepository(db, log),
		sections: repository.NewSectionRepository(db, log),
		videos:   repository.NewVideoRepository(db, log),
		files:    repository.NewAttachmentRepository(db, log),
		notes:    repository.NewFeedbackRepository(db, log),
		store:    store,
	}

	env.auth = NewAuthService(env.users, nil, "test-pepper", RateLimits{}, log)
	env.user = NewUserService(env.users, env.courses, "test-pepper", log)
	env.course = NewCourseService(env.courses, 1, log)
	env.review = NewReviewService(env.reviews, env.courses, log)
	env.section = NewSectionService(env.sections, env.courses, log)
	env.video = NewVideoService(env.videos, env.sections, env.courses, store, log)
	env.attachment = NewAttachmentService(env.files, env.videos, env.sections, env.courses, store, log)
	env.feedback = NewFeedbackService(env.notes, env.videos, env.sections, env.courses, log)
	return env
}

func (e *testEnv) registerUser(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		LastName:  "Doe",
		FirstName: "Jane",
		Email:     email,
		Password:  "long-enough-password",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func (e *testEnv) createCourse(t *testing.T, authorID uuid.UUID, name string) *model.Course {
	t.Helper()
	course, err := e.course.Create(context.Background(), authorID, CreateCourseInput{
		Name:        name,
		Description: "a course",
		Price:       10,
		Image:       "aGVsbG8=",
	})
	if err != nil {
		t.Fatalf("create course %s: %v", name, err)
	}
	return course
}

func (e *testEnv) enroll(t *testing.T, userID, courseID uuid.UUID) {
	t.Helper()
	if _, err := e.course.Enroll(context.Background(), userID, courseID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
}

func (e *testEnv) createSection(t *testing.T, authorID, courseID uuid.UUID, name string) *model.Section {
	t.Helper()
	section, err := e.section.Create(context.Background(), authorID, courseID, CreateSectionInput{Name: name})
	if err != nil {
		t.Fatalf("create section %s: %v", name, err)
	}
	return section
}

func (e *testEnv) uploadVideo(t *testing.T, authorID, sectionID uuid.UUID, name string, content []byte) *model.Video {
	t.Helper()
	video, err := e.video.Upload(context.Background(), authorID, sectionID, UploadVideoInput{
		Name:    name,
		Content: content,
	})
	if err != nil {
		t.Fatalf("upload video %s: %v", name, err)
	}
	return video
}
