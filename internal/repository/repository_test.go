package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/pkg/apperror"
)

var testDBCounter atomic.Int64

// newTestDB opens a private in-memory database with foreign keys enforced,
// mirroring the constraint behavior of the real backend.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo%d?mode=memory&cache=shared&_fk=1", testDBCounter.Add(1))
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
	return db
}

func seedUser(t *testing.T, users UserRepository, email string) *model.User {
	t.Helper()
	user, err := users.Create(context.Background(), &model.User{
		LastName:       "Doe",
		FirstName:      "Jane",
		Email:          email,
		HashedPassword: "irrelevant",
		Salt:           []byte("salt"),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func seedCourse(t *testing.T, courses CourseRepository, authorID uuid.UUID, name string) *model.Course {
	t.Helper()
	course, err := courses.Create(context.Background(), &model.Course{
		Name:        name,
		Description: "a course",
		Price:       10,
		Image:       "aGVsbG8=",
		AuthorID:    authorID,
	})
	if err != nil {
		t.Fatalf("seed course %s: %v", name, err)
	}
	return course
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	created := seedUser(t, users, "jane@example.com")
	if created.ID == uuid.Nil {
		t.Fatal("create did not assign an ID")
	}

	byID, err := users.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.Email != "jane@example.com" {
		t.Fatalf("FindByID email = %q", byID.Email)
	}

	byEmail, err := users.FindByEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatal("FindByEmail returned a different user")
	}

	byID.FirstName = "Janet"
	updated, err := users.Update(ctx, byID)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FirstName != "Janet" {
		t.Fatalf("updated first name = %q", updated.FirstName)
	}

	deleted, err := users.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != created.ID {
		t.Fatal("Delete returned a different row")
	}
	if _, err := users.FindByID(ctx, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("FindByID after delete = %v, want not found", err)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())

	seedUser(t, users, "dup@example.com")
	_, err := users.Create(context.Background(), &model.User{
		LastName:       "Doe",
		FirstName:      "John",
		Email:          "dup@example.com",
		HashedPassword: "irrelevant",
		Salt:           []byte("salt"),
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate email = %v, want conflict", err)
	}
}

func TestUserRepositoryUpdateMissingRow(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())

	ghost := &model.User{
		ID:             uuid.New(),
		LastName:       "Ghost",
		FirstName:      "Gone",
		Email:          "ghost@example.com",
		HashedPassword: "irrelevant",
		Salt:           []byte("salt"),
	}
	if _, err := users.Update(context.Background(), ghost); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("update of missing row = %v, want not found", err)
	}
}

func TestUserRepositoryUpdateIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	user := seedUser(t, users, "jane@example.com")
	user.FirstName = "Janet"

	first, err := users.Update(ctx, user)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	second, err := users.Update(ctx, user)
	if err != nil {
		t.Fatalf("identical second update: %v", err)
	}

	if second.FirstName != first.FirstName ||
		second.LastName != first.LastName ||
		second.Email != first.Email {
		t.Fatalf("repeated update changed the row: %+v vs %+v", second, first)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatal("repeated update touched created_at")
	}
}

func TestUserRepositoryListSortingAndPaging(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	for i, last := range []string{"Charlie", "Alpha", "Bravo"} {
		if _, err := users.Create(ctx, &model.User{
			LastName:       last,
			FirstName:      "User",
			Email:          fmt.Sprintf("user%d@example.com", i),
			HashedPassword: "irrelevant",
			Salt:           []byte("salt"),
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	listed, err := users.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("listed %d users, want 3", len(listed))
	}
	for i, want := range []string{"Alpha", "Bravo", "Charlie"} {
		if listed[i].LastName != want {
			t.Fatalf("position %d = %q, want %q", i, listed[i].LastName, want)
		}
	}

	page, err := users.List(ctx, ListParams{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(page) != 1 || page[0].LastName != "Bravo" {
		t.Fatalf("page = %+v, want the single middle row", page)
	}

	if _, err := users.List(ctx, ListParams{SortBy: "hashed_password"}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("disallowed sort column = %v, want invalid input", err)
	}
	if _, err := users.List(ctx, ListParams{Offset: -1}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("negative offset = %v, want invalid input", err)
	}
}

func TestRepositoriesFailFastWithoutPool(t *testing.T) {
	users := NewUserRepository(nil, zap.NewNop())
	if _, err := users.List(context.Background(), ListParams{}); !errors.Is(err, apperror.ErrNotInitialized) {
		t.Fatalf("user list without pool = %v, want not initialized", err)
	}

	courses := NewCourseRepository(nil, zap.NewNop())
	if _, err := courses.FindByID(context.Background(), uuid.New()); !errors.Is(err, apperror.ErrNotInitialized) {
		t.Fatalf("course find without pool = %v, want not initialized", err)
	}
}

func TestCourseRepositoryUniqueName(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	courses := NewCourseRepository(db, zap.NewNop())

	author := seedUser(t, users, "author@example.com")
	seedCourse(t, courses, author.ID, "Go Basics")

	_, err := courses.Create(context.Background(), &model.Course{
		Name:        "Go Basics",
		Description: "same name again",
		Price:       5,
		Image:       "aGVsbG8=",
		AuthorID:    author.ID,
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate course name = %v, want conflict", err)
	}
}

func TestEnrollmentLifecycle(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	courses := NewCourseRepository(db, zap.NewNop())
	ctx := context.Background()

	author := seedUser(t, users, "author@example.com")
	student := seedUser(t, users, "student@example.com")
	course := seedCourse(t, courses, author.ID, "Go Basics")

	enrolled, err := courses.IsMember(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("IsMember: %v", err)
	}
	if enrolled {
		t.Fatal("student reported enrolled before enrollment")
	}

	if _, err := courses.AddMember(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if _, err := courses.AddMember(ctx, student.ID, course.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("double enrollment = %v, want conflict", err)
	}

	enrolled, err = courses.IsMember(ctx, student.ID, course.ID)
	if err != nil || !enrolled {
		t.Fatalf("IsMember after AddMember = %v, %v", enrolled, err)
	}

	mine, err := courses.ListCoursesForUser(ctx, student.ID, ListParams{})
	if err != nil {
		t.Fatalf("ListCoursesForUser: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != course.ID {
		t.Fatalf("ListCoursesForUser = %+v, want the enrolled course", mine)
	}

	members, err := courses.ListMembers(ctx, course.ID, ListParams{})
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].ID != student.ID {
		t.Fatalf("ListMembers = %+v, want the student", members)
	}

	removed, err := courses.RemoveMember(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if removed.UserID != student.ID || removed.CourseID != course.ID {
		t.Fatal("RemoveMember returned the wrong pair")
	}
	if _, err := courses.RemoveMember(ctx, student.ID, course.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second RemoveMember = %v, want not found", err)
	}
}

func TestReviewOnePerCourseAndAuthor(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	courses := NewCourseRepository(db, zap.NewNop())
	reviews := NewReviewRepository(db, zap.NewNop())
	ctx := context.Background()

	author := seedUser(t, users, "author@example.com")
	student := seedUser(t, users, "student@example.com")
	course := seedCourse(t, courses, author.ID, "Go Basics")

	reviewed, err := reviews.HasUserReviewed(ctx, student.ID, course.ID)
	if err != nil || reviewed {
		t.Fatalf("HasUserReviewed before create = %v, %v", reviewed, err)
	}

	if _, err := reviews.Create(ctx, &model.Review{
		CourseID: course.ID,
		AuthorID: student.ID,
		Rating:   5,
		Comment:  "great",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reviewed, err = reviews.HasUserReviewed(ctx, student.ID, course.ID)
	if err != nil || !reviewed {
		t.Fatalf("HasUserReviewed after create = %v, %v", reviewed, err)
	}

	_, err = reviews.Create(ctx, &model.Review{
		CourseID: course.ID,
		AuthorID: student.ID,
		Rating:   1,
		Comment:  "changed my mind",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second review by same author = %v, want conflict", err)
	}
}

func TestContentChainAndCascade(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	courses := NewCourseRepository(db, zap.NewNop())
	sections := NewSectionRepository(db, zap.NewNop())
	videos := NewVideoRepository(db, zap.NewNop())
	attachments := NewAttachmentRepository(db, zap.NewNop())
	feedback := NewFeedbackRepository(db, zap.NewNop())
	reviews := NewReviewRepository(db, zap.NewNop())
	ctx := context.Background()

	author := seedUser(t, users, "author@example.com")
	student := seedUser(t, users, "student@example.com")
	course := seedCourse(t, courses, author.ID, "Go Basics")

	if _, err := courses.AddMember(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("enroll student: %v", err)
	}
	review, err := reviews.Create(ctx, &model.Review{
		CourseID: course.ID,
		AuthorID: student.ID,
		Rating:   4,
		Comment:  "solid",
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	section, err := sections.Create(ctx, &model.Section{Name: "Intro", CourseID: course.ID})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	video, err := videos.Create(ctx, &model.Video{
		Name:        "Lesson 1",
		SectionID:   section.ID,
		ContentHash: "hash-1",
		Duration:    5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	attachment, err := attachments.Create(ctx, &model.Attachment{
		FileName:    "slides.pdf",
		ContentHash: "hash-2",
		VideoID:     video.ID,
		FileSize:    1024,
	})
	if err != nil {
		t.Fatalf("create attachment: %v", err)
	}
	note, err := feedback.Create(ctx, &model.VideoFeedback{
		VideoID:  video.ID,
		AuthorID: author.ID,
		Comment:  "audio is quiet",
	})
	if err != nil {
		t.Fatalf("create feedback: %v", err)
	}

	if _, err := videos.Create(ctx, &model.Video{
		Name:        "Lesson 1 again",
		SectionID:   section.ID,
		ContentHash: "hash-1",
		Duration:    time.Minute,
	}); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate content hash = %v, want conflict", err)
	}

	if _, err := courses.Delete(ctx, course.ID); err != nil {
		t.Fatalf("delete course: %v", err)
	}

	if _, err := sections.FindByID(ctx, section.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("section survived course deletion: %v", err)
	}
	if _, err := videos.FindByID(ctx, video.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("video survived course deletion: %v", err)
	}
	if _, err := attachments.FindByID(ctx, attachment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("attachment survived course deletion: %v", err)
	}
	if _, err := feedback.FindByID(ctx, note.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("feedback survived course deletion: %v", err)
	}
	if _, err := reviews.FindByID(ctx, review.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("review survived course deletion: %v", err)
	}
	enrolled, err := courses.IsMember(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("IsMember after course deletion: %v", err)
	}
	if enrolled {
		t.Fatal("enrollment survived course deletion")
	}
}

func TestVideoListDefaultsToNameOrder(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	courses := NewCourseRepository(db, zap.NewNop())
	sections := NewSectionRepository(db, zap.NewNop())
	videos := NewVideoRepository(db, zap.NewNop())
	ctx := context.Background()

	author := seedUser(t, users, "author@example.com")
	course := seedCourse(t, courses, author.ID, "Go Basics")
	section, err := sections.Create(ctx, &model.Section{Name: "Intro", CourseID: course.ID})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}

	for i, name := range []string{"b lesson", "a lesson", "c lesson"} {
		if _, err := videos.Create(ctx, &model.Video{
			Name:        name,
			SectionID:   section.ID,
			ContentHash: fmt.Sprintf("hash-%d", i),
			Duration:    time.Minute,
		}); err != nil {
			t.Fatalf("create video %s: %v", name, err)
		}
	}

	listed, err := videos.ListBySection(ctx, section.ID, ListParams{})
	if err != nil {
		t.Fatalf("ListBySection: %v", err)
	}
	for i, want := range []string{"a lesson", "b lesson", "c lesson"} {
		if listed[i].Name != want {
			t.Fatalf("position %d = %q, want %q", i, listed[i].Name, want)
		}
	}
}
