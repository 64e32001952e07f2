package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/pkg/apperror"
)

func TestCourseCreateSetsAuthor(t *testing.T) {
	env := newTestEnv(t)

	author := env.registerUser(t, "author@example.com")
	course := env.createCourse(t, author.ID, "Go Basics")

	if course.AuthorID != author.ID {
		t.Fatalf("author = %s, want the requester", course.AuthorID)
	}
}

func TestCourseImageValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.registerUser(t, "author@example.com")

	_, err := env.course.Create(ctx, author.ID, CreateCourseInput{
		Name:        "Bad Image",
		Description: "a course",
		Price:       10,
		Image:       "not base64!!!",
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("non-base64 image = %v, want invalid input", err)
	}

	// The test env caps images at 1 MB.
	oversized := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xAB}, 1048577))
	_, err = env.course.Create(ctx, author.ID, CreateCourseInput{
		Name:        "Huge Image",
		Description: "a course",
		Price:       10,
		Image:       oversized,
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("oversized image = %v, want invalid input", err)
	}
}

func TestCourseMutationsAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.registerUser(t, "author@example.com")
	other := env.registerUser(t, "other@example.com")
	course := env.createCourse(t, author.ID, "Go Basics")

	if _, err := env.course.Update(ctx, other.ID, course.ID, UpdateCourseInput{
		Name: strPtr("Hijacked"),
	}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("update by non-author = %v, want forbidden", err)
	}
	if _, err := env.course.Delete(ctx, other.ID, course.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("delete by non-author = %v, want forbidden", err)
	}

	updated, err := env.course.Update(ctx, author.ID, course.ID, UpdateCourseInput{
		Name: strPtr("Go Basics, Second Edition"),
	})
	if err != nil {
		t.Fatalf("update by author: %v", err)
	}
	if updated.Name != "Go Basics, Second Edition" {
		t.Fatalf("name = %q after update", updated.Name)
	}
	if updated.Description != course.Description {
		t.Fatal("untouched field changed")
	}
}

func TestEnrollmentRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.registerUser(t, "author@example.com")
	student := env.registerUser(t, "student@example.com")
	course := env.createCourse(t, author.ID, "Go Basics")

	if _, err := env.course.Unenroll(ctx, student.ID, course.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("unenroll before enrolling = %v, want conflict", err)
	}

	enrollment, err := env.course.Enroll(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.UserID != student.ID || enrollment.CourseID != course.ID {
		t.Fatal("enrollment row carries the wrong pair")
	}

	if _, err := env.course.Enroll(ctx, student.ID, course.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("double enrollment = %v, want conflict", err)
	}

	members, err := env.course.ListMembers(ctx, course.ID, repository.ListParams{})
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].ID != student.ID {
		t.Fatalf("members = %+v, want just the student", members)
	}

	if _, err := env.course.Unenroll(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("unenroll: %v", err)
	}
}
