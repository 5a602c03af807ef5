package services

import (
	"context"
	"testing"

	"github.com/altius-edu/portal-service/internal/events"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

func newGradeService(fx *testFixture) GradeService {
	return NewGradeService(fx.repo, fx.publisher, fx.logger, fx.validator)
}

func TestGradeService_Create(t *testing.T) {
	ctx := context.Background()

	req := &CreateGradeRequest{
		StudentID: "a1",
		SubjectID: "s1",
		Value:     8,
		MaxValue:  10,
		Period:    "2026-1",
	}

	t.Run("records a grade and publishes an event", func(t *testing.T) {
		fx := newFixture(t)
		service := newGradeService(fx)
		seedSubject(fx, "s1", "t1")

		grade, err := service.Create(ctx, req, teacher("t1"))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if grade.RecordedBy != "t1" {
			t.Errorf("Expected recorded_by t1, got %s", grade.RecordedBy)
		}
		if grade.Type != models.GradeAssignment {
			t.Errorf("Expected default assignment type, got %s", grade.Type)
		}

		published := fx.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.GradeRecorded {
			t.Fatalf("Expected one grade.recorded event, got %v", published)
		}
	})

	t.Run("rejects value above max_value", func(t *testing.T) {
		fx := newFixture(t)
		service := newGradeService(fx)
		seedSubject(fx, "s1", "t1")

		bad := *req
		bad.Value = 12
		if _, err := service.Create(ctx, &bad, teacher("t1")); err == nil {
			t.Error("Expected validation error for value above max_value")
		}
	})

	t.Run("another teacher cannot grade the subject", func(t *testing.T) {
		fx := newFixture(t)
		service := newGradeService(fx)
		seedSubject(fx, "s1", "t1")

		if _, err := service.Create(ctx, req, teacher("t2")); !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("students cannot record grades", func(t *testing.T) {
		fx := newFixture(t)
		service := newGradeService(fx)
		seedSubject(fx, "s1", "t1")

		if _, err := service.Create(ctx, req, student("a1")); !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})
}

func TestGradeService_List(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	service := newGradeService(fx)
	seedSubject(fx, "s1", "t1")

	requests := []*CreateGradeRequest{
		{StudentID: "a1", SubjectID: "s1", Value: 8, MaxValue: 10, Period: "2026-1"},
		{StudentID: "a1", SubjectID: "s1", Value: 6, MaxValue: 10, Period: "2026-1"},
		{StudentID: "a2", SubjectID: "s1", Value: 9, MaxValue: 10, Period: "2026-1"},
	}
	for _, r := range requests {
		if _, err := service.Create(ctx, r, teacher("t1")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	t.Run("students are scoped to their own grades", func(t *testing.T) {
		resp, err := service.List(ctx, repositories.GradeFilters{}, student("a1"))
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("Expected 2 grades for a1, got %d", resp.Total)
		}
		for _, g := range resp.Grades {
			if g.StudentID != "a1" {
				t.Errorf("Another student's grade leaked: %s", g.StudentID)
			}
		}
		if resp.Average == nil || *resp.Average != 70 {
			t.Errorf("Expected average 70, got %v", resp.Average)
		}
	})

	t.Run("a student cannot read another student's record", func(t *testing.T) {
		if _, err := service.GetByStudent(ctx, "a2", student("a1")); !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("teachers see the full subject", func(t *testing.T) {
		resp, err := service.List(ctx, repositories.GradeFilters{}, teacher("t1"))
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if resp.Total != 3 {
			t.Errorf("Expected 3 grades, got %d", resp.Total)
		}
	})
}
