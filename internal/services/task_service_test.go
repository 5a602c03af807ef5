package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/altius-edu/portal-service/internal/events"
	"github.com/altius-edu/portal-service/internal/models"
)

func newTaskService(fx *testFixture) TaskService {
	return NewTaskService(fx.repo, fx.publisher, fx.logger, fx.validator)
}

func seedSubject(fx *testFixture, id, teacherID string) *models.Subject {
	subject := &models.Subject{ID: id, Name: "Matematicas", TeacherID: teacherID}
	fx.repo.subjects.byID[id] = subject
	return subject
}

func teacher(id string) *models.User {
	return &models.User{ID: id, Role: models.RoleTeacher}
}

func student(id string) *models.User {
	return &models.User{ID: id, Role: models.RoleStudent}
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	service := newTaskService(fx)
	seedSubject(fx, "s1", "t1")

	due := time.Now().Add(48 * time.Hour)
	req := &CreateTaskRequest{
		Title:     "Quiz fracciones",
		Type:      models.TaskQuiz,
		SubjectID: "s1",
		DueDate:   &due,
		Questions: []TaskQuestionRequest{
			{Type: models.QuestionMultipleChoice, Question: "1/2 + 1/2?", Options: []string{"1", "2"}, CorrectAnswer: "1", Points: 10},
			{Type: models.QuestionTrueFalse, Question: "1/3 > 1/2?", CorrectAnswer: "false", Points: 5},
		},
	}

	task, err := service.Create(ctx, req, teacher("t1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.TotalPoints != 15 {
		t.Errorf("Expected total points summed from questions, got %d", task.TotalPoints)
	}
	if task.TeacherID != "t1" {
		t.Errorf("Expected teacher from subject, got %s", task.TeacherID)
	}

	t.Run("another teacher cannot create on the subject", func(t *testing.T) {
		_, err := service.Create(ctx, req, teacher("t2"))
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("students cannot create tasks", func(t *testing.T) {
		_, err := service.Create(ctx, req, student("a1"))
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})
}

func TestTaskService_StudentView(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	service := newTaskService(fx)
	seedSubject(fx, "s1", "t1")

	req := &CreateTaskRequest{
		Title:     "Quiz capitales",
		Type:      models.TaskQuiz,
		SubjectID: "s1",
		Questions: []TaskQuestionRequest{
			{Type: models.QuestionFillBlank, Question: "Capital de Peru?", CorrectAnswer: "Lima", Points: 10},
		},
	}
	task, err := service.Create(ctx, req, teacher("t1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resp, err := service.GetByID(ctx, task.ID, student("a1"))
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	var questions []models.TaskQuestion
	if err := json.Unmarshal(resp.Questions, &questions); err != nil {
		t.Fatalf("failed to decode questions: %v", err)
	}
	for _, q := range questions {
		if q.CorrectAnswer != "" {
			t.Errorf("Answer key leaked to student view: %q", q.CorrectAnswer)
		}
	}
	if !resp.CanSubmit {
		t.Error("Expected student to be able to submit an active task")
	}

	// The stored task keeps its key.
	stored, _ := fx.repo.tasks.GetByID(ctx, task.ID)
	var storedQuestions []models.TaskQuestion
	if err := json.Unmarshal(stored.Questions, &storedQuestions); err != nil {
		t.Fatalf("failed to decode stored questions: %v", err)
	}
	if storedQuestions[0].CorrectAnswer != "Lima" {
		t.Error("Stored answer key was mutated by the student view")
	}

	// After submitting, the same view flips to has-submitted.
	_, err = service.Submit(ctx, &CreateSubmissionRequest{
		TaskID: task.ID,
		Answers: []map[string]any{
			{"question_id": storedQuestions[0].ID, "answer": "Lima"},
		},
	}, student("a1"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	resp, err = service.GetByID(ctx, task.ID, student("a1"))
	if err != nil {
		t.Fatalf("GetByID after submit failed: %v", err)
	}
	if !resp.HasSubmitted {
		t.Error("Expected HasSubmitted after a submission")
	}
	if resp.CanSubmit {
		t.Error("Expected CanSubmit to be false after a submission")
	}
}

func TestTaskService_Submit(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, due *time.Time) (*testFixture, TaskService, *models.Task) {
		fx := newFixture(t)
		service := newTaskService(fx)
		seedSubject(fx, "s1", "t1")

		req := &CreateTaskRequest{
			Title:     "Quiz",
			Type:      models.TaskQuiz,
			SubjectID: "s1",
			DueDate:   due,
			Questions: []TaskQuestionRequest{
				{Type: models.QuestionFillBlank, Question: "2+2?", CorrectAnswer: "4", Points: 10},
				{Type: models.QuestionFillBlank, Question: "3+3?", CorrectAnswer: "6", Points: 10},
			},
		}
		task, err := service.Create(ctx, req, teacher("t1"))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		return fx, service, task
	}

	questionIDs := func(t *testing.T, task *models.Task) []string {
		var questions []models.TaskQuestion
		if err := json.Unmarshal(task.Questions, &questions); err != nil {
			t.Fatalf("failed to decode questions: %v", err)
		}
		ids := make([]string, len(questions))
		for i, q := range questions {
			ids[i] = q.ID
		}
		return ids
	}

	t.Run("auto-grades a quiz", func(t *testing.T) {
		fx, service, task := setup(t, nil)
		ids := questionIDs(t, task)

		submission, err := service.Submit(ctx, &CreateSubmissionRequest{
			TaskID: task.ID,
			Answers: []map[string]any{
				{"question_id": ids[0], "answer": "4"},
				{"question_id": ids[1], "answer": "7"},
			},
		}, student("a1"))
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if submission.Status != models.SubmissionGraded {
			t.Errorf("Expected graded status, got %s", submission.Status)
		}
		if submission.Grade == nil || *submission.Grade != 10 {
			t.Errorf("Expected grade 10 of 20, got %v", submission.Grade)
		}

		published := fx.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TaskSubmitted {
			t.Errorf("Expected one task.submitted event, got %v", published)
		}
	})

	t.Run("marks late past the due date", func(t *testing.T) {
		_, service, task := setup(t, nil)

		// Creation rejects past due dates; age the stored task directly.
		past := time.Now().Add(-time.Hour)
		task.DueDate = &past
		task.Type = models.TaskFileUpload
		task.Questions = nil

		submission, err := service.Submit(ctx, &CreateSubmissionRequest{TaskID: task.ID}, student("a1"))
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if submission.Status != models.SubmissionLate {
			t.Errorf("Expected late status, got %s", submission.Status)
		}
	})

	t.Run("rejects a second submission", func(t *testing.T) {
		_, service, task := setup(t, nil)
		ids := questionIDs(t, task)
		answers := []map[string]any{{"question_id": ids[0], "answer": "4"}}

		if _, err := service.Submit(ctx, &CreateSubmissionRequest{TaskID: task.ID, Answers: answers}, student("a1")); err != nil {
			t.Fatalf("first Submit failed: %v", err)
		}
		_, err := service.Submit(ctx, &CreateSubmissionRequest{TaskID: task.ID, Answers: answers}, student("a1"))
		if !errors.Is(err, ErrAlreadySubmitted) {
			t.Errorf("Expected ErrAlreadySubmitted, got %v", err)
		}
	})

	t.Run("rejects an inactive task", func(t *testing.T) {
		_, service, task := setup(t, nil)
		task.IsActive = false

		_, err := service.Submit(ctx, &CreateSubmissionRequest{TaskID: task.ID}, student("a1"))
		if !errors.Is(err, ErrTaskNotActive) {
			t.Errorf("Expected ErrTaskNotActive, got %v", err)
		}
	})
}

func TestTaskService_GradeSubmission(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	service := newTaskService(fx)
	seedSubject(fx, "s1", "t1")

	task, err := service.Create(ctx, &CreateTaskRequest{
		Title:     "Ensayo",
		Type:      models.TaskFileUpload,
		SubjectID: "s1",
	}, teacher("t1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	submission, err := service.Submit(ctx, &CreateSubmissionRequest{TaskID: task.ID}, student("a1"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if submission.Status != models.SubmissionPending {
		t.Fatalf("Expected pending file-upload submission, got %s", submission.Status)
	}

	feedback := "Buen trabajo"
	graded, err := service.GradeSubmission(ctx, submission.ID, &GradeSubmissionRequest{Grade: 85, Feedback: &feedback}, teacher("t1"))
	if err != nil {
		t.Fatalf("GradeSubmission failed: %v", err)
	}
	if graded.Status != models.SubmissionGraded || graded.Grade == nil || *graded.Grade != 85 {
		t.Errorf("Unexpected graded submission: %+v", graded)
	}

	t.Run("another teacher cannot grade", func(t *testing.T) {
		_, err := service.GradeSubmission(ctx, submission.ID, &GradeSubmissionRequest{Grade: 50}, teacher("t2"))
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})
}
