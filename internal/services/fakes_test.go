package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"golang.org/x/oauth2"

	"github.com/altius-edu/portal-service/internal/events"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/session"
	"github.com/altius-edu/portal-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeIdentity stands in for the identity provider: any code exchanges for a
// fixed token whose claims carry the configured user.
type fakeIdentity struct {
	user      casdoorsdk.User
	token     string
	exchanges int
}

func (f *fakeIdentity) GetOAuthToken(code, state string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("empty code")
	}
	f.exchanges++
	return &oauth2.Token{AccessToken: f.token}, nil
}

func (f *fakeIdentity) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if token != f.token {
		return nil, fmt.Errorf("unknown token")
	}
	return &casdoorsdk.Claims{User: f.user}, nil
}

// fakeRepo is an in-memory Repository; only the pieces the services under
// test touch are implemented.
type fakeRepo struct {
	users       *fakeUserRepo
	subjects    *fakeSubjectRepo
	tasks       *fakeTaskRepo
	grades      *fakeGradeRepo
	institution repositories.InstitutionRepository
	dashboard   repositories.DashboardRepository
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    &fakeUserRepo{invalidated: map[string]int{}},
		subjects: &fakeSubjectRepo{byID: map[string]*models.Subject{}},
		tasks: &fakeTaskRepo{
			byID:        map[string]*models.Task{},
			submissions: map[string]*models.Submission{},
		},
		grades: &fakeGradeRepo{byID: map[string]*models.Grade{}},
	}
}

func (r *fakeRepo) User() repositories.UserRepository               { return r.users }
func (r *fakeRepo) Subject() repositories.SubjectRepository         { return r.subjects }
func (r *fakeRepo) Task() repositories.TaskRepository               { return r.tasks }
func (r *fakeRepo) Grade() repositories.GradeRepository             { return r.grades }
func (r *fakeRepo) Institution() repositories.InstitutionRepository { return r.institution }
func (r *fakeRepo) Dashboard() repositories.DashboardRepository     { return r.dashboard }
func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}
func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

type fakeUserRepo struct {
	invalidated map[string]int
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}
func (f *fakeUserRepo) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}
func (f *fakeUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) { return false, nil }
func (f *fakeUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	return false, nil
}
func (f *fakeUserRepo) InvalidateCache(ctx context.Context, id string) error {
	f.invalidated[id]++
	return nil
}

type fakeSubjectRepo struct {
	byID map[string]*models.Subject
}

func (f *fakeSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	f.byID[subject.ID] = subject
	return nil
}
func (f *fakeSubjectRepo) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return subject, nil
}
func (f *fakeSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	f.byID[subject.ID] = subject
	return nil
}
func (f *fakeSubjectRepo) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}
func (f *fakeSubjectRepo) List(ctx context.Context, filters repositories.SubjectFilters) ([]*models.Subject, int64, error) {
	var out []*models.Subject
	for _, s := range f.byID {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}
func (f *fakeSubjectRepo) GetByTeacher(ctx context.Context, teacherID string) ([]*models.Subject, error) {
	var out []*models.Subject
	for _, s := range f.byID {
		if s.TeacherID == teacherID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeTaskRepo struct {
	byID        map[string]*models.Task
	submissions map[string]*models.Submission
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	f.byID[task.ID] = task
	return nil
}
func (f *fakeTaskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	task, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return task, nil
}
func (f *fakeTaskRepo) GetByIDWithSubmissions(ctx context.Context, id string) (*models.Task, error) {
	return f.GetByID(ctx, id)
}
func (f *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	f.byID[task.ID] = task
	return nil
}
func (f *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}
func (f *fakeTaskRepo) List(ctx context.Context, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	var out []*models.Task
	for _, task := range f.byID {
		out = append(out, task)
	}
	return out, int64(len(out)), nil
}
func (f *fakeTaskRepo) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	f.submissions[submission.ID] = submission
	return nil
}
func (f *fakeTaskRepo) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return submission, nil
}
func (f *fakeTaskRepo) GetSubmissionByStudent(ctx context.Context, taskID, studentID string) (*models.Submission, error) {
	for _, s := range f.submissions {
		if s.TaskID == taskID && s.StudentID == studentID {
			return s, nil
		}
	}
	return nil, repositories.ErrNotFound
}
func (f *fakeTaskRepo) UpdateSubmission(ctx context.Context, submission *models.Submission) error {
	f.submissions[submission.ID] = submission
	return nil
}
func (f *fakeTaskRepo) ListSubmissions(ctx context.Context, taskID string) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, s := range f.submissions {
		if s.TaskID == taskID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeTaskRepo) ListSubmissionsByStudent(ctx context.Context, studentID string) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, s := range f.submissions {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeGradeRepo struct {
	byID map[string]*models.Grade
}

func (f *fakeGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	f.byID[grade.ID] = grade
	return nil
}
func (f *fakeGradeRepo) GetByID(ctx context.Context, id string) (*models.Grade, error) {
	grade, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return grade, nil
}
func (f *fakeGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	f.byID[grade.ID] = grade
	return nil
}
func (f *fakeGradeRepo) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}
func (f *fakeGradeRepo) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.Grade, int64, error) {
	var out []*models.Grade
	for _, g := range f.byID {
		if filters.StudentID != nil && g.StudentID != *filters.StudentID {
			continue
		}
		if filters.SubjectID != nil && g.SubjectID != *filters.SubjectID {
			continue
		}
		out = append(out, g)
	}
	return out, int64(len(out)), nil
}
func (f *fakeGradeRepo) GetByStudent(ctx context.Context, studentID string) ([]*models.Grade, error) {
	var out []*models.Grade
	for _, g := range f.byID {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out, nil
}
func (f *fakeGradeRepo) AverageForStudent(ctx context.Context, studentID string, subjectID *string) (float64, error) {
	total, count := 0.0, 0
	for _, g := range f.byID {
		if g.StudentID != studentID {
			continue
		}
		if subjectID != nil && g.SubjectID != *subjectID {
			continue
		}
		total += g.Value / g.MaxValue * 100
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return total / float64(count), nil
}

// testFixture wires one of everything for service tests.
type testFixture struct {
	repo      *fakeRepo
	sessions  *session.Store
	publisher *events.MockEventPublisher
	validator *validator.Validator
	logger    *slog.Logger
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	logger := testLogger()
	return &testFixture{
		repo:      newFakeRepo(),
		sessions:  session.NewStore(session.NewMemoryStorage(), logger),
		publisher: events.NewMockEventPublisher(logger),
		validator: validator.New(),
		logger:    logger,
	}
}
