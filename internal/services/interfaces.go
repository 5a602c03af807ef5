package services

import (
	"context"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"golang.org/x/oauth2"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type LoginRequest = validator.LoginRequest
type ProfileUpdateRequest = validator.ProfileUpdateRequest

type CreateSubjectRequest = validator.SubjectCreateRequest
type UpdateSubjectRequest = validator.SubjectUpdateRequest

type CreateTaskRequest = validator.TaskCreateRequest
type UpdateTaskRequest = validator.TaskUpdateRequest
type TaskQuestionRequest = validator.TaskQuestionRequest
type CreateSubmissionRequest = validator.SubmissionCreateRequest
type GradeSubmissionRequest = validator.SubmissionGradeRequest

type CreateGradeRequest = validator.GradeCreateRequest
type UpdateGradeRequest = validator.GradeUpdateRequest

// SessionResponse is the session state returned to the SPA after login,
// rehydration or a profile update.
type SessionResponse struct {
	User            *models.User `json:"user"`
	Token           string       `json:"token,omitempty"`
	IsAuthenticated bool         `json:"is_authenticated"`
	// RedirectTo tells the SPA where to land: the preserved "from" path when
	// one survived the login redirect, the role's home otherwise.
	RedirectTo string `json:"redirect_to,omitempty"`
}

type SubjectListResponse struct {
	Subjects []*models.Subject `json:"subjects"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
}

type TaskResponse struct {
	*models.Task
	CanEdit      bool `json:"can_edit"`
	CanSubmit    bool `json:"can_submit"`
	HasSubmitted bool `json:"has_submitted"`
}

type TaskListResponse struct {
	Tasks []*TaskResponse `json:"tasks"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type GradeListResponse struct {
	Grades  []*models.Grade `json:"grades"`
	Total   int64           `json:"total"`
	Average *float64        `json:"average,omitempty"`
	Page    int             `json:"page"`
	Size    int             `json:"size"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// ===== IDENTITY PROVIDER =====

// IdentityClient is the slice of the Casdoor SDK the auth service needs.
// *casdoorsdk.Client satisfies it; tests inject a fake.
type IdentityClient interface {
	GetOAuthToken(code, state string) (*oauth2.Token, error)
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	// Login exchanges the OAuth code for a token, normalizes the principal's
	// role and replaces any prior session wholesale.
	Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error)

	// Logout erases the durable session. Idempotent.
	Logout(ctx context.Context, userID string) error

	// GetSession rehydrates the caller's session; absent or malformed state
	// comes back as a clean unauthenticated response.
	GetSession(ctx context.Context, userID string) (*SessionResponse, error)

	// UpdateProfile patches the stored principal without touching the token.
	UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*SessionResponse, error)
}

type UserService interface {
	GetByID(ctx context.Context, id string, requesterID string) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters, requester *models.User) (*UserListResponse, error)
	Search(ctx context.Context, query string, filters repositories.UserFilters, requester *models.User) (*UserListResponse, error)
}

type SubjectService interface {
	Create(ctx context.Context, req *CreateSubjectRequest, requester *models.User) (*models.Subject, error)
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	Update(ctx context.Context, id string, req *UpdateSubjectRequest, requester *models.User) (*models.Subject, error)
	Delete(ctx context.Context, id string, requester *models.User) error
	List(ctx context.Context, filters repositories.SubjectFilters) (*SubjectListResponse, error)
	GetByTeacher(ctx context.Context, teacherID string) ([]*models.Subject, error)
}

type TaskService interface {
	Create(ctx context.Context, req *CreateTaskRequest, requester *models.User) (*models.Task, error)
	GetByID(ctx context.Context, id string, requester *models.User) (*TaskResponse, error)
	Update(ctx context.Context, id string, req *UpdateTaskRequest, requester *models.User) (*models.Task, error)
	Delete(ctx context.Context, id string, requester *models.User) error
	List(ctx context.Context, filters repositories.TaskFilters, requester *models.User) (*TaskListResponse, error)

	// Submissions
	Submit(ctx context.Context, req *CreateSubmissionRequest, student *models.User) (*models.Submission, error)
	GradeSubmission(ctx context.Context, submissionID string, req *GradeSubmissionRequest, requester *models.User) (*models.Submission, error)
	GetSubmissions(ctx context.Context, taskID string, requester *models.User) ([]*models.Submission, error)
	GetStudentSubmissions(ctx context.Context, studentID string, requester *models.User) ([]*models.Submission, error)
}

type GradeService interface {
	Create(ctx context.Context, req *CreateGradeRequest, requester *models.User) (*models.Grade, error)
	Update(ctx context.Context, id string, req *UpdateGradeRequest, requester *models.User) (*models.Grade, error)
	Delete(ctx context.Context, id string, requester *models.User) error
	List(ctx context.Context, filters repositories.GradeFilters, requester *models.User) (*GradeListResponse, error)
	GetByStudent(ctx context.Context, studentID string, requester *models.User) (*GradeListResponse, error)
}

type DashboardService interface {
	// Stats returns the role-appropriate overview for the portal home.
	Stats(ctx context.Context, user *models.User) (*repositories.DashboardStats, error)
}

type ReportService interface {
	// SubjectGradesReport renders the subject's grade book as an .xlsx file.
	SubjectGradesReport(ctx context.Context, subjectID string, requester *models.User) (*ReportFile, error)
}

// ReportFile is a rendered export ready to stream to the client.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type InstitutionService interface {
	GetByID(ctx context.Context, id string) (*models.Institution, error)
	List(ctx context.Context, limit, offset int) ([]*models.Institution, int64, error)
	ListGrades(ctx context.Context, institutionID string) ([]*models.AcademicGrade, error)
}

// ServiceManager provides access to all services with lifecycle management.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Subject() SubjectService
	Task() TaskService
	Grade() GradeService
	Dashboard() DashboardService
	Report() ReportService
	Institution() InstitutionService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}
