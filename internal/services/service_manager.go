package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/altius-edu/portal-service/internal/events"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/session"
	"github.com/altius-edu/portal-service/internal/validator"
)

// serviceManager implements ServiceManager.
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	sessions  *session.Store
	identity  IdentityClient
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator

	// Service instances
	authService        AuthService
	userService        UserService
	subjectService     SubjectService
	taskService        TaskService
	gradeService       GradeService
	dashboardService   DashboardService
	reportService      ReportService
	institutionService InstitutionService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(repo repositories.Repository, sessions *session.Store, identity IdentityClient, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ServiceManager {
	return &serviceManager{
		repo:      repo,
		sessions:  sessions,
		identity:  identity,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return fmt.Errorf("service manager already initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager has been shut down")
	}

	sm.logger.Info("Initializing services")

	sm.authService = NewAuthService(sm.identity, sm.sessions, sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.logger)
	sm.subjectService = NewSubjectService(sm.repo, sm.logger, sm.validator)
	sm.taskService = NewTaskService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.gradeService = NewGradeService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.dashboardService = NewDashboardService(sm.repo, sm.logger)
	sm.reportService = NewReportService(sm.repo, sm.logger)
	sm.institutionService = NewInstitutionService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("Services initialized")
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down services")
	if err := sm.publisher.Close(); err != nil {
		sm.logger.Warn("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	return nil
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager has been shut down")
	}
	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.userService
}

func (sm *serviceManager) Subject() SubjectService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.subjectService
}

func (sm *serviceManager) Task() TaskService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.taskService
}

func (sm *serviceManager) Grade() GradeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.gradeService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.dashboardService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.reportService
}

func (sm *serviceManager) Institution() InstitutionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.institutionService
}
