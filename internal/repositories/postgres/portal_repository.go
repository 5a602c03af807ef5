package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
	"github.com/altius-edu/portal-service/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db          *gorm.DB
	redisClient *redis.Client

	user        repositories.UserRepository
	subject     repositories.SubjectRepository
	task        repositories.TaskRepository
	grade       repositories.GradeRepository
	institution repositories.InstitutionRepository
	dashboard   repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB            *gorm.DB
	RedisClient   *redis.Client
	CasdoorConfig casdoor.CasdoorConfig
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:          config.DB,
		redisClient: config.RedisClient,
	}

	repo.subject = NewSubjectPostgreSQL(config.DB, config.RedisClient)
	repo.task = NewTaskPostgreSQL(config.DB, config.RedisClient)
	repo.grade = NewGradePostgreSQL(config.DB, config.RedisClient)
	repo.institution = NewInstitutionPostgreSQL(config.DB)
	repo.dashboard = NewDashboardPostgreSQL(config.DB)

	// User repository uses Casdoor
	repo.user = casdoor.NewUserCasdoor(config.CasdoorConfig, config.RedisClient)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository               { return r.user }
func (r *PostgreSQLRepository) Subject() repositories.SubjectRepository         { return r.subject }
func (r *PostgreSQLRepository) Task() repositories.TaskRepository               { return r.task }
func (r *PostgreSQLRepository) Grade() repositories.GradeRepository             { return r.grade }
func (r *PostgreSQLRepository) Institution() repositories.InstitutionRepository { return r.institution }
func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository     { return r.dashboard }

// WithTransaction runs fn against repositories bound to one transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:          tx,
			redisClient: r.redisClient,
			subject:     NewSubjectPostgreSQL(tx, r.redisClient),
			task:        NewTaskPostgreSQL(tx, r.redisClient),
			grade:       NewGradePostgreSQL(tx, r.redisClient),
			institution: NewInstitutionPostgreSQL(tx),
			dashboard:   NewDashboardPostgreSQL(tx),
			user:        r.user,
		}
		return fn(txRepo)
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Manager wraps the repository with lifecycle management.
type Manager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) *Manager {
	return &Manager{config: config}
}

// Initialize migrates the schema and builds the repository set.
func (m *Manager) Initialize() error {
	if err := m.config.DB.AutoMigrate(
		&models.Institution{},
		&models.AcademicGrade{},
		&models.User{},
		&models.Subject{},
		&models.Task{},
		&models.Submission{},
		&models.Grade{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *Manager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return m.repo.Ping(ctx)
}
