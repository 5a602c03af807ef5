package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/authz"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/session"
	"github.com/altius-edu/portal-service/internal/utils"
)

type HandlerManager struct {
	authHandler        *AuthHandler
	authzHandler       *AuthzHandler
	userHandler        *UserHandler
	subjectHandler     *SubjectHandler
	taskHandler        *TaskHandler
	gradeHandler       *GradeHandler
	dashboardHandler   *DashboardHandler
	reportHandler      *ReportHandler
	institutionHandler *InstitutionHandler
	authMiddleware     *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	guard *authz.Guard,
	navigation *authz.Navigation,
	identity services.IdentityClient,
	sessions *session.Store,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:        NewAuthHandler(serviceManager.Auth(), logger),
		authzHandler:       NewAuthzHandler(guard, navigation, logger),
		userHandler:        NewUserHandler(serviceManager.User(), logger),
		subjectHandler:     NewSubjectHandler(serviceManager.Subject(), logger),
		taskHandler:        NewTaskHandler(serviceManager.Task(), logger),
		gradeHandler:       NewGradeHandler(serviceManager.Grade(), logger),
		dashboardHandler:   NewDashboardHandler(serviceManager.Dashboard(), logger),
		reportHandler:      NewReportHandler(serviceManager.Report(), logger),
		institutionHandler: NewInstitutionHandler(serviceManager.Institution(), logger),
		authMiddleware:     NewAuthMiddleware(identity, sessions, logger),
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())
	{
		// Auth routes. Login itself is open; the rest need a session.
		auth := v1.Group("/auth")
		{
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/logout", hm.authMiddleware.RequireAuth(), hm.authHandler.Logout)
			auth.GET("/session", hm.authMiddleware.RequireAuth(), hm.authHandler.GetSession)
			auth.PATCH("/profile", hm.authMiddleware.RequireAuth(), hm.authHandler.UpdateProfile)
		}

		// Guard surface: decisions are evaluated for whoever is calling,
		// authenticated or not.
		v1.GET("/authz/decision", hm.authzHandler.Decision)
		v1.GET("/navigation", hm.authzHandler.Navigation)

		// Institutions back the public registration form.
		institutions := v1.Group("/institutions")
		{
			institutions.GET("", hm.institutionHandler.ListInstitutions)
			institutions.GET("/:id", hm.institutionHandler.GetInstitution)
			institutions.GET("/:id/grades", hm.institutionHandler.ListInstitutionGrades)
		}

		// Everything below requires a session.
		protected := v1.Group("")
		protected.Use(hm.authMiddleware.RequireAuth())
		{
			protected.GET("/dashboard", hm.dashboardHandler.GetStats)

			// User routes - staff only
			users := protected.Group("/users")
			{
				users.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator, models.RoleAdmin), hm.userHandler.ListUsers)
				users.GET("/search", hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator, models.RoleAdmin), hm.userHandler.SearchUsers)
				users.GET("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator, models.RoleAdmin), hm.userHandler.GetUser)
			}

			// Subject routes
			subjects := protected.Group("/subjects")
			{
				subjects.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.subjectHandler.CreateSubject)
				subjects.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.subjectHandler.UpdateSubject)
				subjects.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.subjectHandler.DeleteSubject)

				subjects.GET("", hm.subjectHandler.ListSubjects)
				subjects.GET("/mine", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher), hm.subjectHandler.GetMySubjects)
				subjects.GET("/:id", hm.subjectHandler.GetSubject)
			}

			// Task routes
			tasks := protected.Group("/tasks")
			{
				tasks.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.taskHandler.CreateTask)
				tasks.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.taskHandler.UpdateTask)
				tasks.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.taskHandler.DeleteTask)

				tasks.GET("", hm.taskHandler.ListTasks)
				tasks.GET("/:id", hm.taskHandler.GetTask)

				// Submissions
				tasks.POST("/:id/submissions", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.taskHandler.SubmitTask)
				tasks.GET("/:id/submissions", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.taskHandler.ListSubmissions)
			}
			protected.GET("/submissions/mine", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.taskHandler.MySubmissions)
			protected.PUT("/submissions/:submission_id/grade", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.taskHandler.GradeSubmission)

			// Grade routes
			grades := protected.Group("/grades")
			{
				grades.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.gradeHandler.CreateGrade)
				grades.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.gradeHandler.UpdateGrade)
				grades.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.gradeHandler.DeleteGrade)

				grades.GET("", hm.gradeHandler.ListGrades)
				grades.GET("/mine", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.gradeHandler.MyGrades)
				grades.GET("/student/:student_id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.gradeHandler.GetStudentGrades)
			}

			// Reports - teachers and staff
			reports := protected.Group("/reports")
			{
				reports.GET("/subjects/:subject_id/grades", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleCoordinator), hm.reportHandler.ExportSubjectGrades)
			}
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "portal-service",
	})
}
