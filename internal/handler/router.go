package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/dormi-app/dormi-api/internal/middleware"
	"github.com/dormi-app/dormi-api/internal/models"
	"github.com/dormi-app/dormi-api/internal/service"
	"github.com/dormi-app/dormi-api/pkg/config"
	"github.com/dormi-app/dormi-api/pkg/logger"
	corsmiddleware "github.com/dormi-app/dormi-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dormi-app/dormi-api/pkg/middleware/requestid"
	"go.uber.org/zap"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth        *service.AuthService
	Users       *service.UserService
	Reports     *service.ReportService
	Absences    *service.AbsenceService
	Reprimands  *service.ReprimandService
	Worship     *service.WorshipService
	Cleanliness *service.CleanlinessService
	Students    *service.StudentService
	Dorms       *service.DormService
	Semesters   *service.SemesterService
	Metrics     *service.MetricsService
}

// NewRouter assembles the gin engine with all routes and middleware.
func NewRouter(cfg *config.Config, svcs Services, log *zap.Logger, handlers Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svcs.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(svcs.Metrics.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/reset-password", handlers.Auth.ResetPassword)
		auth.POST("/register", middleware.JWT(svcs.Auth), middleware.RequireRoles(models.UserRolePreceptor), handlers.Auth.Register)
		auth.GET("/me", middleware.JWT(svcs.Auth), handlers.Auth.Me)
		auth.PUT("/fcm-token", middleware.JWT(svcs.Auth), handlers.Auth.UpdateFCMToken)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(svcs.Auth))

	staffOnly := middleware.RequireRoles(models.UserRolePreceptor, models.UserRoleMonitor)
	preceptorOnly := middleware.RequireRoles(models.UserRolePreceptor)

	reports := protected.Group("/reports")
	{
		reports.POST("", staffOnly, handlers.Reports.Submit)
		reports.GET("", staffOnly, handlers.Reports.List)
		reports.GET("/export", preceptorOnly, handlers.Reports.Export)
		reports.PUT("/:id/approve", preceptorOnly, handlers.Reports.Approve)
		reports.PUT("/:id/reject", preceptorOnly, handlers.Reports.Reject)
		reports.PUT("/:id/signature", handlers.Reports.Sign)
	}

	reprimands := protected.Group("/reprimands")
	{
		reprimands.POST("", preceptorOnly, handlers.Reprimands.Register)
		reprimands.GET("", staffOnly, handlers.Reprimands.List)
		reprimands.GET("/levels", handlers.Reprimands.Levels)
		reprimands.PUT("/:id/signature", handlers.Reprimands.Sign)
		reprimands.GET("/:id/slip", staffOnly, handlers.Reprimands.Slip)
		reprimands.GET("/:id/slip-link", staffOnly, handlers.Exports.SlipLink)
	}

	api.GET("/downloads/:token", handlers.Exports.Download)

	protected.GET("/services", handlers.Attendance.Services)
	attendance := protected.Group("/attendance")
	{
		attendance.POST("", staffOnly, handlers.Attendance.Register)
		attendance.GET("/attendees", staffOnly, handlers.Attendance.Attendees)
		attendance.GET("/absentees", staffOnly, handlers.Attendance.Absentees)
		attendance.POST("/absences", staffOnly, handlers.Attendance.ReportAbsences)
	}

	cleanliness := protected.Group("/cleanliness")
	{
		cleanliness.GET("/criteria", handlers.Cleanliness.Criteria)
		cleanliness.POST("/reviews", staffOnly, handlers.Cleanliness.CreateReview)
		cleanliness.GET("/rooms", handlers.Cleanliness.RoomScores)
		cleanliness.GET("/rooms/:roomId/latest", handlers.Cleanliness.LatestReview)
		cleanliness.GET("/rooms/:roomId/history", handlers.Cleanliness.History)
		cleanliness.GET("/stats", handlers.Cleanliness.Stats)
		cleanliness.POST("/cutoffs", preceptorOnly, handlers.Cleanliness.Cutoff)
	}

	students := protected.Group("/students")
	{
		students.GET("", staffOnly, handlers.Students.List)
		students.GET("/:id", middleware.RequireRolesOrSelf(models.UserRolePreceptor, models.UserRoleMonitor), handlers.Students.Record)
		students.GET("/:id/reports", middleware.RequireRolesOrSelf(models.UserRolePreceptor, models.UserRoleMonitor), handlers.Reports.ListByStudent)
		students.GET("/:id/reprimands", middleware.RequireRolesOrSelf(models.UserRolePreceptor, models.UserRoleMonitor), handlers.Reprimands.ListByStudent)
		students.PUT("/:id", preceptorOnly, handlers.Students.Update)
		students.PUT("/assign-room", preceptorOnly, handlers.Students.AssignRoom)
	}

	protected.GET("/dormitories", handlers.Dorms.Dormitories)
	protected.GET("/dormitories/occupancy", staffOnly, handlers.Dorms.Occupancy)
	protected.GET("/hallways", handlers.Dorms.Hallways)
	protected.GET("/hallways/:id/rooms", handlers.Dorms.Rooms)

	semesters := protected.Group("/semesters")
	{
		semesters.GET("", handlers.Semesters.List)
		semesters.GET("/active", handlers.Semesters.Active)
		semesters.POST("/close", preceptorOnly, handlers.Semesters.Close)
	}

	users := protected.Group("/users")
	{
		users.GET("/monitors", preceptorOnly, handlers.Users.Monitors)
		users.PUT("/:id/role", preceptorOnly, handlers.Users.UpdateRole)
	}

	return r
}

// Handlers bundles the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Reports     *ReportHandler
	Reprimands  *ReprimandHandler
	Attendance  *AttendanceHandler
	Cleanliness *CleanlinessHandler
	Students    *StudentHandler
	Dorms       *DormHandler
	Semesters   *SemesterHandler
	Exports     *ExportHandler
}
