package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/escolar-dev/escolar-api/api/swagger"
	"github.com/escolar-dev/escolar-api/internal/forms"
	"github.com/escolar-dev/escolar-api/internal/handler"
	"github.com/escolar-dev/escolar-api/internal/middleware"
	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/repository"
	"github.com/escolar-dev/escolar-api/internal/service"
	"github.com/escolar-dev/escolar-api/internal/validation"
	"github.com/escolar-dev/escolar-api/pkg/cache"
	"github.com/escolar-dev/escolar-api/pkg/config"
	"github.com/escolar-dev/escolar-api/pkg/database"
	"github.com/escolar-dev/escolar-api/pkg/logger"
	corsmiddleware "github.com/escolar-dev/escolar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/escolar-dev/escolar-api/pkg/middleware/requestid"
)

// @title Escolar API
// @version 1.0.0
// @description School administration dashboard backend
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validation.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Dashboard.CacheTTL, logr, false)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close()
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	parentRepo := repository.NewParentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classRepo := repository.NewClassRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	examRepo := repository.NewExamRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	menuSvc := service.NewMenuService(nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, cacheSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, validate, logr)
	parentSvc := service.NewParentService(parentRepo, cacheSvc, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	classSvc := service.NewClassService(classRepo, cacheSvc, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, cacheSvc, validate, logr)
	examSvc := service.NewExamService(examRepo, cacheSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, cacheSvc, validate, logr)
	resultSvc := service.NewResultService(resultRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, logr)
	dashboardSvc := service.NewDashboardService(userRepo, studentRepo, attendanceRepo, cacheSvc, logr, cfg.Dashboard.CacheTTL)
	reportSvc := service.NewReportService(resultRepo, studentRepo, cfg.Reports.SchoolName, logr)

	runner := handler.NewFormRunner(validate, cfg.Forms.SubmitTimeout, forms.NewLogNotifier(logr), metricsSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	menuHandler := handler.NewMenuHandler(menuSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, runner)
	studentHandler := handler.NewStudentHandler(studentSvc, runner)
	parentHandler := handler.NewParentHandler(parentSvc, runner)
	subjectHandler := handler.NewSubjectHandler(subjectSvc, runner)
	classHandler := handler.NewClassHandler(classSvc, runner)
	lessonHandler := handler.NewLessonHandler(lessonSvc, runner)
	examHandler := handler.NewExamHandler(examSvc, runner)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc, runner)
	resultHandler := handler.NewResultHandler(resultSvc, runner)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	authed := auth.Group("", middleware.JWT(authSvc))
	authed.POST("/logout", authHandler.Logout)
	authed.POST("/change-password", authHandler.ChangePassword)
	authed.GET("/me", authHandler.Me)

	api.GET("/navigation", middleware.OptionalJWT(authSvc), menuHandler.Navigation)

	secured := api.Group("", middleware.JWT(authSvc))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	everyone := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent, models.RoleParent)

	teachers := secured.Group("/teachers")
	teachers.GET("", staff, teacherHandler.List)
	teachers.GET("/options", staff, teacherHandler.Options)
	teachers.GET("/:id", staff, teacherHandler.Get)
	teachers.POST("", adminOnly, middleware.Audit(userRepo, models.AuditActionCreate, "teacher"), teacherHandler.Create)
	teachers.PUT("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionUpdate, "teacher"), teacherHandler.Update)
	teachers.DELETE("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionDelete, "teacher"), teacherHandler.Delete)

	students := secured.Group("/students")
	students.GET("", staff, studentHandler.List)
	students.GET("/:id", staff, studentHandler.Get)
	students.POST("", adminOnly, middleware.Audit(userRepo, models.AuditActionCreate, "student"), studentHandler.Create)
	students.PUT("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionUpdate, "student"), studentHandler.Update)
	students.DELETE("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionDelete, "student"), studentHandler.Delete)

	parents := secured.Group("/parents")
	parents.GET("", staff, parentHandler.List)
	parents.GET("/options", staff, parentHandler.Options)
	parents.GET("/:id", staff, parentHandler.Get)
	parents.POST("", adminOnly, middleware.Audit(userRepo, models.AuditActionCreate, "parent"), parentHandler.Create)
	parents.PUT("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionUpdate, "parent"), parentHandler.Update)
	parents.DELETE("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionDelete, "parent"), parentHandler.Delete)

	subjects := secured.Group("/subjects", adminOnly)
	subjects.GET("", subjectHandler.List)
	subjects.GET("/options", subjectHandler.Options)
	subjects.GET("/:id", subjectHandler.Get)
	subjects.POST("", middleware.Audit(userRepo, models.AuditActionCreate, "subject"), subjectHandler.Create)
	subjects.PUT("/:id", middleware.Audit(userRepo, models.AuditActionUpdate, "subject"), subjectHandler.Update)
	subjects.DELETE("/:id", middleware.Audit(userRepo, models.AuditActionDelete, "subject"), subjectHandler.Delete)

	classes := secured.Group("/classes")
	classes.GET("", staff, classHandler.List)
	classes.GET("/options", staff, classHandler.Options)
	classes.GET("/:id", staff, classHandler.Get)
	classes.POST("", adminOnly, middleware.Audit(userRepo, models.AuditActionCreate, "class"), classHandler.Create)
	classes.PUT("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionUpdate, "class"), classHandler.Update)
	classes.DELETE("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionDelete, "class"), classHandler.Delete)

	lessons := secured.Group("/lessons")
	lessons.GET("", staff, lessonHandler.List)
	lessons.GET("/options", staff, lessonHandler.Options)
	lessons.GET("/:id", staff, lessonHandler.Get)
	lessons.POST("", adminOnly, middleware.Audit(userRepo, models.AuditActionCreate, "lesson"), lessonHandler.Create)
	lessons.PUT("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionUpdate, "lesson"), lessonHandler.Update)
	lessons.DELETE("/:id", adminOnly, middleware.Audit(userRepo, models.AuditActionDelete, "lesson"), lessonHandler.Delete)

	exams := secured.Group("/exams")
	exams.GET("", everyone, examHandler.List)
	exams.GET("/:id", everyone, examHandler.Get)
	exams.POST("", staff, middleware.Audit(userRepo, models.AuditActionCreate, "exam"), examHandler.Create)
	exams.PUT("/:id", staff, middleware.Audit(userRepo, models.AuditActionUpdate, "exam"), examHandler.Update)
	exams.DELETE("/:id", staff, middleware.Audit(userRepo, models.AuditActionDelete, "exam"), examHandler.Delete)

	assignments := secured.Group("/assignments")
	assignments.GET("", everyone, assignmentHandler.List)
	assignments.GET("/:id", everyone, assignmentHandler.Get)
	assignments.POST("", staff, middleware.Audit(userRepo, models.AuditActionCreate, "assignment"), assignmentHandler.Create)
	assignments.PUT("/:id", staff, middleware.Audit(userRepo, models.AuditActionUpdate, "assignment"), assignmentHandler.Update)
	assignments.DELETE("/:id", staff, middleware.Audit(userRepo, models.AuditActionDelete, "assignment"), assignmentHandler.Delete)

	results := secured.Group("/results")
	results.GET("", everyone, resultHandler.List)
	results.GET("/:id", everyone, resultHandler.Get)
	results.POST("", staff, middleware.Audit(userRepo, models.AuditActionCreate, "result"), resultHandler.Create)
	results.PUT("/:id", staff, middleware.Audit(userRepo, models.AuditActionUpdate, "result"), resultHandler.Update)
	results.DELETE("/:id", staff, middleware.Audit(userRepo, models.AuditActionDelete, "result"), resultHandler.Delete)

	secured.GET("/attendance", everyone, attendanceHandler.List)
	secured.GET("/dashboard", adminOnly, dashboardHandler.Summary)
	secured.GET("/reports/students/:id", staff, reportHandler.ReportCard)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
