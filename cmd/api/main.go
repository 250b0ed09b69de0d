package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/rmonteclaro/admission-api/api/swagger"
	"github.com/rmonteclaro/admission-api/internal/handler"
	"github.com/rmonteclaro/admission-api/internal/middleware"
	"github.com/rmonteclaro/admission-api/internal/models"
	"github.com/rmonteclaro/admission-api/internal/repository"
	"github.com/rmonteclaro/admission-api/internal/service"
	"github.com/rmonteclaro/admission-api/pkg/cache"
	"github.com/rmonteclaro/admission-api/pkg/config"
	"github.com/rmonteclaro/admission-api/pkg/database"
	"github.com/rmonteclaro/admission-api/pkg/logger"
	corsmiddleware "github.com/rmonteclaro/admission-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rmonteclaro/admission-api/pkg/middleware/requestid"
	"github.com/rmonteclaro/admission-api/pkg/storage"
)

// @title Admission Management API
// @version 1.0.0
// @description School admission management: applicants, applications, interviews and admission records
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancelMigrate()
		logr.Fatal("failed to run migrations", zap.Error(err))
	}
	cancelMigrate()

	// Redis is optional; the dashboard falls back to querying per request.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
	}

	documentStore, err := storage.NewDocumentStore(cfg.Documents.StorageDir, cfg.Documents.MaxFileSizeBytes, cfg.Documents.AllowedMIMEs)
	if err != nil {
		logr.Fatal("failed to init document storage", zap.Error(err))
	}

	exportStore, err := storage.NewExportStore(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	exportSigner := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	applicantRepo := repository.NewApplicantRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	academicYearRepo := repository.NewAcademicYearRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	validate := validator.New()
	metricsService := service.NewMetricsService()

	authService := service.NewAuthService(applicantRepo, staffRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		SuperAdminEmail:    cfg.SuperAdmin.Email,
		SuperAdminPassword: cfg.SuperAdmin.Password,
	})
	applicantService := service.NewApplicantService(applicantRepo, validate, logr)
	staffService := service.NewStaffService(staffRepo, validate, logr)
	academicYearService := service.NewAcademicYearService(academicYearRepo, validate, logr)
	courseService := service.NewCourseService(courseRepo, validate, logr)
	applicationService := service.NewApplicationService(applicationRepo, validate, logr)
	admissionService := service.NewAdmissionService(admissionRepo, logr)

	dashboardService := service.NewDashboardService(dashboardRepo, nil, cfg.Dashboard.CacheTTL, logr)
	if redisClient != nil {
		statsCache := repository.NewCacheRepository(redisClient)
		dashboardService = service.NewDashboardService(dashboardRepo, statsCache, cfg.Dashboard.CacheTTL, logr)
	}
	dashboardService.SetMetrics(metricsService)

	exportService := service.NewExportService(applicationRepo, exportStore, exportSigner, service.ExportQueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
	}, logr)
	exportService.SetMetrics(metricsService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportService.Start(ctx)
	defer exportService.Stop()

	authHandler := handler.NewAuthHandler(authService)
	applicantHandler := handler.NewApplicantHandler(applicantService)
	staffHandler := handler.NewStaffHandler(staffService)
	academicYearHandler := handler.NewAcademicYearHandler(academicYearService)
	courseHandler := handler.NewCourseHandler(courseService)
	applicationHandler := handler.NewApplicationHandler(applicationService, documentStore)
	documentHandler := handler.NewDocumentHandler(documentStore)
	admissionHandler := handler.NewAdmissionHandler(admissionService, exportService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/applicant/login", authHandler.LoginApplicant)
	auth.POST("/staff/login", authHandler.LoginStaff)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	api.POST("/applicants", applicantHandler.Register)
	api.GET("/courses/active", courseHandler.ListActive)
	api.GET("/admissions/exports/download", admissionHandler.DownloadExport)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))

	applicantOnly := authed.Group("")
	applicantOnly.Use(middleware.RequireRoles(models.RoleApplicant))
	applicantOnly.GET("/applicants/me", applicantHandler.Me)
	applicantOnly.POST("/applications", applicationHandler.Submit)
	applicantOnly.GET("/applications/me", applicationHandler.GetOwn)
	applicantOnly.GET("/applications/me/summary", applicationHandler.Summary)
	applicantOnly.GET("/applications/me/check", applicationHandler.Check)

	authed.GET("/documents/:field/:applicantId", documentHandler.Download)

	staffOnly := authed.Group("")
	staffOnly.Use(middleware.RequireRoles(models.RoleStaff))
	staffOnly.GET("/applicants", applicantHandler.List)
	staffOnly.GET("/applicants/:id", applicantHandler.Get)
	staffOnly.GET("/academic-years", academicYearHandler.List)
	staffOnly.GET("/academic-years/active", academicYearHandler.GetActive)
	staffOnly.POST("/academic-years", academicYearHandler.Create)
	staffOnly.PUT("/academic-years/:id", academicYearHandler.Update)
	staffOnly.DELETE("/academic-years/:id", academicYearHandler.Delete)
	staffOnly.GET("/courses", courseHandler.List)
	staffOnly.GET("/courses/unopened", courseHandler.ListWithoutActiveStatus)
	staffOnly.POST("/courses", courseHandler.Create)
	staffOnly.POST("/courses/status", courseHandler.CreateStatus)
	staffOnly.PUT("/courses/:id", courseHandler.Update)
	staffOnly.DELETE("/courses/:id", courseHandler.Delete)
	staffOnly.GET("/applications", applicationHandler.List)
	staffOnly.PUT("/applications/:id/schedule", applicationHandler.Schedule)
	staffOnly.PUT("/applications/:id/remarks", applicationHandler.Remarks)
	staffOnly.POST("/applications/promote", applicationHandler.Promote)
	staffOnly.GET("/admissions", admissionHandler.List)
	staffOnly.GET("/admissions/:id/applications", admissionHandler.ListApplications)
	staffOnly.POST("/admissions/:id/export", admissionHandler.RequestExport)
	staffOnly.GET("/admissions/exports/:jobId", admissionHandler.ExportStatus)
	staffOnly.GET("/dashboard", dashboardHandler.Stats)

	superAdminOnly := authed.Group("")
	superAdminOnly.Use(middleware.RequireRoles(models.RoleSuperAdmin))
	superAdminOnly.GET("/staffs", staffHandler.List)
	superAdminOnly.POST("/staffs", staffHandler.Create)
	superAdminOnly.PUT("/staffs/:id", staffHandler.Update)
	superAdminOnly.DELETE("/staffs/:id", staffHandler.Delete)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
