package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"course-api/config"
	"course-api/constant"
	"course-api/handler"
	"course-api/middleware"
	"course-api/pkg/cache"
	"course-api/pkg/rabbitmq"
	"course-api/repository"
	"course-api/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	repo := repository.NewRepo(cfg.DB)
	listCache := cache.New(cfg.Cache, 5*time.Minute)
	if err := listCache.Ping(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("redis unreachable, cache reads will miss")
	}

	uploads := service.NewUploadService(cfg)
	if err := uploads.EnsureBucket(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to ensure storage bucket")
	}

	// Invalidation fan-out: without a broker the local cache still gets
	// invalidated directly on every write.
	var publisher rabbitmq.Publisher = rabbitmq.NoopPublisher{}
	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
	} else {
		publisher = rabbitmq.NewPublisher(conn, cfg.Queue)

		invalidationConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, cfg.Server.Workers, handler.InvalidationHandler)
		go func() {
			err := invalidationConsumer.Consume(ctx, handler.InvalidationDeps{Cache: listCache})
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("Invalidation consumer error")
			}
		}()
	}

	catalogService := service.NewCatalogService(repo, listCache)
	adminService := service.NewAdminService(repo, catalogService, listCache, publisher, uploads)
	authService := service.NewAuthService(repo, listCache, cfg.Auth)

	h := &handler.Handler{
		Catalog: catalogService,
		Admin:   adminService,
		Auth:    authService,
		Uploads: uploads,
	}

	r := gin.Default()
	addHealth(r)
	addRoutes(r, h, authService)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func addRoutes(r *gin.Engine, h *handler.Handler, auth *service.AuthService) {
	v1 := r.Group("/api/v1")

	v1.GET("/courses", h.ListCourses)
	v1.GET("/courses/:courseId", h.CourseDetail)
	v1.GET("/courses/:courseId/lessons", h.ListLessons)
	v1.GET("/courses/:courseId/lessons/:lessonId", h.CourseDetail)

	v1.POST("/login", h.Login)
	v1.GET("/session", h.SessionInfo)
	v1.POST("/logout", middleware.SessionGate(auth), h.Logout)

	admin := v1.Group("/admin", middleware.SessionGate(auth))
	admin.GET("", h.AdminDashboard)
	admin.GET("/courses", h.ListCourses)
	admin.POST("/courses", h.CreateCourse)
	admin.PUT("/courses/:courseId", h.UpdateCourse)
	admin.DELETE("/courses/:courseId", h.DeleteCourse)
	admin.POST("/courses/:courseId/reorder", h.ReorderCourse)
	admin.GET("/courses/:courseId/lessons", h.ListLessons)
	admin.POST("/courses/:courseId/lessons", h.CreateLesson)
	admin.PUT("/lessons/:lessonId", h.UpdateLesson)
	admin.DELETE("/lessons/:lessonId", h.DeleteLesson)
	admin.POST("/uploads/course-image", h.UploadCourseImage)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
	})
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
