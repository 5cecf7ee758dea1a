package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course_exam_backend/internal/config"
	"course_exam_backend/internal/controller"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/service"
	"course_exam_backend/pkg/configwatcher"
	"course_exam_backend/pkg/database"
	"course_exam_backend/pkg/logger"
	"course_exam_backend/pkg/monitoring"
	"course_exam_backend/pkg/security"
	"course_exam_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services *services
}

type repositories struct {
	question   *repository.QuestionRepository
	attempt    *repository.AttemptRepository
	mooc       *repository.MoocRepository
	lesson     *repository.LessonRepository
	enrollment *repository.EnrollmentRepository
}

type services struct {
	progression *service.ProgressionService
	exam        *service.ExamService
	learning    *service.LearningService
}

type controllers struct {
	exam     *controller.ExamController
	learning *controller.LearningController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		question:   repository.NewQuestionRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		mooc:       repository.NewMoocRepository(db),
		lesson:     repository.NewLessonRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.progression = service.NewProgressionService(repos.mooc, repos.enrollment, repos.attempt)
	notifier := service.NewNotifier(rdb, cfg.Exam.EventChannel)
	s.exam = service.NewExamService(
		repos.question,
		repos.attempt,
		repos.mooc,
		repos.lesson,
		s.progression,
		service.NewUniformSampler(),
		notifier,
		db,
		cfg.Exam,
	)
	s.learning = service.NewLearningService(repos.mooc, repos.lesson, repos.attempt, repos.enrollment, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		exam:     controller.NewExamController(s.exam),
		learning: controller.NewLearningController(s.learning),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchExamPolicy 配置文件变更时热更新测验策略，不触碰其余配置
func (a *App) watchExamPolicy(configPath string) {
	go configwatcher.WatchConfig(configPath, func(cfg *config.Config) {
		a.services.exam.UpdatePolicy(cfg.Exam)
		logger.Log.Info("exam policy reloaded",
			zap.Int("sampleSize", cfg.Exam.SampleSize),
			zap.Int("attemptLimit", cfg.Exam.AttemptLimit))
	})
}

func NewApp(cfg *config.Config, configPath string) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("course-exam-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.watchExamPolicy(configPath)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
