package app

import (
	"context"
	"errors"
	"hrm_backend/internal/config"
	"hrm_backend/internal/controller"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"
	"hrm_backend/pkg/configwatcher"
	"hrm_backend/pkg/database"
	"hrm_backend/pkg/logger"
	"hrm_backend/pkg/monitoring"
	"hrm_backend/pkg/security"
	"hrm_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	scheduler       *cron.Cron
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	course      *repository.CourseRepository
	progress    *repository.ProgressRepository
	plan        *repository.LearningPlanRepository
	training    *repository.TrainingRepository
	application *repository.ApplicationRepository
	completion  *repository.CompletionRepository
	employee    *repository.EmployeeRepository
}

type services struct {
	storage     *service.StorageService
	hub         *service.EventHub
	publisher   service.EventPublisher
	course      *service.CourseService
	plan        *service.LearningPlanService
	enrollment  *service.EnrollmentService
	training    *service.TrainingService
	application *service.ApplicationService
	completion  *service.CompletionService
	analytics   *service.AnalyticsService
	reconcile   *service.ReconcileService
	employee    *service.EmployeeService
}

type controllers struct {
	course      *controller.CourseController
	plan        *controller.LearningPlanController
	enrollment  *controller.EnrollmentController
	training    *controller.TrainingController
	application *controller.ApplicationController
	completion  *controller.CompletionController
	analytics   *controller.AnalyticsController
	employee    *controller.EmployeeController
	admin       *controller.AdminController
	health      *controller.HealthController
	events      *controller.EventController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		course:      repository.NewCourseRepository(db),
		progress:    repository.NewProgressRepository(db),
		plan:        repository.NewLearningPlanRepository(db),
		training:    repository.NewTrainingRepository(db),
		application: repository.NewApplicationRepository(db),
		completion:  repository.NewCompletionRepository(db),
		employee:    repository.NewEmployeeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	// 事件同时推送给本实例的WebSocket订阅者，开启redis时再广播到频道
	s.hub = service.NewEventHub(cfg.CORS.AllowedOrigins...)
	publishers := service.MultiPublisher{s.hub}
	if rdb != nil {
		publishers = append(publishers, service.NewRedisPublisher(rdb, cfg.Redis.Channel))
	}
	s.publisher = publishers

	s.course = service.NewCourseService(db, repos.course)
	s.plan = service.NewLearningPlanService(db, repos.plan, repos.course)
	s.enrollment = service.NewEnrollmentService(db, repos.progress, repos.course, repos.plan, s.publisher)
	s.training = service.NewTrainingService(db, repos.training, repos.application, s.publisher)

	s.application = service.NewApplicationService(db, repos.application, repos.training, s.publisher)
	s.application.RejectWhenFull = cfg.Training.RejectApplicationsWhenFull

	s.completion = service.NewCompletionService(db, repos.completion, repos.application, repos.training, s.storage, s.publisher)
	s.analytics = service.NewAnalyticsService(db, repos.progress, repos.course, repos.plan, repos.training, repos.application)
	s.reconcile = service.NewReconcileService(db, repos.course, repos.progress, repos.training, repos.application)
	s.employee = service.NewEmployeeService(db, repos.employee, service.NewDirectoryClient(cfg.Directory), s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		course:      controller.NewCourseController(s.course),
		plan:        controller.NewLearningPlanController(s.plan),
		enrollment:  controller.NewEnrollmentController(s.enrollment),
		training:    controller.NewTrainingController(s.training),
		application: controller.NewApplicationController(s.application),
		completion:  controller.NewCompletionController(s.completion),
		analytics:   controller.NewAnalyticsController(s.analytics),
		employee:    controller.NewEmployeeController(s.employee),
		admin:       controller.NewAdminController(s.reconcile),
		health:      controller.NewHealthController(db, rdb),
		events:      controller.NewEventController(s.hub),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimitFromConfig(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	util.RegisterValidators()

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, app.Redis)
	app.services = services
	controllers := app.initControllers(services, db, app.Redis)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.scheduler, err = startScheduler(cfg.Scheduler, services.reconcile)
	if err != nil {
		logger.Log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.ApplyMode(newCfg.Server.Mode)
	})

	return app
}

func (a *App) watchConfig(ctx context.Context) {
	err := configwatcher.WatchConfig(ctx, filepath.Join(a.ConfigDir, "config.yaml"), func(newCfg *config.Config) {
		for _, callback := range a.configCallbacks {
			callback(newCfg)
		}
	})
	if err != nil {
		logger.Log.Warn("Config watcher stopped", zap.Error(err))
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go a.watchConfig(watchCtx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}
	if a.services != nil {
		a.services.hub.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
