package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"corp_edu_backend/internal/config"
	"corp_edu_backend/internal/controller"
	"corp_edu_backend/internal/llm"
	"corp_edu_backend/internal/repository"
	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
	"corp_edu_backend/pkg/configwatcher"
	"corp_edu_backend/pkg/database"
	"corp_edu_backend/pkg/logger"
	"corp_edu_backend/pkg/monitoring"
	"corp_edu_backend/pkg/security"
	"corp_edu_backend/pkg/tracing"
)

// ConfigFile 热加载监听的配置文件
const ConfigFile = "configs/config.yaml"

// activityInterval 同一用户最近活跃时间的最小写入间隔
const activityInterval = time.Minute

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	tx            *repository.TxManager
	user          *repository.UserRepository
	course        *repository.CourseRepository
	progress      *repository.ProgressRepository
	review        *repository.ReviewRepository
	discussion    *repository.DiscussionRepository
	notification  *repository.NotificationRepository
	category      *repository.CategoryRepository
	resource      *repository.ResourceRepository
	courseIndex   service.CourseIndex
	searchEnabled bool
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	storage      *service.StorageService
	course       *service.CourseService
	category     *service.CategoryService
	resource     *service.ResourceService
	progress     *service.ProgressService
	badge        *service.BadgeService
	ledger       *service.LedgerService
	discussion   *service.DiscussionService
	notification *service.NotificationService
	report       *service.ReportService
	assistant    *service.AssistantService
	hub          *service.NotificationHub
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	content      *controller.ContentController
	learning     *controller.LearningController
	community    *controller.CommunityController
	notification *controller.NotificationController
	category     *controller.CategoryController
	resource     *controller.ResourceController
	analytics    *controller.AnalyticsController
	assistant    *controller.AssistantController
	health       *controller.HealthController
}

// RegisterConfigCallback 配置文件变更后依次回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, cfg *config.Config) *repositories {
	repos := &repositories{
		tx:           repository.NewTxManager(db),
		user:         repository.NewUserRepository(db),
		course:       repository.NewCourseRepository(db),
		progress:     repository.NewProgressRepository(db),
		review:       repository.NewReviewRepository(db),
		discussion:   repository.NewDiscussionRepository(db),
		notification: repository.NewNotificationRepository(db),
		category:     repository.NewCategoryRepository(db),
		resource:     repository.NewResourceRepository(db),
	}

	if !cfg.Search.Enabled {
		return repos
	}
	client, err := repository.NewElasticClient(&cfg.Search)
	if err != nil {
		logger.Log.Warn("Elasticsearch unavailable, course search uses database", zap.Error(err))
		return repos
	}
	index := repository.NewCourseSearchRepository(client, cfg.Search.Index)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := index.EnsureIndex(ctx); err != nil {
		logger.Log.Warn("Create course index failed, course search uses database", zap.Error(err))
		return repos
	}
	repos.courseIndex = index
	repos.searchEnabled = true
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	hub := service.NewNotificationHub(rdb, security.OriginChecker(cfg.CORS.AllowedOrigins))
	notification := service.NewNotificationService(repos.notification, repos.user, repos.tx, hub)
	ledger := service.NewLedgerService(repos.user)
	storage := service.NewStorageService(&cfg.Storage)
	discussion := service.NewDiscussionService(repos.discussion, repos.course)

	provider, err := llm.New(context.Background(), cfg.AI)
	if err != nil {
		logger.Log.Warn("AI provider not configured, assistant features disabled", zap.Error(err))
		provider = llm.Disabled(err)
	}

	return &services{
		auth:         service.NewAuthService(repos.user, &cfg.JWT),
		user:         service.NewUserService(repos.user, repos.tx, notification, ledger, storage),
		storage:      storage,
		course:       service.NewCourseService(repos.course, repos.tx, notification, storage, repos.courseIndex),
		category:     service.NewCategoryService(repos.category, repos.course, repos.tx),
		resource:     service.NewResourceService(repos.resource),
		progress:     service.NewProgressService(repos.tx, repos.course, repos.user, repos.progress, repos.review, discussion, ledger, notification),
		badge:        service.NewBadgeService(repos.user),
		ledger:       ledger,
		discussion:   discussion,
		notification: notification,
		report:       service.NewReportService(repos.user, repos.course, repos.progress, repos.review),
		assistant:    service.NewAssistantService(provider, cfg.AI, repos.course, repos.discussion),
		hub:          hub,
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, s.user),
		user:         controller.NewUserController(s.user),
		content:      controller.NewContentController(s.course, s.storage),
		learning:     controller.NewLearningController(s.auth, s.progress, s.badge),
		community:    controller.NewCommunityController(s.auth, s.discussion),
		notification: controller.NewNotificationController(s.notification, s.hub),
		category:     controller.NewCategoryController(s.category),
		resource:     controller.NewResourceController(s.resource),
		analytics:    controller.NewAnalyticsController(s.report, s.assistant),
		assistant:    controller.NewAssistantController(s.assistant),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(ctx context.Context, s *services, repos *repositories) {
	go s.hub.Run()

	if repos.searchEnabled {
		go func() {
			n, err := s.course.Reindex(ctx)
			if err != nil {
				logger.Log.Error("Course reindex failed", zap.Int("indexed", n), zap.Error(err))
				return
			}
			logger.Log.Info("Course index rebuilt", zap.Int("courses", n))
		}()
	}

	a.RegisterConfigCallback(logger.ApplyConfig)
	go func() {
		err := configwatcher.WatchConfig(ctx, ConfigFile, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式默认不自动迁移，需要 -migrate 显式开启
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Database migration failed", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	// Redis 不可用时通知推送退化为单实例
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, realtime delivery limited to this instance", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	repos := app.initRepositories(db, cfg)
	services := app.initServices(repos, cfg, app.Redis)
	app.services = services
	controllers := app.initControllers(services, db, app.Redis)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("corp-edu-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			cfg.Tracing.Enabled = false
		} else {
			app.tracer = tp
		}
	}

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", filepath.Clean(cfg.Storage.LocalPath))
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.startBackgroundTasks(ctx, services, repos)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
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

	if a.cancel != nil {
		a.cancel()
	}

	// 清理 WebSocket连接和Redis在线状态
	if a.services != nil && a.services.hub != nil {
		a.services.hub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
