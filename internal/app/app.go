package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskora_backend/internal/config"
	"taskora_backend/internal/controller"
	"taskora_backend/internal/repository"
	"taskora_backend/internal/service"
	"taskora_backend/pkg/configwatcher"
	"taskora_backend/pkg/database"
	"taskora_backend/pkg/logger"
	"taskora_backend/pkg/monitoring"
	"taskora_backend/pkg/security"
	"taskora_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user        *repository.UserRepository
	project     *repository.ProjectRepository
	task        *repository.TaskRepository
	tag         *repository.TagRepository
	status      *repository.StatusRepository
	competition *repository.CompetitionRepository
	cache       *repository.RedisCache
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	project     *service.ProjectService
	task        *service.TaskService
	tag         *service.TagService
	status      *service.StatusService
	storage     *service.StorageService
	email       *service.EmailService
	competition *service.CompetitionService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	project     *controller.ProjectController
	task        *controller.TaskController
	tag         *controller.TagController
	status      *controller.StatusController
	competition *controller.CompetitionController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		project:     repository.NewProjectRepository(db),
		task:        repository.NewTaskRepository(db),
		tag:         repository.NewTagRepository(db),
		status:      repository.NewStatusRepository(db),
		competition: repository.NewCompetitionRepository(rdb, time.Duration(cfg.Competition.OpTimeoutMs)*time.Millisecond),
		cache:       repository.NewRedisCache(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.email = service.NewEmailService(cfg.Mail)
	s.auth = service.NewAuthService(repos.user, repos.cache, s.email, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.project = service.NewProjectService(repos.project, repos.cache)
	s.task = service.NewTaskService(repos.task, repos.project, repos.status, repos.tag, repos.cache)
	s.tag = service.NewTagService(repos.tag, repos.cache)
	s.status = service.NewStatusService(repos.status, repos.cache)
	s.competition = service.NewCompetitionService(repos.competition, repos.user, s.email, cfg.Competition)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user),
		project:     controller.NewProjectController(s.project, s.task),
		task:        controller.NewTaskController(s.task),
		tag:         controller.NewTagController(s.tag),
		status:      controller.NewStatusController(s.status),
		competition: controller.NewCompetitionController(s.competition),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchConfig 配置热加载：竞赛参数改动无需重启即可生效
func (a *App) watchConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		a.services.competition.SetConfig(cfg.Competition)
		logger.Log.Info("competition config reloaded",
			zap.Int("winnerCap", cfg.Competition.WinnerCap),
		)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("taskora-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.watchConfig()

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
