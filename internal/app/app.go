package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khmerlearn_backend/internal/config"
	"khmerlearn_backend/internal/controller"
	"khmerlearn_backend/internal/repository"
	"khmerlearn_backend/internal/service"
	"khmerlearn_backend/pkg/configwatcher"
	"khmerlearn_backend/pkg/database"
	"khmerlearn_backend/pkg/logger"
	"khmerlearn_backend/pkg/monitoring"
	"khmerlearn_backend/pkg/security"
	"khmerlearn_backend/pkg/tracing"

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
	user       *repository.UserRepository
	article    *repository.ArticleRepository
	setting    *repository.ArticleSettingRepository
	completion *repository.UserArticleCompletionRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	article      *service.ArticleService
	setting      *service.SettingService
	availability *service.AvailabilityService
	completion   *service.CompletionService
	progression  *service.ProgressionService
}

type controllers struct {
	auth        *controller.AuthController
	article     *controller.ArticleController
	setting     *controller.ArticleSettingController
	progression *controller.ProgressionController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		article:    repository.NewArticleRepository(db),
		setting:    repository.NewArticleSettingRepository(db, rdb, cfg.Progression),
		completion: repository.NewUserArticleCompletionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.article = service.NewArticleService(repos.article, repos.setting)
	s.setting = service.NewSettingService(repos.setting, repos.article)
	s.availability = service.NewAvailabilityService(repos.setting, repos.completion, repos.article)
	s.completion = service.NewCompletionService(repos.setting, repos.completion)
	s.progression = service.NewProgressionService(repos.setting, repos.completion, repos.article, s.availability)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		article:     controller.NewArticleController(s.article, s.storage),
		setting:     controller.NewArticleSettingController(s.setting),
		progression: controller.NewProgressionController(s.progression, s.availability, s.completion),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if err := s.article.ProcessScheduledPublishes(); err != nil {
				logger.Log.Error("scheduled publish error", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

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

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("khmerlearn-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	// Hot-reload for settings the middlewares read per request.
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		app.Config.JWT = newCfg.JWT
		logger.Log.Info("Configuration reloaded")
	})

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
